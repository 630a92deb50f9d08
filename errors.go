package symexpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for evaluation and differentiation. Both indicate
// programming or input mistakes; nothing in this package retries or
// recovers from them.
var (
	// ErrUndefinedVariable indicates evaluation reached a variable leaf
	// whose name is absent from the supplied bindings.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrUnsupportedDerivative indicates differentiation of a power whose
	// exponent depends on a variable (e.g. x^x).
	ErrUnsupportedDerivative = errors.New("unsupported derivative")
)

// UndefinedVariableError reports the variable name that was missing from
// the evaluation bindings.
type UndefinedVariableError struct {
	// Name is the unbound variable.
	Name string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

// Unwrap returns ErrUndefinedVariable for errors.Is support.
func (e *UndefinedVariableError) Unwrap() error {
	return ErrUndefinedVariable
}

// UnsupportedDerivativeError reports a power node whose exponent subtree
// is not constant.
type UnsupportedDerivativeError struct {
	// Exponent is the rendered form of the offending exponent subtree.
	Exponent string
}

// Error implements the error interface.
func (e *UnsupportedDerivativeError) Error() string {
	return fmt.Sprintf("derivative of non-constant exponent not supported: %s", e.Exponent)
}

// Unwrap returns ErrUnsupportedDerivative for errors.Is support.
func (e *UnsupportedDerivativeError) Unwrap() error {
	return ErrUnsupportedDerivative
}
