// Package symexpr provides an immutable symbolic-expression engine for Go.
//
// Design goals:
//   - Generic over the scalar domain (float64 or complex128)
//   - Immutable trees with structural sharing, safe for concurrent reads
//   - Recursive evaluation, symbolic differentiation, substitution, rendering
//   - No simplification: derivatives come back exactly as the rules produce them
//   - AI/LLM friendly: JSON tree codec and MCP-ready tool API
package symexpr

import (
	"math"
	"math/cmplx"
	"strconv"
)

// ============================================================
// Scalar domain
// ============================================================

// Scalar is the numeric domain an expression is generic over. The type set
// is exact (no approximation types): the transcendental shims below
// dispatch on the dynamic type.
type Scalar interface {
	float64 | complex128
}

func scalarPow[T Scalar](base, exp T) T {
	switch b := any(base).(type) {
	case float64:
		return any(math.Pow(b, any(exp).(float64))).(T)
	case complex128:
		return any(cmplx.Pow(b, any(exp).(complex128))).(T)
	}
	panic("symexpr: unreachable scalar type")
}

func scalarSin[T Scalar](v T) T {
	switch x := any(v).(type) {
	case float64:
		return any(math.Sin(x)).(T)
	case complex128:
		return any(cmplx.Sin(x)).(T)
	}
	panic("symexpr: unreachable scalar type")
}

func scalarCos[T Scalar](v T) T {
	switch x := any(v).(type) {
	case float64:
		return any(math.Cos(x)).(T)
	case complex128:
		return any(cmplx.Cos(x)).(T)
	}
	panic("symexpr: unreachable scalar type")
}

func scalarExp[T Scalar](v T) T {
	switch x := any(v).(type) {
	case float64:
		return any(math.Exp(x)).(T)
	case complex128:
		return any(cmplx.Exp(x)).(T)
	}
	panic("symexpr: unreachable scalar type")
}

func scalarLog[T Scalar](v T) T {
	switch x := any(v).(type) {
	case float64:
		return any(math.Log(x)).(T)
	case complex128:
		return any(cmplx.Log(x)).(T)
	}
	panic("symexpr: unreachable scalar type")
}

func formatScalar[T Scalar](v T) string {
	switch x := any(v).(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case complex128:
		return strconv.FormatComplex(x, 'g', -1, 128)
	}
	panic("symexpr: unreachable scalar type")
}

// ============================================================
// Node — immutable tagged tree element
// ============================================================

type kind uint8

const (
	kindConstant kind = iota
	kindVariable
	kindAdd
	kindSubtract
	kindMultiply
	kindDivide
	kindPower
	kindSin
	kindCos
	kindExp
	kindLog
	kindNegate
)

// node is one tree element. A leaf (constant, variable) has no children, a
// unary kind has only left, a binary kind has both. Nodes are never mutated
// after construction, so subtrees may be shared between any number of
// parents and expressions.
type node[T Scalar] struct {
	kind  kind
	value T      // constant leaves only
	name  string // variable leaves only
	left  *node[T]
	right *node[T]
}

// ============================================================
// Expr — expression handle
// ============================================================

// Expr is an immutable handle to the root of an expression tree. Copying an
// Expr copies a pointer, never the tree. The zero value is the constant 0.
type Expr[T Scalar] struct {
	root *node[T]
}

func (e Expr[T]) node() *node[T] {
	if e.root == nil {
		return &node[T]{kind: kindConstant}
	}
	return e.root
}

// Const returns a constant leaf.
func Const[T Scalar](v T) Expr[T] {
	return Expr[T]{root: &node[T]{kind: kindConstant, value: v}}
}

// Var returns a variable leaf. The name is not validated: any string is
// accepted, and an empty string is treated as just another variable name.
func Var[T Scalar](name string) Expr[T] {
	return Expr[T]{root: &node[T]{kind: kindVariable, name: name}}
}

func binary[T Scalar](k kind, l, r Expr[T]) Expr[T] {
	return Expr[T]{root: &node[T]{kind: k, left: l.node(), right: r.node()}}
}

func unary[T Scalar](k kind, u Expr[T]) Expr[T] {
	return Expr[T]{root: &node[T]{kind: k, left: u.node()}}
}

// ============================================================
// Builders
// ============================================================
//
// Every builder allocates exactly one new node over the operand roots.
// Operands are shared, never copied, and never mutated; acyclicity holds
// because a fresh parent can only point at pre-existing children.

// Add returns e + o.
func (e Expr[T]) Add(o Expr[T]) Expr[T] { return binary(kindAdd, e, o) }

// Sub returns e - o.
func (e Expr[T]) Sub(o Expr[T]) Expr[T] { return binary(kindSubtract, e, o) }

// Mul returns e * o.
func (e Expr[T]) Mul(o Expr[T]) Expr[T] { return binary(kindMultiply, e, o) }

// Div returns e / o.
func (e Expr[T]) Div(o Expr[T]) Expr[T] { return binary(kindDivide, e, o) }

// Neg returns -e.
func (e Expr[T]) Neg() Expr[T] { return unary(kindNegate, e) }

// Sin returns sin(e).
func Sin[T Scalar](e Expr[T]) Expr[T] { return unary(kindSin, e) }

// Cos returns cos(e).
func Cos[T Scalar](e Expr[T]) Expr[T] { return unary(kindCos, e) }

// Exp returns exp(e).
func Exp[T Scalar](e Expr[T]) Expr[T] { return unary(kindExp, e) }

// Log returns the natural logarithm log(e).
func Log[T Scalar](e Expr[T]) Expr[T] { return unary(kindLog, e) }

// Pow returns base raised to an expression exponent.
func Pow[T Scalar](base, exp Expr[T]) Expr[T] { return binary(kindPower, base, exp) }

// PowN returns base raised to a scalar exponent, wrapped as a constant leaf.
func PowN[T Scalar](base Expr[T], n T) Expr[T] { return Pow(base, Const(n)) }

// ============================================================
// Evaluation
// ============================================================

// Eval reduces the tree to a scalar under the given variable bindings. A
// variable absent from vars aborts the evaluation with an
// UndefinedVariableError. Arithmetic edge cases (division by zero, log of
// zero or a negative) are not guarded: the result is whatever the scalar
// type's native arithmetic produces.
//
// Shared subtrees are re-walked once per occurrence; cost is proportional
// to node visits, not distinct nodes.
func (e Expr[T]) Eval(vars map[string]T) (T, error) {
	return evalNode(e.node(), vars)
}

func evalNode[T Scalar](n *node[T], vars map[string]T) (T, error) {
	var zero T
	switch n.kind {
	case kindConstant:
		return n.value, nil
	case kindVariable:
		v, ok := vars[n.name]
		if !ok {
			return zero, &UndefinedVariableError{Name: n.name}
		}
		return v, nil
	case kindAdd, kindSubtract, kindMultiply, kindDivide, kindPower:
		l, err := evalNode(n.left, vars)
		if err != nil {
			return zero, err
		}
		r, err := evalNode(n.right, vars)
		if err != nil {
			return zero, err
		}
		switch n.kind {
		case kindAdd:
			return l + r, nil
		case kindSubtract:
			return l - r, nil
		case kindMultiply:
			return l * r, nil
		case kindDivide:
			return l / r, nil
		default:
			return scalarPow(l, r), nil
		}
	case kindSin, kindCos, kindExp, kindLog, kindNegate:
		u, err := evalNode(n.left, vars)
		if err != nil {
			return zero, err
		}
		switch n.kind {
		case kindSin:
			return scalarSin(u), nil
		case kindCos:
			return scalarCos(u), nil
		case kindExp:
			return scalarExp(u), nil
		case kindLog:
			return scalarLog(u), nil
		default:
			return -u, nil
		}
	}
	panic("symexpr: invalid node kind")
}

// ============================================================
// Differentiation
// ============================================================

// Diff returns the symbolic derivative with respect to name as a new tree.
// The receiver is untouched and stays valid, so higher derivatives are
// obtained by differentiating the result again.
//
// No simplification is applied: the output may contain literal
// multiplications by 0 or 1.
//
// A power node is only differentiable when its exponent subtree is
// constant; otherwise Diff fails with an UnsupportedDerivativeError.
func (e Expr[T]) Diff(name string) (Expr[T], error) {
	d, err := diffNode(e.node(), name)
	if err != nil {
		return Expr[T]{}, err
	}
	return Expr[T]{root: d}, nil
}

func diffNode[T Scalar](n *node[T], name string) (*node[T], error) {
	switch n.kind {
	case kindConstant:
		return &node[T]{kind: kindConstant}, nil

	case kindVariable:
		if n.name == name {
			return &node[T]{kind: kindConstant, value: T(1)}, nil
		}
		return &node[T]{kind: kindConstant}, nil

	case kindAdd, kindSubtract:
		dl, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		dr, err := diffNode(n.right, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{kind: n.kind, left: dl, right: dr}, nil

	case kindMultiply:
		// (uv)' = u'v + uv'
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		dv, err := diffNode(n.right, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{
			kind:  kindAdd,
			left:  &node[T]{kind: kindMultiply, left: du, right: n.right},
			right: &node[T]{kind: kindMultiply, left: n.left, right: dv},
		}, nil

	case kindDivide:
		// (u/v)' = (u'v - uv') / v^2
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		dv, err := diffNode(n.right, name)
		if err != nil {
			return nil, err
		}
		num := &node[T]{
			kind:  kindSubtract,
			left:  &node[T]{kind: kindMultiply, left: du, right: n.right},
			right: &node[T]{kind: kindMultiply, left: n.left, right: dv},
		}
		den := &node[T]{
			kind:  kindPower,
			left:  n.right,
			right: &node[T]{kind: kindConstant, value: T(2)},
		}
		return &node[T]{kind: kindDivide, left: num, right: den}, nil

	case kindPower:
		// (u^n)' = n * u^(n-1) * u', constant n only.
		if !isConstantNode(n.right) {
			return nil, &UnsupportedDerivativeError{Exponent: renderNode(n.right)}
		}
		nv, err := evalNode(n.right, nil)
		if err != nil {
			return nil, err
		}
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		scaled := &node[T]{
			kind: kindMultiply,
			left: &node[T]{kind: kindConstant, value: nv},
			right: &node[T]{
				kind:  kindPower,
				left:  n.left,
				right: &node[T]{kind: kindConstant, value: nv - T(1)},
			},
		}
		return &node[T]{kind: kindMultiply, left: scaled, right: du}, nil

	case kindSin:
		// cos(u) * u'
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{
			kind:  kindMultiply,
			left:  &node[T]{kind: kindCos, left: n.left},
			right: du,
		}, nil

	case kindCos:
		// -sin(u) * u'
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{
			kind:  kindMultiply,
			left:  &node[T]{kind: kindNegate, left: &node[T]{kind: kindSin, left: n.left}},
			right: du,
		}, nil

	case kindExp:
		// exp(u) * u'
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{
			kind:  kindMultiply,
			left:  &node[T]{kind: kindExp, left: n.left},
			right: du,
		}, nil

	case kindLog:
		// u' / u
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{kind: kindDivide, left: du, right: n.left}, nil

	case kindNegate:
		du, err := diffNode(n.left, name)
		if err != nil {
			return nil, err
		}
		return &node[T]{kind: kindNegate, left: du}, nil
	}
	panic("symexpr: invalid node kind")
}

// ============================================================
// Substitution
// ============================================================

// Substitute replaces every variable leaf named name with repl, sharing the
// replacement's structure rather than copying it. Subtrees without a match
// are returned as the same shared reference. Substitution never recurses
// into the replacement: if repl itself mentions name, it is inserted
// verbatim.
func (e Expr[T]) Substitute(name string, repl Expr[T]) Expr[T] {
	return Expr[T]{root: substNode(e.node(), name, repl.node())}
}

func substNode[T Scalar](n *node[T], name string, repl *node[T]) *node[T] {
	switch n.kind {
	case kindConstant:
		return n
	case kindVariable:
		if n.name == name {
			return repl
		}
		return n
	}
	l := substNode(n.left, name, repl)
	var r *node[T]
	if n.right != nil {
		r = substNode(n.right, name, repl)
	}
	if l == n.left && r == n.right {
		return n
	}
	return &node[T]{kind: n.kind, left: l, right: r}
}

// ============================================================
// Rendering
// ============================================================

// String renders the tree as a fully parenthesized infix/prefix form:
// binary arithmetic as "(l OP r)", power as "pow(l, r)", transcendental
// functions as "func(arg)", negation as "-(arg)". Output is unambiguous
// but never minimal; no precedence-aware elision is attempted.
func (e Expr[T]) String() string {
	return renderNode(e.node())
}

func renderNode[T Scalar](n *node[T]) string {
	switch n.kind {
	case kindConstant:
		return formatScalar(n.value)
	case kindVariable:
		return n.name
	case kindAdd:
		return "(" + renderNode(n.left) + " + " + renderNode(n.right) + ")"
	case kindSubtract:
		return "(" + renderNode(n.left) + " - " + renderNode(n.right) + ")"
	case kindMultiply:
		return "(" + renderNode(n.left) + " * " + renderNode(n.right) + ")"
	case kindDivide:
		return "(" + renderNode(n.left) + " / " + renderNode(n.right) + ")"
	case kindPower:
		return "pow(" + renderNode(n.left) + ", " + renderNode(n.right) + ")"
	case kindSin:
		return "sin(" + renderNode(n.left) + ")"
	case kindCos:
		return "cos(" + renderNode(n.left) + ")"
	case kindExp:
		return "exp(" + renderNode(n.left) + ")"
	case kindLog:
		return "log(" + renderNode(n.left) + ")"
	case kindNegate:
		return "-(" + renderNode(n.left) + ")"
	}
	panic("symexpr: invalid node kind")
}

// ============================================================
// Predicates
// ============================================================

// IsConstant reports whether the tree contains no variable leaf anywhere.
func (e Expr[T]) IsConstant() bool {
	return isConstantNode(e.node())
}

func isConstantNode[T Scalar](n *node[T]) bool {
	switch n.kind {
	case kindConstant:
		return true
	case kindVariable:
		return false
	case kindAdd, kindSubtract, kindMultiply, kindDivide, kindPower:
		return isConstantNode(n.left) && isConstantNode(n.right)
	case kindSin, kindCos, kindExp, kindLog, kindNegate:
		return isConstantNode(n.left)
	}
	panic("symexpr: invalid node kind")
}

// IsVariable reports whether the root itself is a variable leaf. The check
// is shallow, not recursive.
func (e Expr[T]) IsVariable() bool {
	return e.node().kind == kindVariable
}

// IsVariableNamed reports whether the root is a variable leaf with the
// given name.
func (e Expr[T]) IsVariableNamed(name string) bool {
	n := e.node()
	return n.kind == kindVariable && n.name == name
}
