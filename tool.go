package symexpr

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON tree codec (float64 domain)
// ============================================================
//
// The wire shape mirrors the node kinds:
//
//	{"type":"const","value":2}
//	{"type":"var","name":"x"}
//	{"type":"add","left":{...},"right":{...}}   (also sub, mul, div)
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"sin","arg":{...}}                  (also cos, exp, log, neg)
//
// JSON has no complex literal, so the codec and the tool layer below are
// fixed to the float64 domain; complex expressions remain available
// through the Go API.

// ToJSON converts an expression to its JSON tree form.
func ToJSON(e Expr[float64]) map[string]any {
	return nodeToJSON(e.node())
}

func nodeToJSON(n *node[float64]) map[string]any {
	switch n.kind {
	case kindConstant:
		return map[string]any{"type": "const", "value": n.value}
	case kindVariable:
		return map[string]any{"type": "var", "name": n.name}
	case kindAdd:
		return map[string]any{"type": "add", "left": nodeToJSON(n.left), "right": nodeToJSON(n.right)}
	case kindSubtract:
		return map[string]any{"type": "sub", "left": nodeToJSON(n.left), "right": nodeToJSON(n.right)}
	case kindMultiply:
		return map[string]any{"type": "mul", "left": nodeToJSON(n.left), "right": nodeToJSON(n.right)}
	case kindDivide:
		return map[string]any{"type": "div", "left": nodeToJSON(n.left), "right": nodeToJSON(n.right)}
	case kindPower:
		return map[string]any{"type": "pow", "base": nodeToJSON(n.left), "exp": nodeToJSON(n.right)}
	case kindSin:
		return map[string]any{"type": "sin", "arg": nodeToJSON(n.left)}
	case kindCos:
		return map[string]any{"type": "cos", "arg": nodeToJSON(n.left)}
	case kindExp:
		return map[string]any{"type": "exp", "arg": nodeToJSON(n.left)}
	case kindLog:
		return map[string]any{"type": "log", "arg": nodeToJSON(n.left)}
	case kindNegate:
		return map[string]any{"type": "neg", "arg": nodeToJSON(n.left)}
	}
	panic("symexpr: invalid node kind")
}

// FromJSON reconstructs an expression from its JSON tree form.
func FromJSON(m map[string]any) (Expr[float64], error) {
	n, err := nodeFromJSON(m)
	if err != nil {
		return Expr[float64]{}, err
	}
	return Expr[float64]{root: n}, nil
}

func nodeFromJSON(m map[string]any) (*node[float64], error) {
	typ, ok := m["type"].(string)
	if !ok {
		return nil, fmt.Errorf("expression object missing type")
	}

	child := func(key string) (*node[float64], error) {
		v, ok := m[key]
		if !ok {
			return nil, fmt.Errorf("%s: missing %s", typ, key)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %s must be an expression object", typ, key)
		}
		n, err := nodeFromJSON(obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, key, err)
		}
		return n, nil
	}

	switch typ {
	case "const":
		v, ok := m["value"].(float64)
		if !ok {
			return nil, fmt.Errorf("const: value must be a number")
		}
		return &node[float64]{kind: kindConstant, value: v}, nil

	case "var":
		name, ok := m["name"].(string)
		if !ok {
			return nil, fmt.Errorf("var: name must be a string")
		}
		return &node[float64]{kind: kindVariable, name: name}, nil

	case "add", "sub", "mul", "div":
		l, err := child("left")
		if err != nil {
			return nil, err
		}
		r, err := child("right")
		if err != nil {
			return nil, err
		}
		k := map[string]kind{"add": kindAdd, "sub": kindSubtract, "mul": kindMultiply, "div": kindDivide}[typ]
		return &node[float64]{kind: k, left: l, right: r}, nil

	case "pow":
		base, err := child("base")
		if err != nil {
			return nil, err
		}
		exp, err := child("exp")
		if err != nil {
			return nil, err
		}
		return &node[float64]{kind: kindPower, left: base, right: exp}, nil

	case "sin", "cos", "exp", "log", "neg":
		arg, err := child("arg")
		if err != nil {
			return nil, err
		}
		k := map[string]kind{"sin": kindSin, "cos": kindCos, "exp": kindExp, "log": kindLog, "neg": kindNegate}[typ]
		return &node[float64]{kind: k, left: arg}, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleToolCall executes a single tool request against the float64 engine.
// Failures are reported in the response's Error field, never as a panic.
func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr[float64], error) {
		v, ok := req.Params[key]
		if !ok {
			return Expr[float64]{}, fmt.Errorf("missing param: %s", key)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return Expr[float64]{}, fmt.Errorf("param %s must be an expression object", key)
		}
		return FromJSON(m)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getBindings := func(key string) (map[string]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("param %s must be an object of numbers", key)
		}
		vars := make(map[string]float64, len(raw))
		for name, rv := range raw {
			f, ok := rv.(float64)
			if !ok {
				return nil, fmt.Errorf("param %s.%s must be a number", key, name)
			}
			vars[name] = f
		}
		return vars, nil
	}
	respond := func(e Expr[float64]) ToolResponse {
		return ToolResponse{Result: ToJSON(e), String: e.String()}
	}

	switch req.Tool {
	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars, err := getBindings("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := e.Eval(vars)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: v, String: formatScalar(v)}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		name, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		d, err := e.Diff(name)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(d)

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		name, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		repl, err := getExpr("value")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.Substitute(name, repl))

	case "render":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{String: e.String()}

	case "is_constant":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: e.IsConstant()}

	case "is_variable":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if _, ok := req.Params["var"]; ok {
			name, err := getString("var")
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			return ToolResponse{Result: e.IsVariableNamed(name)}
		}
		return ToolResponse{Result: e.IsVariable()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// MCPToolSpec returns the tool schema for agent registration.
func MCPToolSpec() string {
	tools := []map[string]any{
		ts("evaluate", "Evaluate an expression under variable bindings", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "object"}),
		ts("diff", "Symbolic derivative d/dvar", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("substitute", "Replace a variable with an expression", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("render", "Fully parenthesized textual form", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("is_constant", "True when no variable occurs in the expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("is_variable", "True when the root is a variable leaf. Optional: var (name match)", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]any{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]any {
	properties := map[string]any{}
	for k, typ := range props {
		properties[k] = map[string]any{"type": typ}
	}
	return map[string]any{
		"name":        name,
		"description": description,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
