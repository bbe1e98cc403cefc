// Package wdljson decodes the JSON-encoded AST document the CLI accepts in
// place of a real WDL front end (spec.md §1 keeps lexing/parsing out of
// scope). It is a tagged-union decoder over internal/wdl's node types,
// grounded on the teacher's internal/bytecode/serializer.go deserializer
// half (a small discriminated-union reader keyed by a string "kind"/"op"
// tag) rather than on reflection-based unmarshaling, since wdl.Expr and
// wdl.WorkflowChild are closed interfaces encoding/json cannot populate on
// its own.
package wdljson

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// Decode parses a JSON namespace document into a wdl.Namespace.
func Decode(data []byte) (*wdl.Namespace, error) {
	var doc namespaceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wdljson: %w", err)
	}
	return doc.build()
}

type namespaceDoc struct {
	Tasks     []taskDoc     `json:"tasks"`
	Workflows []workflowDoc `json:"workflows"`
	Primary   string        `json:"primary"`
}

func (d *namespaceDoc) build() (*wdl.Namespace, error) {
	ns := &wdl.Namespace{Primary: d.Primary}
	for _, t := range d.Tasks {
		task, err := t.build()
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		ns.Tasks = append(ns.Tasks, task)
	}
	for _, w := range d.Workflows {
		wf, err := w.build()
		if err != nil {
			return nil, fmt.Errorf("workflow %q: %w", w.Name, err)
		}
		ns.Workflows = append(ns.Workflows, wf)
	}
	return ns, nil
}

type taskDoc struct {
	Name    string            `json:"name"`
	Decls   []declDoc         `json:"decls"`
	Outputs []declDoc         `json:"outputs"`
	Runtime runtimeAttrsDoc   `json:"runtime"`
	Meta    map[string]string `json:"meta"`
	Command string            `json:"command"`
}

func (d *taskDoc) build() (*wdl.Task, error) {
	task := &wdl.Task{Name: d.Name, Meta: d.Meta, Command: d.Command}
	for _, decl := range d.Decls {
		decl, err := decl.build()
		if err != nil {
			return nil, err
		}
		task.Decls = append(task.Decls, decl)
	}
	for _, out := range d.Outputs {
		decl, err := out.build()
		if err != nil {
			return nil, err
		}
		task.Outputs = append(task.Outputs, decl)
	}
	runtime, err := d.Runtime.build()
	if err != nil {
		return nil, err
	}
	task.Runtime = runtime
	return task, nil
}

type runtimeAttrsDoc struct {
	Memory       json.RawMessage `json:"memory"`
	Disks        json.RawMessage `json:"disks"`
	CPU          json.RawMessage `json:"cpu"`
	InstanceName json.RawMessage `json:"instanceName"`
	Docker       json.RawMessage `json:"docker"`
}

func (d *runtimeAttrsDoc) build() (wdl.RuntimeAttrs, error) {
	var out wdl.RuntimeAttrs
	var err error
	if out.Memory, err = decodeOptionalExpr(d.Memory); err != nil {
		return out, err
	}
	if out.Disks, err = decodeOptionalExpr(d.Disks); err != nil {
		return out, err
	}
	if out.CPU, err = decodeOptionalExpr(d.CPU); err != nil {
		return out, err
	}
	if out.InstanceName, err = decodeOptionalExpr(d.InstanceName); err != nil {
		return out, err
	}
	if out.Docker, err = decodeOptionalExpr(d.Docker); err != nil {
		return out, err
	}
	return out, nil
}

func decodeOptionalExpr(raw json.RawMessage) (wdl.Expr, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeExpr(raw)
}

type workflowDoc struct {
	Name     string            `json:"name"`
	Children []json.RawMessage `json:"children"`
	Outputs  []declDoc         `json:"outputs"`
	Meta     map[string]string `json:"meta"`
}

func (d *workflowDoc) build() (*wdl.Workflow, error) {
	wf := &wdl.Workflow{Name: d.Name, Meta: d.Meta}
	for _, raw := range d.Children {
		child, err := decodeWorkflowChild(raw)
		if err != nil {
			return nil, err
		}
		wf.Children = append(wf.Children, child)
	}
	for _, out := range d.Outputs {
		decl, err := out.build()
		if err != nil {
			return nil, err
		}
		wf.Outputs = append(wf.Outputs, decl)
	}
	return wf, nil
}

type declDoc struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Optional  bool            `json:"optional"`
	Default   json.RawMessage `json:"default"`
	Synthetic bool            `json:"synthetic"`
}

func (d *declDoc) build() (*wdl.Decl, error) {
	t, err := wdltypes.Parse(d.Type)
	if err != nil {
		return nil, fmt.Errorf("decl %q: %w", d.Name, err)
	}
	decl := &wdl.Decl{Name: d.Name, Type: t, Optional: d.Optional, Synthetic: d.Synthetic}
	if len(d.Default) > 0 {
		expr, err := decodeExpr(d.Default)
		if err != nil {
			return nil, fmt.Errorf("decl %q default: %w", d.Name, err)
		}
		decl.Attrs.Default = expr
	}
	return decl, nil
}

// tagged is the discriminator every JSON node (expr or workflow child)
// carries under "node".
type tagged struct {
	Node string `json:"node"`
}

func decodeWorkflowChild(raw json.RawMessage) (wdl.WorkflowChild, error) {
	var t tagged
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	switch t.Node {
	case "decl":
		var d declDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d.build()
	case "call":
		var c callDoc
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c.build()
	case "scatter":
		var s scatterDoc
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s.build()
	case "if":
		var c conditionalDoc
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c.build()
	default:
		return nil, fmt.Errorf("unknown workflow child node %q", t.Node)
	}
}

type callInputDoc struct {
	Name string          `json:"name"`
	Expr json.RawMessage `json:"expr"`
}

type callDoc struct {
	Task   string         `json:"task"`
	Alias  string         `json:"alias"`
	Inputs []callInputDoc `json:"inputs"`
}

func (d *callDoc) build() (*wdl.Call, error) {
	call := &wdl.Call{Task: d.Task, Alias: d.Alias}
	for _, in := range d.Inputs {
		expr, err := decodeExpr(in.Expr)
		if err != nil {
			return nil, fmt.Errorf("call %q input %q: %w", d.Task, in.Name, err)
		}
		call.Inputs = append(call.Inputs, wdl.CallInput{Name: in.Name, Expr: expr})
	}
	return call, nil
}

type scatterDoc struct {
	Var        string            `json:"var"`
	Collection json.RawMessage   `json:"collection"`
	Body       []json.RawMessage `json:"body"`
}

func (d *scatterDoc) build() (*wdl.Scatter, error) {
	collection, err := decodeExpr(d.Collection)
	if err != nil {
		return nil, fmt.Errorf("scatter collection: %w", err)
	}
	s := &wdl.Scatter{Var: d.Var, Collection: collection}
	for _, raw := range d.Body {
		child, err := decodeWorkflowChild(raw)
		if err != nil {
			return nil, err
		}
		s.Body = append(s.Body, child)
	}
	return s, nil
}

type conditionalDoc struct {
	Condition json.RawMessage   `json:"condition"`
	Body      []json.RawMessage `json:"body"`
}

func (d *conditionalDoc) build() (*wdl.Conditional, error) {
	condition, err := decodeExpr(d.Condition)
	if err != nil {
		return nil, fmt.Errorf("conditional condition: %w", err)
	}
	c := &wdl.Conditional{Condition: condition}
	for _, raw := range d.Body {
		child, err := decodeWorkflowChild(raw)
		if err != nil {
			return nil, err
		}
		c.Body = append(c.Body, child)
	}
	return c, nil
}

func decodeExpr(raw json.RawMessage) (wdl.Expr, error) {
	var t tagged
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	switch t.Node {
	case "ident":
		var d struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &wdl.Ident{Name: d.Name}, nil
	case "member":
		var d struct {
			Base  json.RawMessage `json:"base"`
			Field string          `json:"field"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		base, err := decodeExpr(d.Base)
		if err != nil {
			return nil, err
		}
		return &wdl.Member{Base: base, Field: d.Field}, nil
	case "literal":
		var d struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		v, err := decodeValue(d.Value)
		if err != nil {
			return nil, err
		}
		return &wdl.Literal{Value: v}, nil
	case "index":
		var d struct {
			Base json.RawMessage `json:"base"`
			Sub  json.RawMessage `json:"sub"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		base, err := decodeExpr(d.Base)
		if err != nil {
			return nil, err
		}
		sub, err := decodeExpr(d.Sub)
		if err != nil {
			return nil, err
		}
		return &wdl.Index{Base: base, Sub: sub}, nil
	case "apply":
		var d struct {
			Func string            `json:"func"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		apply := &wdl.Apply{Func: d.Func}
		for _, a := range d.Args {
			arg, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			apply.Args = append(apply.Args, arg)
		}
		return apply, nil
	case "binary":
		var d struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		left, err := decodeExpr(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(d.Right)
		if err != nil {
			return nil, err
		}
		return &wdl.BinaryOp{Op: d.Op, Left: left, Right: right}, nil
	case "unary":
		var d struct {
			Op string          `json:"op"`
			X  json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		x, err := decodeExpr(d.X)
		if err != nil {
			return nil, err
		}
		return &wdl.UnaryOp{Op: d.Op, X: x}, nil
	case "array":
		var d struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		lit := &wdl.ArrayLit{}
		for _, e := range d.Elems {
			elem, err := decodeExpr(e)
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, elem)
		}
		return lit, nil
	default:
		return nil, fmt.Errorf("unknown expr node %q", t.Node)
	}
}

func decodeValue(raw json.RawMessage) (wdlvalue.Value, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return wdlvalue.Value{}, err
	}
	return valueOf(v)
}

func valueOf(v any) (wdlvalue.Value, error) {
	switch x := v.(type) {
	case nil:
		return wdlvalue.Null(), nil
	case bool:
		return wdlvalue.Bool(x), nil
	case float64:
		if x == float64(int64(x)) {
			return wdlvalue.Int(int64(x)), nil
		}
		return wdlvalue.Float(x), nil
	case string:
		return wdlvalue.String(x), nil
	case []any:
		elems := make([]wdlvalue.Value, len(x))
		for i, e := range x {
			ev, err := valueOf(e)
			if err != nil {
				return wdlvalue.Value{}, err
			}
			elems[i] = ev
		}
		return wdlvalue.Array(elems), nil
	case map[string]any:
		fields := make(map[string]wdlvalue.Value, len(x))
		for k, e := range x {
			ev, err := valueOf(e)
			if err != nil {
				return wdlvalue.Value{}, err
			}
			fields[k] = ev
		}
		return wdlvalue.Object(fields), nil
	default:
		return wdlvalue.Value{}, fmt.Errorf("unsupported literal value %T", v)
	}
}
