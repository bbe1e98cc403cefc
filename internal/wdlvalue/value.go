// Package wdlvalue provides a compact tagged representation of WDL constant
// literal values, the payload carried by symbols.SArg's Constant variant and
// returned by exprutil.TryConstEval.
package wdlvalue

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind enumerates the literal shapes the lowering pass can fold to a
// compile-time constant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns a human-readable form of the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is an immutable constant literal. It intentionally avoids a bare
// interface{} payload so callers can switch on Kind without a type assertion
// failing silently.
type Value struct {
	kind Kind

	b      bool
	i      int64
	f      float64
	s      string
	elems  []Value
	fields map[string]Value
	keys   []string // field names in sorted order, for deterministic output
}

// Null returns the null constant.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean constant.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Int returns an integer constant.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point constant.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string constant.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array constant, copying elems so later mutation of the
// caller's slice cannot alter an already-constructed Value.
func Array(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, elems: cp}
}

// Object returns an object constant whose fields are ordered by sorted key.
func Object(fields map[string]Value) Value {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, fields: cp, keys: keys}
}

// Kind reports the value's tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload; valid only when Kind() == KindBoolean.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload; valid only when Kind() == KindInt.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float payload; valid only when Kind() == KindFloat.
func (v Value) AsFloat() float64 { return v.f }

// AsString returns the string payload; valid only when Kind() == KindString.
func (v Value) AsString() string { return v.s }

// Elems returns the array payload; valid only when Kind() == KindArray.
func (v Value) Elems() []Value { return v.elems }

// Field returns the named object field and whether it was present.
func (v Value) Field(name string) (Value, bool) {
	f, ok := v.fields[name]
	return f, ok
}

// FieldNames returns object field names in sorted order.
func (v Value) FieldNames() []string { return v.keys }

// Literal renders the value the way it must appear in a synthesized WDL
// source fragment (§4.6, §4.7): a re-parseable literal expression.
func (v Value) Literal() string {
	switch v.kind {
	case KindNull:
		return "None"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		b, _ := json.Marshal(v.s)
		return string(b)
	case KindArray:
		out := "["
		for i, e := range v.elems {
			if i > 0 {
				out += ", "
			}
			out += e.Literal()
		}
		return out + "]"
	case KindObject:
		out := "{"
		for i, k := range v.keys {
			if i > 0 {
				out += ", "
			}
			b, _ := json.Marshal(k)
			out += string(b) + ": " + v.fields[k].Literal()
		}
		return out + "}"
	default:
		return "None"
	}
}

// MarshalJSON renders the value as the equivalent JSON literal. (irjson
// embeds constants through Literal(), not through this method.)
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBoolean:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.elems)
	case KindObject:
		ordered := make(map[string]Value, len(v.fields))
		for k, val := range v.fields {
			ordered[k] = val
		}
		return json.Marshal(ordered)
	default:
		return []byte("null"), nil
	}
}
