// Package wdltypes implements the WDL type algebra needed by the lowering
// pass: primitives, compound types, and the two type-lifting operations a
// block boundary performs (scatter lifts T to Array[T]; conditional lifts T
// to Optional[T]).
package wdltypes

import "fmt"

// Primitive enumerates WDL's scalar kinds.
type Primitive uint8

const (
	Int Primitive = iota
	Float
	String
	Boolean
	File
	Object
)

func (p Primitive) String() string {
	switch p {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case File:
		return "File"
	case Object:
		return "Object"
	default:
		return "Unknown"
	}
}

// Type is the common interface implemented by every WDL type. It is a
// closed algebraic family (Prim, Array, Optional, Pair, Struct), sealed by
// the unexported kind() method; callers dispatch on it with type switches
// and type assertions.
type Type interface {
	// String renders the type the way it must appear in a synthesized
	// source fragment (e.g. "Array[Int]", "Int?").
	String() string
	// Equal reports structural equality.
	Equal(other Type) bool
	kind() typeKind
}

type typeKind uint8

const (
	kindPrim typeKind = iota
	kindArray
	kindOptional
	kindPair
	kindStruct
)

// Prim wraps a primitive scalar type.
type Prim struct{ P Primitive }

func (t Prim) String() string           { return t.P.String() }
func (t Prim) kind() typeKind           { return kindPrim }
func (t Prim) Equal(other Type) bool {
	o, ok := other.(Prim)
	return ok && o.P == t.P
}

// NewPrim constructs a primitive type.
func NewPrim(p Primitive) Type { return Prim{P: p} }

// Array is WDL's "Array[T]" sequence type.
type Array struct{ Elem Type }

func (t Array) String() string { return fmt.Sprintf("Array[%s]", t.Elem.String()) }
func (t Array) kind() typeKind  { return kindArray }
func (t Array) Equal(other Type) bool {
	o, ok := other.(Array)
	return ok && o.Elem.Equal(t.Elem)
}

// Optional is WDL's "T?" type.
type Optional struct{ Inner Type }

func (t Optional) String() string { return t.Inner.String() + "?" }
func (t Optional) kind() typeKind  { return kindOptional }
func (t Optional) Equal(other Type) bool {
	o, ok := other.(Optional)
	return ok && o.Inner.Equal(t.Inner)
}

// Pair is WDL's "Pair[L, R]" type.
type Pair struct{ Left, Right Type }

func (t Pair) String() string { return fmt.Sprintf("Pair[%s, %s]", t.Left.String(), t.Right.String()) }
func (t Pair) kind() typeKind  { return kindPair }
func (t Pair) Equal(other Type) bool {
	o, ok := other.(Pair)
	return ok && o.Left.Equal(t.Left) && o.Right.Equal(t.Right)
}

// NamedType is one field of a Struct.
type NamedType struct {
	Name string
	Type Type
}

// Struct supports the "struct navigation" use of member access mentioned by
// spec.md §4.3: a declaration whose type is a struct can be dotted into
// (A.field) the same way a call's output can, and both are resolved by the
// closure analyzer's trail search.
type Struct struct {
	Name   string
	Fields []NamedType
}

func (t Struct) String() string { return t.Name }
func (t Struct) kind() typeKind  { return kindStruct }
func (t Struct) Equal(other Type) bool {
	o, ok := other.(Struct)
	return ok && o.Name == t.Name
}

// Field looks up a struct field by name.
func (t Struct) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// IsOptional reports whether t is already an Optional.
func IsOptional(t Type) bool {
	_, ok := t.(Optional)
	return ok
}

// Lift wraps t as Array[t], the scatter output-type lift (§4.7 point 5).
func Lift(t Type) Type { return Array{Elem: t} }

// LiftOptional wraps t as Optional[t] unless t is already optional, in
// which case it is returned unchanged — double optionals are forbidden
// (§4.8, invariant P5).
func LiftOptional(t Type) Type {
	if IsOptional(t) {
		return t
	}
	return Optional{Inner: t}
}

// IsNativelyRepresentable reports whether t can be represented directly at
// the DX platform boundary without an intermediate collection/JSON step
// (spec §4.7 point 7: decides Scatter vs. ScatterCollect). Primitives and
// arrays of natively-representable types qualify; optionals, pairs and
// structs do not.
func IsNativelyRepresentable(t Type) bool {
	switch v := t.(type) {
	case Prim:
		return true
	case Array:
		return IsNativelyRepresentable(v.Elem)
	default:
		return false
	}
}
