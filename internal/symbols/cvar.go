// Package symbols implements the data model of spec.md §3: typed compile
// variables (CVar), stage arguments (SArg), linked variables, and the
// symbol environment (CallEnv) threaded through the workflow assembler.
package symbols

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/wdlgen/internal/wdltypes"
)

// Attrs mirrors wdl.Attrs but at the CVar level: declaration attributes
// including an optional default literal value (spec §3).
type Attrs struct {
	// DefaultLiteral holds the serialized form of a constant default, or
	// "" when there is none. Kept as a string (rather than wdlvalue.Value)
	// because CVar lives below wdlvalue in the SPEC_FULL layering and is
	// reused purely as an applet-interface descriptor.
	DefaultLiteral string
	HasDefault     bool
}

// CVar is a typed compile-time variable (spec §3).
//
// Invariant: DxVarName is a deterministic function of Name; two distinct
// Name values must not collide after sanitization within the same applet
// interface — SanitizeUnique enforces this across a whole interface.
type CVar struct {
	Name string
	// DxVarName is Name with every "." replaced by "_", the sanitized form
	// required at the platform boundary where dots are illegal.
	DxVarName string
	Type      wdltypes.Type
	Attrs     Attrs
	// OriginalFqn is set when this CVar represents a propagated unbound
	// task input synthesized inside a scatter/conditional (spec §4.7 point
	// 4): it records the dotted source name for diagnostics even though
	// Name/DxVarName have been renamed to "<callName>_<inputName>".
	OriginalFqn string
}

// Sanitize converts a dotted source name into its platform-legal form:
// NFC-normalize first (so two differently-composed Unicode encodings of the
// same call alias sanitize identically across platforms), then replace each
// "." with "_".
func Sanitize(name string) string {
	normalized := norm.NFC.String(name)
	return strings.ReplaceAll(normalized, ".", "_")
}

// NewCVar constructs a CVar with a deterministically sanitized DxVarName.
func NewCVar(name string, typ wdltypes.Type) CVar {
	return CVar{Name: name, DxVarName: Sanitize(name), Type: typ}
}

// WithDefault returns a copy of v carrying the given default literal.
func (v CVar) WithDefault(literal string) CVar {
	v.Attrs = Attrs{DefaultLiteral: literal, HasDefault: true}
	return v
}

// SanitizeUnique sanitizes a batch of CVars' Name fields, rejecting the
// interface if two distinct Names collide on the same DxVarName (spec §3
// invariant).
func SanitizeUnique(vars []CVar) ([]CVar, []string) {
	seen := make(map[string]string, len(vars))
	var collisions []string
	out := make([]CVar, len(vars))
	for i, v := range vars {
		v.DxVarName = Sanitize(v.Name)
		if prior, ok := seen[v.DxVarName]; ok && prior != v.Name {
			collisions = append(collisions, v.Name)
		} else {
			seen[v.DxVarName] = v.Name
		}
		out[i] = v
	}
	return out, collisions
}
