package exprutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdlvalue"
)

// TestRenameFreeVars_ExactChain covers the common case: the whole dotted
// chain is a literal key in the rename table.
func TestRenameFreeVars_ExactChain(t *testing.T) {
	r := MapRenamer{"A.B": "A_B"}
	expr := &wdl.Member{Base: &wdl.Ident{Name: "A"}, Field: "B"}

	got := RenameFreeVars(expr, r)
	ident, ok := got.(*wdl.Ident)
	require.True(t, ok)
	assert.Equal(t, "A_B", ident.Name)
}

// TestRenameFreeVars_PrefixMatch covers the struct-navigation case
// (SPEC_FULL.md §4): the rename table binds a strict prefix "A.B" of a
// longer referenced chain "A.B.C". The result must rename the matched
// prefix and re-wrap the unmatched trailing field "C" as a Member chain on
// top of the renamed Ident, not return the chain untouched.
func TestRenameFreeVars_PrefixMatch(t *testing.T) {
	r := MapRenamer{"A.B": "A_B"}
	expr := &wdl.Member{
		Base:  &wdl.Member{Base: &wdl.Ident{Name: "A"}, Field: "B"},
		Field: "C",
	}

	got := RenameFreeVars(expr, r)
	assert.Equal(t, "A_B.C", got.String())

	member, ok := got.(*wdl.Member)
	require.True(t, ok)
	assert.Equal(t, "C", member.Field)
	ident, ok := member.Base.(*wdl.Ident)
	require.True(t, ok)
	assert.Equal(t, "A_B", ident.Name)
}

// TestRenameFreeVars_NoMatchLeavesChainUntouched verifies a chain with no
// bound prefix at all is returned unchanged.
func TestRenameFreeVars_NoMatchLeavesChainUntouched(t *testing.T) {
	r := MapRenamer{"X": "X_renamed"}
	expr := &wdl.Member{Base: &wdl.Ident{Name: "A"}, Field: "B"}

	got := RenameFreeVars(expr, r)
	assert.Equal(t, "A.B", got.String())
}

// TestRenameFreeVars_DeepPrefixMatch covers a chain navigated three levels
// past the bound prefix.
func TestRenameFreeVars_DeepPrefixMatch(t *testing.T) {
	r := MapRenamer{"A": "A_renamed"}
	expr := &wdl.Member{
		Base: &wdl.Member{
			Base:  &wdl.Member{Base: &wdl.Ident{Name: "A"}, Field: "B"},
			Field: "C",
		},
		Field: "D",
	}

	got := RenameFreeVars(expr, r)
	assert.Equal(t, "A_renamed.B.C.D", got.String())
}

// TestRenameFreeVars_StringLiteralUntouched guards against the naive
// textual-substitution pitfall spec §9 Open Question 1 warns about: a
// string literal payload that happens to contain a bound name must not be
// rewritten.
func TestRenameFreeVars_StringLiteralUntouched(t *testing.T) {
	r := MapRenamer{"A": "A_renamed"}
	lit := &wdl.Literal{Value: wdlvalue.String("A.B")}

	got := RenameFreeVars(lit, r)
	assert.Same(t, lit, got)
}
