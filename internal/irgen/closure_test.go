package irgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/wdlgen/internal/symbols"
	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
)

func intCVar(name string) symbols.CVar {
	return symbols.NewCVar(name, wdltypes.NewPrim(wdltypes.Int))
}

// TestClosureOf_PlainIdent exercises the simplest closure case: a bare
// identifier bound directly in env.
func TestClosureOf_PlainIdent(t *testing.T) {
	env := symbols.NewCallEnv()
	env.Define("ai", symbols.LinkedVar{CVar: intCVar("ai")})

	closure := ClosureOf([]wdl.Expr{&wdl.Ident{Name: "ai"}}, env)

	require.Len(t, closure, 1)
	_, ok := closure["ai"]
	assert.True(t, ok)
}

// TestClosureOf_TrailSearchPrefix exercises the struct-navigation case
// (SPEC_FULL.md §4): a chain "A.B.C" referenced while only "A.B" is bound
// in env must resolve via trail search to the "A.B" key, not be dropped.
func TestClosureOf_TrailSearchPrefix(t *testing.T) {
	env := symbols.NewCallEnv()
	env.Define("A.B", symbols.LinkedVar{CVar: intCVar("A.B")})

	chain := &wdl.Member{
		Base:  &wdl.Member{Base: &wdl.Ident{Name: "A"}, Field: "B"},
		Field: "C",
	}
	closure := ClosureOf([]wdl.Expr{chain}, env)

	require.Len(t, closure, 1)
	lv, ok := closure["A.B"]
	assert.True(t, ok)
	assert.Equal(t, "A.B", lv.CVar.Name)
}

// TestClosureOf_UnboundChainIsLocal verifies that a chain with no bound
// prefix at all (a locally-declared struct navigated inside the block) is
// not added to the closure.
func TestClosureOf_UnboundChainIsLocal(t *testing.T) {
	env := symbols.NewCallEnv()
	chain := &wdl.Member{Base: &wdl.Ident{Name: "local"}, Field: "field"}

	closure := ClosureOf([]wdl.Expr{chain}, env)
	assert.Empty(t, closure)
}

// TestClosureKeysSorted_FollowsEnvOrder checks that closure keys are
// returned in env binding order, not map iteration order, so synthesized
// applet interfaces are deterministic (P6).
func TestClosureKeysSorted_FollowsEnvOrder(t *testing.T) {
	env := symbols.NewCallEnv()
	env.Define("z", symbols.LinkedVar{CVar: intCVar("z")})
	env.Define("a", symbols.LinkedVar{CVar: intCVar("a")})
	env.Define("m", symbols.LinkedVar{CVar: intCVar("m")})

	closure := map[string]symbols.LinkedVar{
		"a": {CVar: intCVar("a")},
		"m": {CVar: intCVar("m")},
		"z": {CVar: intCVar("z")},
	}

	keys := ClosureKeysSorted(closure, env)
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}
