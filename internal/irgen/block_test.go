package irgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/wdlgen/internal/wdl"
	"github.com/cwbudde/wdlgen/internal/wdltypes"
)

func declChild(name string) *wdl.Decl {
	return &wdl.Decl{Name: name, Type: wdltypes.NewPrim(wdltypes.Int)}
}

func callChild(stageName string) *wdl.Call {
	return &wdl.Call{Task: stageName}
}

// TestPartitionBlocks_DeclRunThenCall mirrors spec §8 end-to-end scenario 1:
// each declaration run is flushed as its own DeclRun block ahead of the call
// that follows it.
func TestPartitionBlocks_DeclRunThenCall(t *testing.T) {
	children := []wdl.WorkflowChild{
		declChild("ai"),
		callChild("Add"),
		declChild("xtmp"),
		callChild("Mul"),
	}

	blocks := PartitionBlocks(children)
	require.Len(t, blocks, 4)

	assert.Equal(t, BlockDeclRun, blocks[0].Tag)
	assert.Len(t, blocks[0].Decls, 1)

	assert.Equal(t, BlockCall, blocks[1].Tag)
	assert.Equal(t, "Add", blocks[1].Call.Task)

	assert.Equal(t, BlockDeclRun, blocks[2].Tag)
	assert.Len(t, blocks[2].Decls, 1)

	assert.Equal(t, BlockCall, blocks[3].Tag)
	assert.Equal(t, "Mul", blocks[3].Call.Task)
}

// TestPartitionBlocks_ScatterAbsorbsPrecedingDecls mirrors spec §8 scenario
// 3: declarations immediately preceding a conditional/scatter are absorbed
// into its PreDecls rather than becoming a separate DeclRun block.
func TestPartitionBlocks_ScatterAbsorbsPrecedingDecls(t *testing.T) {
	scatter := &wdl.Scatter{Var: "k", Collection: &wdl.Ident{Name: "xs"}}
	children := []wdl.WorkflowChild{
		declChild("f0"),
		declChild("f1"),
		scatter,
	}

	blocks := PartitionBlocks(children)
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockScatter, blocks[0].Tag)
	assert.Len(t, blocks[0].PreDecls, 2)
	assert.Same(t, scatter, blocks[0].Scatter)
}

// TestPartitionBlocks_ConditionalAbsorbsPrecedingDecls is the Conditional
// analogue of the above.
func TestPartitionBlocks_ConditionalAbsorbsPrecedingDecls(t *testing.T) {
	cond := &wdl.Conditional{Condition: &wdl.Ident{Name: "flag"}}
	children := []wdl.WorkflowChild{
		declChild("f0"),
		cond,
	}

	blocks := PartitionBlocks(children)
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockIf, blocks[0].Tag)
	assert.Len(t, blocks[0].PreDecls, 1)
}

// TestPartitionBlocks_TrailingDeclRunFlushed verifies a decl run with no
// following call/block still becomes its own DeclRun block.
func TestPartitionBlocks_TrailingDeclRunFlushed(t *testing.T) {
	children := []wdl.WorkflowChild{
		callChild("Add"),
		declChild("tail"),
	}

	blocks := PartitionBlocks(children)
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockCall, blocks[0].Tag)
	assert.Equal(t, BlockDeclRun, blocks[1].Tag)
}
