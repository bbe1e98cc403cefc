package irgen

import "github.com/cwbudde/wdlgen/internal/wdl"

// BlockTag tags the variant of Block (spec §4.2).
type BlockTag uint8

const (
	BlockDeclRun BlockTag = iota
	BlockIf
	BlockScatter
	BlockCall
)

// Block is one segment of a partitioned workflow body (spec §4.2).
type Block struct {
	Tag BlockTag

	// DeclRun payload.
	Decls []*wdl.Decl

	// IfBlock / ScatterBlock payload: preDecls is the absorbed run of
	// declarations preceding the conditional/scatter.
	PreDecls []*wdl.Decl
	If       *wdl.Conditional // set iff Tag == BlockIf
	Scatter  *wdl.Scatter     // set iff Tag == BlockScatter

	// CallBlock payload.
	Call *wdl.Call
}

// PartitionBlocks segments an ordered sequence of workflow children into
// blocks (spec §4.2). Single pass, accumulating a pending declaration run;
// a scatter/conditional absorbs the pending run as its preDecls; a call
// first flushes the pending run as a DeclRun, then emits a CallBlock; any
// trailing pending run is flushed at the end.
func PartitionBlocks(children []wdl.WorkflowChild) []Block {
	var blocks []Block
	var pending []*wdl.Decl

	flush := func() {
		if len(pending) > 0 {
			blocks = append(blocks, Block{Tag: BlockDeclRun, Decls: pending})
			pending = nil
		}
	}

	for _, c := range children {
		switch v := c.(type) {
		case *wdl.Decl:
			pending = append(pending, v)
		case *wdl.Scatter:
			blocks = append(blocks, Block{Tag: BlockScatter, PreDecls: pending, Scatter: v})
			pending = nil
		case *wdl.Conditional:
			blocks = append(blocks, Block{Tag: BlockIf, PreDecls: pending, If: v})
			pending = nil
		case *wdl.Call:
			flush()
			blocks = append(blocks, Block{Tag: BlockCall, Call: v})
		}
	}
	flush()

	return blocks
}
