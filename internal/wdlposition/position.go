// Package wdlposition carries source positions through the lowering pass so
// diagnostics can point back at the originating WDL source.
package wdlposition

import "fmt"

// Position identifies a point in a source file.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

// String renders the position as "file:line:column", omitting the file when
// it is empty (e.g. for synthesized nodes with no originating source).
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Positioned is implemented by every AST node that can report where it came
// from in source. Synthesized nodes return the zero Position.
type Positioned interface {
	Pos() Position
}
