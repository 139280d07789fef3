package filter

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
)

// MergeStrs normalizes inline text: adjacent Str elements merge into
// one and empty Strs drop.  Builders and earlier passes are free to
// emit fragmented text; after this pass every Str is maximal.
type MergeStrs struct{}

func (MergeStrs) Name() string { return "merge-strs" }

func (MergeStrs) Apply(doc *ast.Doc) *ast.Doc {
	t := Transformer{InlineSlice: mergeStrs}
	return t.Doc(doc)
}

func mergeStrs(ins []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(ins))
	for _, in := range ins {
		s, ok := in.(*ast.Str)
		if !ok {
			out = append(out, in)
			continue
		}
		if s.Text == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.Str); ok {
				out[len(out)-1] = &ast.Str{Text: prev.Text + s.Text}
				continue
			}
		}
		out = append(out, in)
	}
	return out
}
