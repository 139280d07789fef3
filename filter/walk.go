package filter

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
)

// Transformer rewrites a document bottom-up.  Inline and Block run on
// each element after its children have been transformed; returning nil
// keeps the element, returning a slice replaces it (an empty non-nil
// slice deletes it).  InlineSlice runs once per rebuilt inline
// sequence, for rewrites that span siblings.
type Transformer struct {
	Inline      func(ast.Inline) []ast.Inline
	Block       func(ast.Block) []ast.Block
	InlineSlice func([]ast.Inline) []ast.Inline
}

func (t Transformer) Doc(doc *ast.Doc) *ast.Doc {
	doc.Blocks = t.Blocks(doc.Blocks)
	for i := range doc.Notes {
		doc.Notes[i].Blocks = t.Blocks(doc.Notes[i].Blocks)
	}
	return doc
}

func (t Transformer) Blocks(bls []ast.Block) []ast.Block {
	out := make([]ast.Block, 0, len(bls))
	for _, bl := range bls {
		switch x := bl.(type) {
		case *ast.Plain:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Para:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Header:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.BlockQuote:
			x.Blocks = t.Blocks(x.Blocks)
		case *ast.Div:
			x.Blocks = t.Blocks(x.Blocks)
		case *ast.OrderedList:
			for i := range x.Items {
				x.Items[i] = t.Blocks(x.Items[i])
			}
		case *ast.BulletList:
			for i := range x.Items {
				x.Items[i] = t.Blocks(x.Items[i])
			}
		case *ast.Table:
			for i := range x.Header.Cells {
				x.Header.Cells[i].Blocks = t.Blocks(x.Header.Cells[i].Blocks)
			}
			for r := range x.Rows {
				for c := range x.Rows[r].Cells {
					x.Rows[r].Cells[c].Blocks = t.Blocks(x.Rows[r].Cells[c].Blocks)
				}
			}
		}
		if t.Block != nil {
			if repl := t.Block(bl); repl != nil {
				out = append(out, repl...)
				continue
			}
		}
		out = append(out, bl)
	}
	return out
}

func (t Transformer) Inlines(ins []ast.Inline) []ast.Inline {
	out := make([]ast.Inline, 0, len(ins))
	for _, in := range ins {
		switch x := in.(type) {
		case *ast.Emph:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Strong:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Strikeout:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Superscript:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Subscript:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Quoted:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Link:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Image:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Span:
			x.Inlines = t.Inlines(x.Inlines)
		case *ast.Cite:
			x.Inlines = t.Inlines(x.Inlines)
			for i := range x.Citations {
				x.Citations[i].Prefix = t.Inlines(x.Citations[i].Prefix)
				x.Citations[i].Suffix = t.Inlines(x.Citations[i].Suffix)
			}
		case *ast.Note:
			x.Blocks = t.Blocks(x.Blocks)
		}
		if t.Inline != nil {
			if repl := t.Inline(in); repl != nil {
				out = append(out, repl...)
				continue
			}
		}
		out = append(out, in)
	}
	if t.InlineSlice != nil {
		out = t.InlineSlice(out)
	}
	return out
}
