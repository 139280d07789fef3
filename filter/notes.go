package filter

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
)

// NotePolicy selects where resolved note definitions are re-inserted.
type NotePolicy int

const (
	// NotesAtEnd appends every definition div at the end of the
	// document, in definition order.
	NotesAtEnd NotePolicy = iota
	// NotesAtFirstReference inserts each definition div after the
	// top-level block holding its first reference.  Definitions
	// nothing refers to still go to the end.
	NotesAtFirstReference
)

// ResolveNotes rewrites note references into cross-referencing spans
// and re-inserts the collected definitions as divs placed according
// to Policy.  Span and div are correlated by the note label: the span
// carries it as reference-id, the div as its identifier.  A reference
// with no definition stays behind as literal text.  Consumed
// definitions are cleared from the document.
type ResolveNotes struct {
	Policy NotePolicy
}

func (ResolveNotes) Name() string { return "resolve-notes" }

func (rn ResolveNotes) Apply(doc *ast.Doc) *ast.Doc {
	defined := make(map[string]bool, len(doc.Notes))
	for _, d := range doc.Notes {
		defined[d.Label] = true
	}
	literal := func(ref *ast.NoteRef) []ast.Inline {
		return []ast.Inline{&ast.Str{Text: "[^" + ref.Label + "]"}}
	}
	// Notes cannot nest: a reference inside a definition body stays
	// literal.  This also rules out reference cycles between
	// definitions.
	flatten := Transformer{Inline: func(in ast.Inline) []ast.Inline {
		if ref, ok := in.(*ast.NoteRef); ok {
			return literal(ref)
		}
		return nil
	}}
	for i := range doc.Notes {
		doc.Notes[i].Blocks = flatten.Blocks(doc.Notes[i].Blocks)
	}
	firstRef := firstReferences(doc.Blocks)
	resolve := Transformer{Inline: func(in ast.Inline) []ast.Inline {
		ref, ok := in.(*ast.NoteRef)
		if !ok {
			return nil
		}
		if !defined[ref.Label] {
			return literal(ref)
		}
		return []ast.Inline{&ast.Span{
			Attr: ast.Attr{
				Classes: []string{"quarto-note-reference"},
				KVs:     []ast.KV{{Key: "reference-id", Value: ref.Label}},
			},
		}}
	}}
	doc.Blocks = resolve.Blocks(doc.Blocks)
	doc.Blocks = rn.insertDefs(doc, firstRef)
	doc.Notes = nil
	return doc
}

// firstReferences maps each referenced label to the index of the
// top-level block holding its first reference.
func firstReferences(bls []ast.Block) map[string]int {
	at := map[string]int{}
	for i, bl := range bls {
		idx := i
		scan := Transformer{Inline: func(in ast.Inline) []ast.Inline {
			if ref, ok := in.(*ast.NoteRef); ok {
				if _, seen := at[ref.Label]; !seen {
					at[ref.Label] = idx
				}
			}
			return nil
		}}
		scan.Blocks([]ast.Block{bl})
	}
	return at
}

func (rn ResolveNotes) insertDefs(doc *ast.Doc, firstRef map[string]int) []ast.Block {
	after := map[int][]ast.Block{}
	tail := make([]ast.Block, 0, len(doc.Notes))
	for _, d := range doc.Notes {
		div := noteDiv(d)
		if rn.Policy == NotesAtFirstReference {
			if i, ok := firstRef[d.Label]; ok {
				after[i] = append(after[i], div)
				continue
			}
		}
		tail = append(tail, div)
	}
	out := make([]ast.Block, 0, len(doc.Blocks)+len(doc.Notes))
	for i, bl := range doc.Blocks {
		out = append(out, bl)
		out = append(out, after[i]...)
	}
	return append(out, tail...)
}

func noteDiv(d ast.NoteDef) ast.Block {
	return &ast.Div{
		Attr: ast.Attr{
			Id:      d.Label,
			Classes: []string{"quarto-note-definition"},
		},
		Blocks: d.Blocks,
	}
}
