package encode

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/signadot/qmd-format/go-qmd/ast"
)

// encodeNative writes the document in native format: the metadata map
// first, then the block list with one top-level block per line.
func encodeNative(doc *ast.Doc, w io.Writer, es *EncState) error {
	nw := &nativeWriter{w: w, es: es}
	ind := strings.Repeat(" ", es.indent)
	nw.ws(nw.ctor("Pandoc"))
	nw.ws("\n" + ind)
	nw.meta(doc.Meta)
	nw.ws("\n")
	if len(doc.Blocks) == 0 {
		nw.ws(ind + "[]\n")
		return nw.err
	}
	for i, b := range doc.Blocks {
		if i == 0 {
			nw.ws(ind + "[ ")
		} else {
			nw.ws(ind + ", ")
		}
		nw.block(b)
		nw.ws("\n")
	}
	nw.ws(ind + "]\n")
	return nw.err
}

type nativeWriter struct {
	w   io.Writer
	es  *EncState
	err error
}

func (nw *nativeWriter) ws(s string) {
	if nw.err != nil {
		return
	}
	_, nw.err = io.WriteString(nw.w, s)
}

func (nw *nativeWriter) ctor(name string) string {
	return nw.es.color(CtorColor, name)
}

func (nw *nativeWriter) str(s string) string {
	return nw.es.color(StringColor, strconv.Quote(s))
}

func (nw *nativeWriter) num(n int) string {
	return nw.es.color(NumberColor, strconv.Itoa(n))
}

// Metadata.

func (nw *nativeWriter) meta(m ast.Meta) {
	nw.ws(nw.ctor("Meta"))
	nw.ws(" { unMeta = ")
	nw.metaMap([]ast.MetaEntry(m))
	nw.ws(" }")
}

func (nw *nativeWriter) metaMap(entries []ast.MetaEntry) {
	sorted := append([]ast.MetaEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	nw.ws("fromList")
	if len(sorted) == 0 {
		nw.ws(" []")
		return
	}
	for i, e := range sorted {
		if i == 0 {
			nw.ws(" [ ")
		} else {
			nw.ws(" , ")
		}
		nw.ws("( " + nw.str(e.Key) + " , ")
		nw.metaValue(e.Value)
		nw.ws(" )")
	}
	nw.ws(" ]")
}

func (nw *nativeWriter) metaValue(v ast.MetaValue) {
	switch x := v.(type) {
	case ast.MetaMap:
		nw.ws(nw.ctor("MetaMap") + " (")
		nw.metaMap([]ast.MetaEntry(x))
		nw.ws(")")
	case ast.MetaList:
		nw.ws(nw.ctor("MetaList"))
		if len(x) == 0 {
			nw.ws(" []")
			return
		}
		for i, e := range x {
			if i == 0 {
				nw.ws(" [ ")
			} else {
				nw.ws(" , ")
			}
			nw.metaValue(e)
		}
		nw.ws(" ]")
	case ast.MetaBool:
		if x {
			nw.ws(nw.ctor("MetaBool") + " True")
		} else {
			nw.ws(nw.ctor("MetaBool") + " False")
		}
	case ast.MetaString:
		nw.ws(nw.ctor("MetaString") + " " + nw.str(string(x)))
	default:
		nw.err = fmt.Errorf("encode: unknown meta value %T", v)
	}
}

// Attributes.

func (nw *nativeWriter) attr(a ast.Attr) {
	nw.ws("( " + nw.str(a.Id) + " , ")
	if len(a.Classes) == 0 {
		nw.ws("[]")
	} else {
		for i, c := range a.Classes {
			if i == 0 {
				nw.ws("[ ")
			} else {
				nw.ws(" , ")
			}
			nw.ws(nw.str(c))
		}
		nw.ws(" ]")
	}
	nw.ws(" , ")
	if len(a.KVs) == 0 {
		nw.ws("[]")
	} else {
		for i, kv := range a.KVs {
			if i == 0 {
				nw.ws("[ ")
			} else {
				nw.ws(" , ")
			}
			nw.ws("( " + nw.str(kv.Key) + " , " + nw.str(kv.Value) + " )")
		}
		nw.ws(" ]")
	}
	nw.ws(" )")
}

// Blocks.

func (nw *nativeWriter) blocks(bls []ast.Block) {
	if len(bls) == 0 {
		nw.ws("[]")
		return
	}
	for i, b := range bls {
		if i == 0 {
			nw.ws("[ ")
		} else {
			nw.ws(" , ")
		}
		nw.block(b)
	}
	nw.ws(" ]")
}

func (nw *nativeWriter) blockItems(items [][]ast.Block) {
	if len(items) == 0 {
		nw.ws("[]")
		return
	}
	for i, it := range items {
		if i == 0 {
			nw.ws("[ ")
		} else {
			nw.ws(" , ")
		}
		nw.blocks(it)
	}
	nw.ws(" ]")
}

func (nw *nativeWriter) block(b ast.Block) {
	switch x := b.(type) {
	case *ast.Plain:
		nw.ws(nw.ctor("Plain") + " ")
		nw.inlines(x.Inlines)
	case *ast.Para:
		nw.ws(nw.ctor("Para") + " ")
		nw.inlines(x.Inlines)
	case *ast.CodeBlock:
		nw.ws(nw.ctor("CodeBlock") + " ")
		nw.attr(x.Attr)
		nw.ws(" " + nw.str(x.Text))
	case *ast.RawBlock:
		nw.ws(nw.ctor("RawBlock") + " (" + nw.ctor("Format") + " " + nw.str(x.Format) + ") " + nw.str(x.Text))
	case *ast.BlockQuote:
		nw.ws(nw.ctor("BlockQuote") + " ")
		nw.blocks(x.Blocks)
	case *ast.OrderedList:
		delim := "Period"
		if x.Delim == ')' {
			delim = "OneParen"
		}
		nw.ws(nw.ctor("OrderedList") + " ( " + nw.num(x.Start) + " , " + nw.ctor("Decimal") + " , " + nw.ctor(delim) + " ) ")
		nw.blockItems(x.Items)
	case *ast.BulletList:
		nw.ws(nw.ctor("BulletList") + " ")
		nw.blockItems(x.Items)
	case *ast.Header:
		nw.ws(nw.ctor("Header") + " " + nw.num(x.Level) + " ")
		nw.attr(x.Attr)
		nw.ws(" ")
		nw.inlines(x.Inlines)
	case *ast.HorizontalRule:
		nw.ws(nw.ctor("HorizontalRule"))
	case *ast.Div:
		nw.ws(nw.ctor("Div") + " ")
		nw.attr(x.Attr)
		nw.ws(" ")
		nw.blocks(x.Blocks)
	case *ast.Table:
		nw.table(x)
	default:
		nw.err = fmt.Errorf("encode: unknown block %T", b)
	}
}

func (nw *nativeWriter) table(t *ast.Table) {
	nw.ws(nw.ctor("Table") + " ")
	nw.attr(t.Attr)
	nw.ws(" ")
	if len(t.Aligns) == 0 {
		nw.ws("[]")
	} else {
		for i, a := range t.Aligns {
			if i == 0 {
				nw.ws("[ ")
			} else {
				nw.ws(" , ")
			}
			nw.ws(nw.ctor(a.String()))
		}
		nw.ws(" ]")
	}
	nw.ws(" ")
	nw.tableRow(t.Header)
	nw.ws(" ")
	if len(t.Rows) == 0 {
		nw.ws("[]")
		return
	}
	for i, r := range t.Rows {
		if i == 0 {
			nw.ws("[ ")
		} else {
			nw.ws(" , ")
		}
		nw.tableRow(r)
	}
	nw.ws(" ]")
}

func (nw *nativeWriter) tableRow(r ast.TableRow) {
	if len(r.Cells) == 0 {
		nw.ws("[]")
		return
	}
	for i, c := range r.Cells {
		if i == 0 {
			nw.ws("[ ")
		} else {
			nw.ws(" , ")
		}
		nw.blocks(c.Blocks)
	}
	nw.ws(" ]")
}

// Inlines.

func (nw *nativeWriter) inlines(ins []ast.Inline) {
	if len(ins) == 0 {
		nw.ws("[]")
		return
	}
	for i, in := range ins {
		if i == 0 {
			nw.ws("[ ")
		} else {
			nw.ws(" , ")
		}
		nw.inline(in)
	}
	nw.ws(" ]")
}

func (nw *nativeWriter) inline(in ast.Inline) {
	switch x := in.(type) {
	case *ast.Str:
		nw.ws(nw.ctor("Str") + " " + nw.str(x.Text))
	case *ast.Space:
		nw.ws(nw.ctor("Space"))
	case *ast.SoftBreak:
		nw.ws(nw.ctor("SoftBreak"))
	case *ast.LineBreak:
		nw.ws(nw.ctor("LineBreak"))
	case *ast.Emph:
		nw.ws(nw.ctor("Emph") + " ")
		nw.inlines(x.Inlines)
	case *ast.Strong:
		nw.ws(nw.ctor("Strong") + " ")
		nw.inlines(x.Inlines)
	case *ast.Strikeout:
		nw.ws(nw.ctor("Strikeout") + " ")
		nw.inlines(x.Inlines)
	case *ast.Superscript:
		nw.ws(nw.ctor("Superscript") + " ")
		nw.inlines(x.Inlines)
	case *ast.Subscript:
		nw.ws(nw.ctor("Subscript") + " ")
		nw.inlines(x.Inlines)
	case *ast.Quoted:
		q := "SingleQuote"
		if x.Type == ast.DoubleQuote {
			q = "DoubleQuote"
		}
		nw.ws(nw.ctor("Quoted") + " " + nw.ctor(q) + " ")
		nw.inlines(x.Inlines)
	case *ast.Code:
		nw.ws(nw.ctor("Code") + " ")
		nw.attr(x.Attr)
		nw.ws(" " + nw.str(x.Text))
	case *ast.Math:
		m := "InlineMath"
		if x.Type == ast.DisplayMath {
			m = "DisplayMath"
		}
		nw.ws(nw.ctor("Math") + " " + nw.ctor(m) + " " + nw.str(x.Text))
	case *ast.RawInline:
		nw.ws(nw.ctor("RawInline") + " (" + nw.ctor("Format") + " " + nw.str(x.Format) + ") " + nw.str(x.Text))
	case *ast.Link:
		nw.ws(nw.ctor("Link") + " ")
		nw.attr(x.Attr)
		nw.ws(" ")
		nw.inlines(x.Inlines)
		nw.ws(" ( " + nw.str(x.Target.URL) + " , " + nw.str(x.Target.Title) + " )")
	case *ast.Image:
		nw.ws(nw.ctor("Image") + " ")
		nw.attr(x.Attr)
		nw.ws(" ")
		nw.inlines(x.Inlines)
		nw.ws(" ( " + nw.str(x.Target.URL) + " , " + nw.str(x.Target.Title) + " )")
	case *ast.Span:
		nw.ws(nw.ctor("Span") + " ")
		nw.attr(x.Attr)
		nw.ws(" ")
		nw.inlines(x.Inlines)
	case *ast.Note:
		nw.ws(nw.ctor("Note") + " ")
		nw.blocks(x.Blocks)
	case *ast.NoteRef:
		// Should have been resolved; keep the reference visible.
		nw.ws(nw.ctor("Span") + " ")
		nw.attr(ast.Attr{
			Classes: []string{"quarto-note-reference"},
			KVs:     []ast.KV{{Key: "reference-id", Value: x.Label}},
		})
		nw.ws(" []")
	case *ast.Cite:
		nw.cite(x)
	case *ast.Shortcode:
		// Unlowered shortcodes surface as raw source.
		nw.ws(nw.ctor("RawInline") + " (" + nw.ctor("Format") + " " + nw.str("quarto-shortcode") + ") " + nw.str(x.Raw))
	default:
		nw.err = fmt.Errorf("encode: unknown inline %T", in)
	}
}

func (nw *nativeWriter) cite(c *ast.Cite) {
	nw.ws(nw.ctor("Cite") + " ")
	if len(c.Citations) == 0 {
		nw.ws("[]")
	} else {
		for i, ct := range c.Citations {
			if i == 0 {
				nw.ws("[ ")
			} else {
				nw.ws(" , ")
			}
			nw.citation(ct)
		}
		nw.ws(" ]")
	}
	nw.ws(" ")
	nw.inlines(c.Inlines)
}

func (nw *nativeWriter) citation(c ast.Citation) {
	nw.ws(nw.ctor("Citation") + " { citationId = " + nw.str(c.Id))
	nw.ws(" , citationPrefix = ")
	nw.inlines(c.Prefix)
	nw.ws(" , citationSuffix = ")
	nw.inlines(c.Suffix)
	nw.ws(" , citationMode = " + nw.ctor(c.Mode.String()))
	nw.ws(" , citationNoteNum = " + nw.num(c.NoteNum))
	nw.ws(" , citationHash = " + nw.num(c.Hash))
	nw.ws(" }")
}
