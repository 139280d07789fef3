package encode

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signadot/qmd-format/go-qmd/ast"
)

// apiVersion is the interchange schema version stamped into JSON
// output.
var apiVersion = []int{1, 23, 1}

// tagged is the JSON union shape: {"t": ..., "c": ...}, with c omitted
// for nullary constructors.
type tagged struct {
	T string `json:"t"`
	C any    `json:"c,omitempty"`
}

func encodeJSON(doc *ast.Doc, w io.Writer) error {
	top := struct {
		APIVersion []int          `json:"pandoc-api-version"`
		Meta       map[string]any `json:"meta"`
		Blocks     []any          `json:"blocks"`
	}{
		APIVersion: apiVersion,
		Meta:       jsonMeta(doc.Meta),
		Blocks:     jsonBlocks(doc.Blocks),
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(top)
}

func jsonMeta(m ast.Meta) map[string]any {
	out := map[string]any{}
	for _, e := range m {
		out[e.Key] = jsonMetaValue(e.Value)
	}
	return out
}

func jsonMetaValue(v ast.MetaValue) any {
	switch x := v.(type) {
	case ast.MetaMap:
		return tagged{T: "MetaMap", C: jsonMeta(ast.Meta(x))}
	case ast.MetaList:
		items := make([]any, 0, len(x))
		for _, e := range x {
			items = append(items, jsonMetaValue(e))
		}
		return tagged{T: "MetaList", C: items}
	case ast.MetaBool:
		return tagged{T: "MetaBool", C: bool(x)}
	case ast.MetaString:
		return tagged{T: "MetaString", C: string(x)}
	}
	return tagged{T: "MetaString", C: fmt.Sprintf("%v", v)}
}

func jsonAttr(a ast.Attr) []any {
	classes := make([]any, 0, len(a.Classes))
	for _, c := range a.Classes {
		classes = append(classes, c)
	}
	kvs := make([]any, 0, len(a.KVs))
	for _, kv := range a.KVs {
		kvs = append(kvs, []any{kv.Key, kv.Value})
	}
	return []any{a.Id, classes, kvs}
}

func jsonBlocks(bls []ast.Block) []any {
	out := make([]any, 0, len(bls))
	for _, b := range bls {
		out = append(out, jsonBlock(b))
	}
	return out
}

func jsonItems(items [][]ast.Block) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, jsonBlocks(it))
	}
	return out
}

func jsonBlock(b ast.Block) any {
	switch x := b.(type) {
	case *ast.Plain:
		return tagged{T: "Plain", C: jsonInlines(x.Inlines)}
	case *ast.Para:
		return tagged{T: "Para", C: jsonInlines(x.Inlines)}
	case *ast.CodeBlock:
		return tagged{T: "CodeBlock", C: []any{jsonAttr(x.Attr), x.Text}}
	case *ast.RawBlock:
		return tagged{T: "RawBlock", C: []any{x.Format, x.Text}}
	case *ast.BlockQuote:
		return tagged{T: "BlockQuote", C: jsonBlocks(x.Blocks)}
	case *ast.OrderedList:
		delim := tagged{T: "Period"}
		if x.Delim == ')' {
			delim = tagged{T: "OneParen"}
		}
		listAttrs := []any{x.Start, tagged{T: "Decimal"}, delim}
		return tagged{T: "OrderedList", C: []any{listAttrs, jsonItems(x.Items)}}
	case *ast.BulletList:
		return tagged{T: "BulletList", C: jsonItems(x.Items)}
	case *ast.Header:
		return tagged{T: "Header", C: []any{x.Level, jsonAttr(x.Attr), jsonInlines(x.Inlines)}}
	case *ast.HorizontalRule:
		return tagged{T: "HorizontalRule"}
	case *ast.Div:
		return tagged{T: "Div", C: []any{jsonAttr(x.Attr), jsonBlocks(x.Blocks)}}
	case *ast.Table:
		aligns := make([]any, 0, len(x.Aligns))
		for _, a := range x.Aligns {
			aligns = append(aligns, tagged{T: a.String()})
		}
		return tagged{T: "Table", C: []any{
			jsonAttr(x.Attr), aligns, jsonRow(x.Header), jsonRows(x.Rows),
		}}
	}
	return tagged{T: "Null"}
}

func jsonRow(r ast.TableRow) []any {
	out := make([]any, 0, len(r.Cells))
	for _, c := range r.Cells {
		out = append(out, jsonBlocks(c.Blocks))
	}
	return out
}

func jsonRows(rows []ast.TableRow) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, jsonRow(r))
	}
	return out
}

func jsonInlines(ins []ast.Inline) []any {
	out := make([]any, 0, len(ins))
	for _, in := range ins {
		out = append(out, jsonInline(in))
	}
	return out
}

func jsonInline(in ast.Inline) any {
	switch x := in.(type) {
	case *ast.Str:
		return tagged{T: "Str", C: x.Text}
	case *ast.Space:
		return tagged{T: "Space"}
	case *ast.SoftBreak:
		return tagged{T: "SoftBreak"}
	case *ast.LineBreak:
		return tagged{T: "LineBreak"}
	case *ast.Emph:
		return tagged{T: "Emph", C: jsonInlines(x.Inlines)}
	case *ast.Strong:
		return tagged{T: "Strong", C: jsonInlines(x.Inlines)}
	case *ast.Strikeout:
		return tagged{T: "Strikeout", C: jsonInlines(x.Inlines)}
	case *ast.Superscript:
		return tagged{T: "Superscript", C: jsonInlines(x.Inlines)}
	case *ast.Subscript:
		return tagged{T: "Subscript", C: jsonInlines(x.Inlines)}
	case *ast.Quoted:
		q := tagged{T: "SingleQuote"}
		if x.Type == ast.DoubleQuote {
			q = tagged{T: "DoubleQuote"}
		}
		return tagged{T: "Quoted", C: []any{q, jsonInlines(x.Inlines)}}
	case *ast.Code:
		return tagged{T: "Code", C: []any{jsonAttr(x.Attr), x.Text}}
	case *ast.Math:
		m := tagged{T: "InlineMath"}
		if x.Type == ast.DisplayMath {
			m = tagged{T: "DisplayMath"}
		}
		return tagged{T: "Math", C: []any{m, x.Text}}
	case *ast.RawInline:
		return tagged{T: "RawInline", C: []any{x.Format, x.Text}}
	case *ast.Link:
		return tagged{T: "Link", C: []any{jsonAttr(x.Attr), jsonInlines(x.Inlines), []any{x.Target.URL, x.Target.Title}}}
	case *ast.Image:
		return tagged{T: "Image", C: []any{jsonAttr(x.Attr), jsonInlines(x.Inlines), []any{x.Target.URL, x.Target.Title}}}
	case *ast.Span:
		return tagged{T: "Span", C: []any{jsonAttr(x.Attr), jsonInlines(x.Inlines)}}
	case *ast.Note:
		return tagged{T: "Note", C: jsonBlocks(x.Blocks)}
	case *ast.NoteRef:
		attr := ast.Attr{
			Classes: []string{"quarto-note-reference"},
			KVs:     []ast.KV{{Key: "reference-id", Value: x.Label}},
		}
		return tagged{T: "Span", C: []any{jsonAttr(attr), []any{}}}
	case *ast.Cite:
		cites := make([]any, 0, len(x.Citations))
		for _, c := range x.Citations {
			cites = append(cites, jsonCitation(c))
		}
		return tagged{T: "Cite", C: []any{cites, jsonInlines(x.Inlines)}}
	case *ast.Shortcode:
		return tagged{T: "RawInline", C: []any{"quarto-shortcode", x.Raw}}
	}
	return tagged{T: "Str", C: ""}
}

func jsonCitation(c ast.Citation) any {
	return struct {
		Id      string `json:"citationId"`
		Prefix  []any  `json:"citationPrefix"`
		Suffix  []any  `json:"citationSuffix"`
		Mode    tagged `json:"citationMode"`
		NoteNum int    `json:"citationNoteNum"`
		Hash    int    `json:"citationHash"`
	}{
		Id:      c.Id,
		Prefix:  jsonInlines(c.Prefix),
		Suffix:  jsonInlines(c.Suffix),
		Mode:    tagged{T: c.Mode.String()},
		NoteNum: c.NoteNum,
		Hash:    c.Hash,
	}
}
