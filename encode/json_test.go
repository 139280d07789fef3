package encode

import (
	"testing"

	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/format"
)

func renderJSON(t *testing.T, doc *ast.Doc) string {
	t.Helper()
	return render(t, doc, EncodeFormat(format.JSONFormat))
}

func wrapJSONBlock(block string) string {
	return `{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[` + block + "]}\n"
}

func wrapJSONInline(inline string) string {
	return wrapJSONBlock(`{"t":"Para","c":[` + inline + `]}`)
}

func TestJSONEmpty(t *testing.T) {
	got := renderJSON(t, &ast.Doc{})
	want := `{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[]}` + "\n"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJSONMeta(t *testing.T) {
	doc := &ast.Doc{Meta: ast.Meta{
		{Key: "title", Value: ast.MetaString("T")},
		{Key: "draft", Value: ast.MetaBool(true)},
		{Key: "author", Value: ast.MetaList{ast.MetaString("doe")}},
	}}
	// encoding/json writes map keys in sorted order.
	want := `{"pandoc-api-version":[1,23,1],"meta":{` +
		`"author":{"t":"MetaList","c":[{"t":"MetaString","c":"doe"}]},` +
		`"draft":{"t":"MetaBool","c":true},` +
		`"title":{"t":"MetaString","c":"T"}` +
		`},"blocks":[]}` + "\n"
	if got := renderJSON(t, doc); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestJSONBlocks(t *testing.T) {
	plain := func(s string) []ast.Block {
		return []ast.Block{&ast.Plain{Inlines: []ast.Inline{&ast.Str{Text: s}}}}
	}
	tcs := []struct {
		name  string
		block ast.Block
		want  string
	}{
		{
			"para",
			&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "hi"}}},
			`{"t":"Para","c":[{"t":"Str","c":"hi"}]}`,
		},
		{
			"header",
			&ast.Header{
				Level:   2,
				Attr:    ast.Attr{Id: "sec", Classes: []string{"intro"}},
				Inlines: []ast.Inline{&ast.Str{Text: "Hi"}},
			},
			`{"t":"Header","c":[2,["sec",["intro"],[]],[{"t":"Str","c":"Hi"}]]}`,
		},
		{
			"code block",
			&ast.CodeBlock{Attr: ast.Attr{Classes: []string{"go"}}, Text: "x := 1"},
			`{"t":"CodeBlock","c":[["",["go"],[]],"x := 1"]}`,
		},
		{
			"raw block unescaped",
			&ast.RawBlock{Format: "html", Text: "<hr>"},
			`{"t":"RawBlock","c":["html","<hr>"]}`,
		},
		{
			"block quote",
			&ast.BlockQuote{Blocks: plain("q")},
			`{"t":"BlockQuote","c":[{"t":"Plain","c":[{"t":"Str","c":"q"}]}]}`,
		},
		{
			"ordered list",
			&ast.OrderedList{Start: 3, Delim: ')', Items: [][]ast.Block{plain("a")}},
			`{"t":"OrderedList","c":[[3,{"t":"Decimal"},{"t":"OneParen"}],[[{"t":"Plain","c":[{"t":"Str","c":"a"}]}]]]}`,
		},
		{
			"bullet list",
			&ast.BulletList{Items: [][]ast.Block{plain("a"), plain("b")}},
			`{"t":"BulletList","c":[[{"t":"Plain","c":[{"t":"Str","c":"a"}]}],[{"t":"Plain","c":[{"t":"Str","c":"b"}]}]]}`,
		},
		{
			"rule",
			&ast.HorizontalRule{},
			`{"t":"HorizontalRule"}`,
		},
		{
			"div",
			&ast.Div{Attr: ast.Attr{Classes: []string{"note"}}, Blocks: plain("x")},
			`{"t":"Div","c":[["",["note"],[]],[{"t":"Plain","c":[{"t":"Str","c":"x"}]}]]}`,
		},
		{
			"table",
			&ast.Table{
				Aligns: []ast.Alignment{ast.AlignLeft},
				Header: ast.TableRow{Cells: []ast.TableCell{{Blocks: plain("h")}}},
				Rows: []ast.TableRow{
					{Cells: []ast.TableCell{{Blocks: plain("1")}}},
				},
			},
			`{"t":"Table","c":[["",[],[]],[{"t":"AlignLeft"}],[[{"t":"Plain","c":[{"t":"Str","c":"h"}]}]],[[[{"t":"Plain","c":[{"t":"Str","c":"1"}]}]]]]}`,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			doc := &ast.Doc{Blocks: []ast.Block{tc.block}}
			got := renderJSON(t, doc)
			want := wrapJSONBlock(tc.want)
			if got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestJSONInlines(t *testing.T) {
	tcs := []struct {
		name   string
		inline ast.Inline
		want   string
	}{
		{"space", &ast.Space{}, `{"t":"Space"}`},
		{"soft break", &ast.SoftBreak{}, `{"t":"SoftBreak"}`},
		{"line break", &ast.LineBreak{}, `{"t":"LineBreak"}`},
		{
			"emph",
			&ast.Emph{Inlines: []ast.Inline{&ast.Str{Text: "x"}}},
			`{"t":"Emph","c":[{"t":"Str","c":"x"}]}`,
		},
		{
			"quoted",
			&ast.Quoted{Type: ast.DoubleQuote, Inlines: []ast.Inline{&ast.Str{Text: "q"}}},
			`{"t":"Quoted","c":[{"t":"DoubleQuote"},[{"t":"Str","c":"q"}]]}`,
		},
		{
			"code",
			&ast.Code{Text: "go vet"},
			`{"t":"Code","c":[["",[],[]],"go vet"]}`,
		},
		{
			"math",
			&ast.Math{Type: ast.InlineMath, Text: "x+y"},
			`{"t":"Math","c":[{"t":"InlineMath"},"x+y"]}`,
		},
		{
			"link",
			&ast.Link{
				Inlines: []ast.Inline{&ast.Str{Text: "t"}},
				Target:  ast.Target{URL: "https://e.com", Title: "T"},
			},
			`{"t":"Link","c":[["",[],[]],[{"t":"Str","c":"t"}],["https://e.com","T"]]}`,
		},
		{
			"span",
			&ast.Span{
				Attr:    ast.Attr{Classes: []string{"cls"}},
				Inlines: []ast.Inline{&ast.Str{Text: "w"}},
			},
			`{"t":"Span","c":[["",["cls"],[]],[{"t":"Str","c":"w"}]]}`,
		},
		{
			"note",
			&ast.Note{Blocks: []ast.Block{
				&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "n"}}},
			}},
			`{"t":"Note","c":[{"t":"Para","c":[{"t":"Str","c":"n"}]}]}`,
		},
		{
			"unresolved note ref",
			&ast.NoteRef{Label: "fn1"},
			`{"t":"Span","c":[["",["quarto-note-reference"],[["reference-id","fn1"]]],[]]}`,
		},
		{
			"citation",
			&ast.Cite{
				Citations: []ast.Citation{{Id: "doe99", Mode: ast.AuthorInText}},
				Inlines:   []ast.Inline{&ast.Str{Text: "@doe99"}},
			},
			`{"t":"Cite","c":[[{"citationId":"doe99","citationPrefix":[],"citationSuffix":[],"citationMode":{"t":"AuthorInText"},"citationNoteNum":0,"citationHash":0}],[{"t":"Str","c":"@doe99"}]]}`,
		},
		{
			"unlowered shortcode",
			&ast.Shortcode{Raw: "{{< video x >}}"},
			`{"t":"RawInline","c":["quarto-shortcode","{{< video x >}}"]}`,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			doc := &ast.Doc{Blocks: []ast.Block{
				&ast.Para{Inlines: []ast.Inline{tc.inline}},
			}}
			got := renderJSON(t, doc)
			want := wrapJSONInline(tc.want)
			if got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}
