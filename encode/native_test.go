package encode

import (
	"bytes"
	"testing"

	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/textdiff"
)

func render(t *testing.T, doc *ast.Doc, opts ...EncodeOption) string {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if err := Encode(doc, buf, opts...); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.String()
}

func checkOutput(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("output mismatch:\n%s", textdiff.Lines(want, got))
	}
}

const emptyHeader = "Pandoc\n  Meta { unMeta = fromList [] }\n"

func wrapBlock(block string) string {
	return emptyHeader + "  [ " + block + "\n  ]\n"
}

func wrapInline(inline string) string {
	return wrapBlock("Para [ " + inline + " ]")
}

func TestNativeEmpty(t *testing.T) {
	got := render(t, &ast.Doc{})
	checkOutput(t, got, emptyHeader+"  []\n")
}

func TestNativePara(t *testing.T) {
	doc := &ast.Doc{Blocks: []ast.Block{
		&ast.Para{Inlines: []ast.Inline{
			&ast.Str{Text: "hello"}, &ast.Space{}, &ast.Str{Text: "world"},
		}},
	}}
	checkOutput(t, render(t, doc),
		wrapBlock(`Para [ Str "hello" , Space , Str "world" ]`))
}

func TestNativeMultipleBlocks(t *testing.T) {
	doc := &ast.Doc{Blocks: []ast.Block{
		&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "a"}}},
		&ast.HorizontalRule{},
		&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "b"}}},
	}}
	want := emptyHeader +
		"  [ Para [ Str \"a\" ]\n" +
		"  , HorizontalRule\n" +
		"  , Para [ Str \"b\" ]\n" +
		"  ]\n"
	checkOutput(t, render(t, doc), want)
}

func TestNativeMetaSorted(t *testing.T) {
	doc := &ast.Doc{Meta: ast.Meta{
		{Key: "title", Value: ast.MetaString("T")},
		{Key: "author", Value: ast.MetaList{ast.MetaString("a"), ast.MetaString("b")}},
		{Key: "draft", Value: ast.MetaBool(true)},
	}}
	want := "Pandoc\n" +
		`  Meta { unMeta = fromList [ ( "author" , MetaList [ MetaString "a" , MetaString "b" ] ) , ( "draft" , MetaBool True ) , ( "title" , MetaString "T" ) ] }` +
		"\n  []\n"
	checkOutput(t, render(t, doc), want)
}

func TestNativeMetaMap(t *testing.T) {
	doc := &ast.Doc{Meta: ast.Meta{
		{Key: "fig", Value: ast.MetaMap{
			{Key: "width", Value: ast.MetaString("7")},
		}},
	}}
	want := "Pandoc\n" +
		`  Meta { unMeta = fromList [ ( "fig" , MetaMap (fromList [ ( "width" , MetaString "7" ) ]) ) ] }` +
		"\n  []\n"
	checkOutput(t, render(t, doc), want)
}

func TestNativeBlocks(t *testing.T) {
	plain := func(s string) []ast.Block {
		return []ast.Block{&ast.Plain{Inlines: []ast.Inline{&ast.Str{Text: s}}}}
	}
	tcs := []struct {
		name  string
		block ast.Block
		want  string
	}{
		{
			"header",
			&ast.Header{
				Level:   2,
				Attr:    ast.Attr{Id: "sec", Classes: []string{"intro"}},
				Inlines: []ast.Inline{&ast.Str{Text: "Hi"}},
			},
			`Header 2 ( "sec" , [ "intro" ] , [] ) [ Str "Hi" ]`,
		},
		{
			"code block",
			&ast.CodeBlock{Attr: ast.Attr{Classes: []string{"go"}}, Text: "x := 1"},
			`CodeBlock ( "" , [ "go" ] , [] ) "x := 1"`,
		},
		{
			"raw block",
			&ast.RawBlock{Format: "html", Text: "<hr>"},
			`RawBlock (Format "html") "<hr>"`,
		},
		{
			"block quote",
			&ast.BlockQuote{Blocks: []ast.Block{
				&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "q"}}},
			}},
			`BlockQuote [ Para [ Str "q" ] ]`,
		},
		{
			"ordered period",
			&ast.OrderedList{Start: 1, Delim: '.', Items: [][]ast.Block{plain("a")}},
			`OrderedList ( 1 , Decimal , Period ) [ [ Plain [ Str "a" ] ] ]`,
		},
		{
			"ordered paren",
			&ast.OrderedList{Start: 3, Delim: ')', Items: [][]ast.Block{plain("a"), plain("b")}},
			`OrderedList ( 3 , Decimal , OneParen ) [ [ Plain [ Str "a" ] ] , [ Plain [ Str "b" ] ] ]`,
		},
		{
			"bullet list",
			&ast.BulletList{Items: [][]ast.Block{plain("a"), plain("b")}},
			`BulletList [ [ Plain [ Str "a" ] ] , [ Plain [ Str "b" ] ] ]`,
		},
		{
			"div",
			&ast.Div{
				Attr:   ast.Attr{Classes: []string{"note"}},
				Blocks: []ast.Block{&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "x"}}}},
			},
			`Div ( "" , [ "note" ] , [] ) [ Para [ Str "x" ] ]`,
		},
		{
			"table",
			&ast.Table{
				Aligns: []ast.Alignment{ast.AlignLeft, ast.AlignRight},
				Header: ast.TableRow{Cells: []ast.TableCell{
					{Blocks: plain("a")}, {Blocks: plain("b")},
				}},
				Rows: []ast.TableRow{
					{Cells: []ast.TableCell{{Blocks: plain("1")}, {Blocks: plain("2")}}},
				},
			},
			`Table ( "" , [] , [] ) [ AlignLeft , AlignRight ] [ [ Plain [ Str "a" ] ] , [ Plain [ Str "b" ] ] ] [ [ [ Plain [ Str "1" ] ] , [ Plain [ Str "2" ] ] ] ]`,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			doc := &ast.Doc{Blocks: []ast.Block{tc.block}}
			checkOutput(t, render(t, doc), wrapBlock(tc.want))
		})
	}
}

func TestNativeInlines(t *testing.T) {
	tcs := []struct {
		name   string
		inline ast.Inline
		want   string
	}{
		{"emph", &ast.Emph{Inlines: []ast.Inline{&ast.Str{Text: "x"}}}, `Emph [ Str "x" ]`},
		{
			"strong nested",
			&ast.Strong{Inlines: []ast.Inline{
				&ast.Str{Text: "a"}, &ast.Space{},
				&ast.Emph{Inlines: []ast.Inline{&ast.Str{Text: "b"}}},
			}},
			`Strong [ Str "a" , Space , Emph [ Str "b" ] ]`,
		},
		{"strikeout", &ast.Strikeout{Inlines: []ast.Inline{&ast.Str{Text: "x"}}}, `Strikeout [ Str "x" ]`},
		{"superscript", &ast.Superscript{Inlines: []ast.Inline{&ast.Str{Text: "2"}}}, `Superscript [ Str "2" ]`},
		{"subscript", &ast.Subscript{Inlines: []ast.Inline{&ast.Str{Text: "i"}}}, `Subscript [ Str "i" ]`},
		{"soft break", &ast.SoftBreak{}, `SoftBreak`},
		{"line break", &ast.LineBreak{}, `LineBreak`},
		{
			"single quoted",
			&ast.Quoted{Type: ast.SingleQuote, Inlines: []ast.Inline{&ast.Str{Text: "q"}}},
			`Quoted SingleQuote [ Str "q" ]`,
		},
		{
			"double quoted",
			&ast.Quoted{Type: ast.DoubleQuote, Inlines: []ast.Inline{&ast.Str{Text: "q"}}},
			`Quoted DoubleQuote [ Str "q" ]`,
		},
		{
			"code",
			&ast.Code{Attr: ast.Attr{Id: "c"}, Text: "go vet"},
			`Code ( "c" , [] , [] ) "go vet"`,
		},
		{
			"inline math",
			&ast.Math{Type: ast.InlineMath, Text: "x+y"},
			`Math InlineMath "x+y"`,
		},
		{
			"display math",
			&ast.Math{Type: ast.DisplayMath, Text: "x^2"},
			`Math DisplayMath "x^2"`,
		},
		{
			"raw inline",
			&ast.RawInline{Format: "tex", Text: `\cmd`},
			`RawInline (Format "tex") "\\cmd"`,
		},
		{
			"link",
			&ast.Link{
				Inlines: []ast.Inline{&ast.Str{Text: "t"}},
				Target:  ast.Target{URL: "https://e.com", Title: "T"},
			},
			`Link ( "" , [] , [] ) [ Str "t" ] ( "https://e.com" , "T" )`,
		},
		{
			"image",
			&ast.Image{
				Inlines: []ast.Inline{&ast.Str{Text: "alt"}},
				Target:  ast.Target{URL: "pic.png"},
			},
			`Image ( "" , [] , [] ) [ Str "alt" ] ( "pic.png" , "" )`,
		},
		{
			"span",
			&ast.Span{
				Attr:    ast.Attr{Classes: []string{"cls"}},
				Inlines: []ast.Inline{&ast.Str{Text: "w"}},
			},
			`Span ( "" , [ "cls" ] , [] ) [ Str "w" ]`,
		},
		{
			"note",
			&ast.Note{Blocks: []ast.Block{
				&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "n"}}},
			}},
			`Note [ Para [ Str "n" ] ]`,
		},
		{
			"unresolved note ref",
			&ast.NoteRef{Label: "fn1"},
			`Span ( "" , [ "quarto-note-reference" ] , [ ( "reference-id" , "fn1" ) ] ) []`,
		},
		{
			"unlowered shortcode",
			&ast.Shortcode{Raw: "{{< video x >}}"},
			`RawInline (Format "quarto-shortcode") "{{< video x >}}"`,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			doc := &ast.Doc{Blocks: []ast.Block{
				&ast.Para{Inlines: []ast.Inline{tc.inline}},
			}}
			checkOutput(t, render(t, doc), wrapInline(tc.want))
		})
	}
}

func TestNativeCitation(t *testing.T) {
	doc := &ast.Doc{Blocks: []ast.Block{
		&ast.Para{Inlines: []ast.Inline{
			&ast.Cite{
				Citations: []ast.Citation{{
					Id:   "doe99",
					Mode: ast.AuthorInText,
				}},
				Inlines: []ast.Inline{&ast.Str{Text: "@doe99"}},
			},
		}},
	}}
	want := wrapInline(`Cite [ Citation { citationId = "doe99" , citationPrefix = [] , citationSuffix = [] , citationMode = AuthorInText , citationNoteNum = 0 , citationHash = 0 } ] [ Str "@doe99" ]`)
	checkOutput(t, render(t, doc), want)
}

func TestNativeCitationSuffix(t *testing.T) {
	doc := &ast.Doc{Blocks: []ast.Block{
		&ast.Para{Inlines: []ast.Inline{
			&ast.Cite{
				Citations: []ast.Citation{{
					Id: "doe99",
					Suffix: []ast.Inline{
						&ast.Str{Text: ","}, &ast.Space{},
						&ast.Str{Text: "p."}, &ast.Space{}, &ast.Str{Text: "4"},
					},
					Mode: ast.NormalCitation,
				}},
				Inlines: []ast.Inline{&ast.Str{Text: "[@doe99, p. 4]"}},
			},
		}},
	}}
	want := wrapInline(`Cite [ Citation { citationId = "doe99" , citationPrefix = [] , citationSuffix = [ Str "," , Space , Str "p." , Space , Str "4" ] , citationMode = NormalCitation , citationNoteNum = 0 , citationHash = 0 } ] [ Str "[@doe99, p. 4]" ]`)
	checkOutput(t, render(t, doc), want)
}

func TestNativeIndent(t *testing.T) {
	doc := &ast.Doc{Blocks: []ast.Block{
		&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "x"}}},
	}}
	want := "Pandoc\n" +
		"    Meta { unMeta = fromList [] }\n" +
		"    [ Para [ Str \"x\" ]\n" +
		"    ]\n"
	checkOutput(t, render(t, doc, Indent(4)), want)
}

func TestMustString(t *testing.T) {
	doc := &ast.Doc{}
	want := "Pandoc\n  Meta { unMeta = fromList [] }\n  []"
	if got := MustString(doc); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
