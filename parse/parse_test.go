package parse

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/signadot/qmd-format/go-qmd/cst"
	"github.com/signadot/qmd-format/go-qmd/token"
)

// dump renders a CST as a compact s-expression, with source text shown
// for the text-bearing leaf kinds.
func dump(n *cst.Node) string {
	var b strings.Builder
	dumpTo(&b, n)
	return b.String()
}

func dumpTo(b *strings.Builder, n *cst.Node) {
	b.WriteString(n.Kind.String())
	if len(n.Children) == 0 {
		switch n.Kind {
		case cst.KindTextBase, cst.KindCodeText, cst.KindCodeContent,
			cst.KindMathContent, cst.KindInfoString, cst.KindNoteLabel,
			cst.KindCitationId, cst.KindLinkDestination, cst.KindLinkTitle,
			cst.KindAttrId, cst.KindAttrClass, cst.KindAttrValue,
			cst.KindShortcodeName, cst.KindShortcodeNakedString,
			cst.KindShortcodeNumber, cst.KindShortcodeBoolean,
			cst.KindEscape:
			fmt.Fprintf(b, "%q", n.Text())
		}
		return
	}
	b.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		dumpTo(b, c)
	}
	b.WriteByte(')')
}

func parseDump(t *testing.T, in string, opts ...ParseOption) (string, *Result) {
	t.Helper()
	res, err := Parse([]byte(in), opts...)
	if err != nil {
		t.Fatalf("Parse(%q): %v", in, err)
	}
	return dump(res.Root), res
}

func TestParseInlines(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "hello *world*",
			want: `document(paragraph(inline(text_base"hello ",emphasis(emphasis_delimiter,text_base"world",emphasis_delimiter))))`,
		},
		{
			in:   "**bold**",
			want: `document(paragraph(inline(strong_emphasis(emphasis_delimiter,emphasis_delimiter,text_base"bold",emphasis_delimiter,emphasis_delimiter))))`,
		},
		{
			in:   "a `code` b",
			want: `document(paragraph(inline(text_base"a ",code_span(code_span_delimiter,code_content"code",code_span_delimiter),text_base" b")))`,
		},
		{
			in:   "$x+y$",
			want: `document(paragraph(inline(math_span(math_delimiter,math_content"x+y",math_delimiter))))`,
		},
		{
			in:   "x^2^",
			want: `document(paragraph(inline(text_base"x",superscript(emphasis_delimiter,text_base"2",emphasis_delimiter))))`,
		},
		{
			in:   "H~2~O",
			want: `document(paragraph(inline(text_base"H",subscript(emphasis_delimiter,text_base"2",emphasis_delimiter),text_base"O")))`,
		},
		{
			in:   "~~gone~~",
			want: `document(paragraph(inline(strikeout(emphasis_delimiter,text_base"gone",emphasis_delimiter))))`,
		},
		{
			in:   "'quoted'",
			want: `document(paragraph(inline(quoted(text_base"quoted"))))`,
		},
		{
			in:   "see @doe99 ok",
			want: `document(paragraph(inline(text_base"see ",citation(citation_id"doe99"),text_base" ok")))`,
		},
		{
			in:   "-@doe99",
			want: `document(paragraph(inline(citation(citation_id"doe99"))))`,
		},
		{
			in:   `[text](http://x "T")`,
			want: `document(paragraph(inline(inline_link(link_text(text_base"text"),link_destination"http://x",link_title"T"))))`,
		},
		{
			in:   "[word]{.cls}",
			want: `document(paragraph(inline(bracketed_span(link_text(text_base"word"),attribute(attr_class"cls")))))`,
		},
		{
			in:   "x[^a]",
			want: `document(paragraph(inline(text_base"x",note_reference(note_label"a"))))`,
		},
		{
			in:   "note^[inside]",
			want: `document(paragraph(inline(text_base"note",inline_note(text_base"inside"))))`,
		},
		{
			in:   "{{< video clip.mp4 >}}",
			want: `document(paragraph(inline(shortcode(shortcode_name"video",shortcode_naked_string"clip.mp4"))))`,
		},
		{
			in:   "{{< fig width=80 full=true >}}",
			want: `document(paragraph(inline(shortcode(shortcode_name"fig",shortcode_keyword(shortcode_name"width",shortcode_number"80"),shortcode_keyword(shortcode_name"full",shortcode_boolean"true")))))`,
		},
		{
			in:   `\*lit`,
			want: `document(paragraph(inline(escape"\\*",text_base"lit")))`,
		},
		{
			in:   "a\nb",
			want: `document(paragraph(inline(text_base"a",soft_break,text_base"b")))`,
		},
		{
			in:   "a  \nb",
			want: `document(paragraph(inline(text_base"a",hard_break,text_base"b")))`,
		},
		{
			// When a delimiter could either close the open emphasis or
			// start a new one, closing wins.
			in:   "*a*b*",
			want: `document(paragraph(inline(emphasis(emphasis_delimiter,text_base"a",emphasis_delimiter),text_base"b*")))`,
		},
		{
			in:   "**a**b**",
			want: `document(paragraph(inline(strong_emphasis(emphasis_delimiter,emphasis_delimiter,text_base"a",emphasis_delimiter,emphasis_delimiter),text_base"b**")))`,
		},
		{
			// An asterisk that cannot close stays literal.
			in:   "a *b",
			want: `document(paragraph(inline(text_base"a *b")))`,
		},
	} {
		got, res := parseDump(t, tc.in)
		if got != tc.want {
			t.Errorf("%q:\n got  %s\n want %s", tc.in, got, tc.want)
		}
		if res.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", tc.in, res.Diags)
		}
	}
}

func TestParseBlocks(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "# Title {#sec}",
			want: `document(atx_heading(inline(text_base"Title"),attribute(attr_id"sec")))`,
		},
		{
			in:   "## Sub ##",
			want: `document(atx_heading(inline(text_base"Sub")))`,
		},
		{
			in:   "---\ntitle: x\n---\n\nbody",
			want: `document(metadata_block(code_text"title: x"),paragraph(inline(text_base"body")))`,
		},
		{
			in:   "``` python\nx = 1\n```",
			want: `document(fenced_code_block(info_string"python",code_text"x = 1"))`,
		},
		{
			in:   "```{.py #ex}\ny\n```",
			want: `document(fenced_code_block(attribute(attr_class"py",attr_id"ex"),code_text"y"))`,
		},
		{
			in:   "    x = 1",
			want: `document(fenced_code_block(code_text"    x = 1"))`,
		},
		{
			in:   "> a\n> b",
			want: `document(block_quote(paragraph(inline(text_base"a",soft_break,text_base"b"))))`,
		},
		{
			in:   "***",
			want: `document(thematic_break)`,
		},
		{
			in:   "::: note\nhi\n:::",
			want: `document(fenced_div(attribute(attr_class"note"),paragraph(inline(text_base"hi"))))`,
		},
		{
			in:   "- a\n- b",
			want: `document(list(list_item(paragraph(inline(text_base"a"))),list_item(paragraph(inline(text_base"b")))))`,
		},
		{
			in:   "[^n]: the note",
			want: `document(note_definition(note_label"n",paragraph(inline(text_base"the note"))))`,
		},
		{
			in: "| a | b |\n|---|--:|\n| 1 | 2 |",
			want: `document(pipe_table(` +
				`table_row(table_cell(inline(text_base"a")),table_cell(inline(text_base"b"))),` +
				`table_delim_row(table_cell,table_cell),` +
				`table_row(table_cell(inline(text_base"1")),table_cell(inline(text_base"2")))))`,
		},
	} {
		got, res := parseDump(t, tc.in)
		if got != tc.want {
			t.Errorf("%q:\n got  %s\n want %s", tc.in, got, tc.want)
		}
		if res.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", tc.in, res.Diags)
		}
	}
}

func TestParseListFlags(t *testing.T) {
	res, err := Parse([]byte("3. a\n4. b"))
	if err != nil {
		t.Fatal(err)
	}
	list := res.Root.Children[0]
	if list.Kind != cst.KindList {
		t.Fatalf("got %s, want list", list.Kind)
	}
	if list.Flags&cst.FlagOrdered == 0 {
		t.Error("ordered flag not set")
	}
	if list.Flags&cst.FlagTight == 0 {
		t.Error("tight flag not set")
	}
	if list.N != 3 {
		t.Errorf("start = %d, want 3", list.N)
	}

	res, err = Parse([]byte("- a\n\n- b"))
	if err != nil {
		t.Fatal(err)
	}
	list = res.Root.Children[0]
	if list.Flags&cst.FlagTight != 0 {
		t.Error("blank-separated list should be loose")
	}
	if len(list.Children) != 2 {
		t.Errorf("items = %d, want 2", len(list.Children))
	}
}

func TestParseDisplayMath(t *testing.T) {
	res, err := Parse([]byte("$$e=mc^2$$"))
	if err != nil {
		t.Fatal(err)
	}
	var math *cst.Node
	cst.TopDown(res.Root, func(n *cst.Node, phase cst.Phase) bool {
		if phase == cst.Enter && n.Kind == cst.KindMathSpan {
			math = n
		}
		return true
	})
	if math == nil {
		t.Fatal("no math span")
	}
	if math.Flags&cst.FlagDisplayMath == 0 {
		t.Error("display flag not set for $$")
	}
	if math.N != 2 {
		t.Errorf("delim len = %d, want 2", math.N)
	}
}

func TestParseImageFlag(t *testing.T) {
	res, err := Parse([]byte("![alt](img.png)"))
	if err != nil {
		t.Fatal(err)
	}
	var link *cst.Node
	cst.TopDown(res.Root, func(n *cst.Node, phase cst.Phase) bool {
		if phase == cst.Enter && n.Kind == cst.KindInlineLink {
			link = n
		}
		return true
	})
	if link == nil {
		t.Fatal("no link node")
	}
	if link.Flags&cst.FlagImage == 0 {
		t.Error("image flag not set")
	}
}

func hasDiag(res *Result, sev Severity, sub string) bool {
	for _, d := range res.Diags {
		if d.Severity == sev && strings.Contains(d.Msg, sub) {
			return true
		}
	}
	return false
}

func TestParseDiagnostics(t *testing.T) {
	for _, tc := range []struct {
		in  string
		sev Severity
		sub string
	}{
		{"::: note\nno close", Error, "unclosed div"},
		{"```\ncode", Warn, "unclosed code fence"},
		{"[a](b", Error, "expected ')'"},
		{`[a](b "t`, Error, "unterminated link title"},
		{"^[oops", Warn, "unterminated inline note"},
		{"{{< video", Error, "unclosed shortcode"},
	} {
		res, err := Parse([]byte(tc.in))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if !hasDiag(res, tc.sev, tc.sub) {
			t.Errorf("%q: no %s diagnostic containing %q; got %v", tc.in, tc.sev, tc.sub, res.Diags)
		}
		if tc.sev == Error && !res.HasErrors() {
			t.Errorf("%q: HasErrors() = false", tc.in)
		}
	}
}

func TestParseDiagOrder(t *testing.T) {
	res, err := Parse([]byte("x [a](b\n\n```\ncode"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Diags); i++ {
		if res.Diags[i-1].Pos.I > res.Diags[i].Pos.I {
			t.Errorf("diagnostics out of order: %v", res.Diags)
		}
	}
}

func TestParseTooDeep(t *testing.T) {
	_, err := Parse([]byte("::: a\n::: b\nx\n:::\n:::"), MaxDepth(2))
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("err = %v, want ErrTooDeep", err)
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want it to wrap ErrParse", err)
	}
}

func TestParseWorkersDeterministic(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "# h%d\n\npara *%d* with `c%d` and @cite%d\n\n", i, i, i, i)
	}
	in := []byte(b.String())
	seq, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	par, err := Parse(in, InlineWorkers(8))
	if err != nil {
		t.Fatal(err)
	}
	if dump(seq.Root) != dump(par.Root) {
		t.Error("concurrent parse produced a different tree")
	}
	if len(seq.Diags) != len(par.Diags) {
		t.Errorf("diag count %d != %d", len(seq.Diags), len(par.Diags))
	}
}

func TestParseEmpty(t *testing.T) {
	res, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Root.Children) != 0 {
		t.Errorf("empty input produced %d blocks", len(res.Root.Children))
	}
}

func TestSegBufOffsets(t *testing.T) {
	src := []byte("xx abc\nyy def")
	b := newSegBuf(src, []cst.Span{{Start: 3, End: 6}, {Start: 10, End: 13}})
	if string(b.data) != "abc\ndef" {
		t.Fatalf("data = %q", b.data)
	}
	for _, tc := range []struct{ v, want int }{
		{0, 3},
		{2, 5},
		{4, 10},
		{6, 12},
	} {
		if got := b.srcOffset(tc.v); got != tc.want {
			t.Errorf("srcOffset(%d) = %d, want %d", tc.v, got, tc.want)
		}
	}
}

// A leaf whose context cannot hold line breaks folds the newline
// joining its segments into the surrounding text.
func TestParseLeafNoSoftBreak(t *testing.T) {
	src := []byte("a\nb")
	segs := []cst.Span{{Start: 0, End: 1}, {Start: 2, End: 3}}
	pd := token.NewPosDoc(src)

	plain := &cst.Node{Kind: cst.KindInline, Span: cst.Span{End: 3}, Src: src, Segments: segs}
	parseLeaf(plain, pd)
	if got, want := dump(plain), `inline(text_base"a",soft_break,text_base"b")`; got != want {
		t.Errorf("plain leaf = %s, want %s", got, want)
	}

	flagged := &cst.Node{
		Kind:     cst.KindInline,
		Span:     cst.Span{End: 3},
		Src:      src,
		Flags:    cst.FlagNoSoftBreak,
		Segments: []cst.Span{{Start: 0, End: 1}, {Start: 2, End: 3}},
	}
	parseLeaf(flagged, pd)
	if got, want := dump(flagged), `inline(text_base"a\nb")`; got != want {
		t.Errorf("flagged leaf = %s, want %s", got, want)
	}
}
