package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/signadot/qmd-format/go-qmd/ast"
)

func para(ins ...ast.Inline) *ast.Para { return &ast.Para{Inlines: ins} }

func refSpan(label string) *ast.Span {
	return &ast.Span{Attr: ast.Attr{
		Classes: []string{"quarto-note-reference"},
		KVs:     []ast.KV{{Key: "reference-id", Value: label}},
	}}
}

func defDiv(label string, bls ...ast.Block) *ast.Div {
	return &ast.Div{
		Attr:   ast.Attr{Id: label, Classes: []string{"quarto-note-definition"}},
		Blocks: bls,
	}
}

func TestResolveNotes(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{
			para(&ast.Str{Text: "x"}, &ast.NoteRef{Label: "a"}),
		},
		Notes: []ast.NoteDef{
			{Label: "a", Blocks: []ast.Block{para(&ast.Str{Text: "body"})}},
		},
	}
	got := ResolveNotes{}.Apply(doc)
	want := []ast.Block{
		para(&ast.Str{Text: "x"}, refSpan("a")),
		defDiv("a", para(&ast.Str{Text: "body"})),
	}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
	if got.Notes != nil {
		t.Errorf("notes not cleared: %+v", got.Notes)
	}
}

func TestResolveNotesFirstReference(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{
			para(&ast.NoteRef{Label: "a"}),
			para(&ast.Str{Text: "mid"}),
			para(&ast.NoteRef{Label: "a"}, &ast.NoteRef{Label: "b"}),
		},
		Notes: []ast.NoteDef{
			{Label: "a", Blocks: []ast.Block{para(&ast.Str{Text: "A"})}},
			{Label: "b", Blocks: []ast.Block{para(&ast.Str{Text: "B"})}},
			{Label: "c", Blocks: []ast.Block{para(&ast.Str{Text: "C"})}},
		},
	}
	got := ResolveNotes{Policy: NotesAtFirstReference}.Apply(doc)
	want := []ast.Block{
		para(refSpan("a")),
		defDiv("a", para(&ast.Str{Text: "A"})),
		para(&ast.Str{Text: "mid"}),
		para(refSpan("a"), refSpan("b")),
		defDiv("b", para(&ast.Str{Text: "B"})),
		// unreferenced definitions fall back to the end
		defDiv("c", para(&ast.Str{Text: "C"})),
	}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestResolveNotesUndefined(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.NoteRef{Label: "nope"})},
	}
	got := ResolveNotes{}.Apply(doc)
	want := []ast.Block{para(&ast.Str{Text: "[^nope]"})}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestResolveNotesNoNesting(t *testing.T) {
	// A reference inside a definition body flattens to literal text,
	// even when it points at another definition.
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.NoteRef{Label: "a"})},
		Notes: []ast.NoteDef{
			{Label: "a", Blocks: []ast.Block{para(&ast.NoteRef{Label: "b"})}},
			{Label: "b", Blocks: []ast.Block{para(&ast.Str{Text: "deep"})}},
		},
	}
	got := ResolveNotes{}.Apply(doc)
	want := []ast.Block{
		para(refSpan("a")),
		defDiv("a", para(&ast.Str{Text: "[^b]"})),
		defDiv("b", para(&ast.Str{Text: "deep"})),
	}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestResolveNotesSelfReference(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.NoteRef{Label: "a"})},
		Notes: []ast.NoteDef{
			{Label: "a", Blocks: []ast.Block{para(&ast.NoteRef{Label: "a"})}},
		},
	}
	got := ResolveNotes{}.Apply(doc)
	want := []ast.Block{
		para(refSpan("a")),
		defDiv("a", para(&ast.Str{Text: "[^a]"})),
	}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestLowerShortcodes(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.Shortcode{
			Name: "meta",
			Raw:  "{{< meta title >}}",
			Args: []ast.ShortcodeArg{{Value: "title", Raw: "title"}},
		})},
	}
	got := LowerShortcodes{}.Apply(doc)
	want := []ast.Block{para(&ast.Span{
		Attr: ast.Attr{
			Classes: []string{"quarto-shortcode__"},
			KVs:     []ast.KV{{Key: "data-is-shortcode", Value: "1"}},
		},
		Inlines: []ast.Inline{
			&ast.Span{Attr: ast.Attr{
				Classes: []string{"quarto-shortcode__-param"},
				KVs: []ast.KV{
					{Key: "data-value", Value: "meta"},
					{Key: "data-raw", Value: "meta"},
				},
			}},
			&ast.Span{Attr: ast.Attr{
				Classes: []string{"quarto-shortcode__-param"},
				KVs: []ast.KV{
					{Key: "data-value", Value: "title"},
					{Key: "data-raw", Value: "title"},
				},
			}},
		},
	})}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestLowerShortcodesKeyword(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.Shortcode{
			Name: "fig",
			Raw:  "{{< fig width=80 >}}",
			Args: []ast.ShortcodeArg{{Key: "width", Value: "80", Raw: "width=80"}},
		})},
	}
	got := LowerShortcodes{}.Apply(doc)
	outer, ok := got.Blocks[0].(*ast.Para).Inlines[0].(*ast.Span)
	if !ok {
		t.Fatalf("not a span: %T", got.Blocks[0].(*ast.Para).Inlines[0])
	}
	if len(outer.Inlines) != 2 {
		t.Fatalf("param spans = %d, want 2", len(outer.Inlines))
	}
	kw := outer.Inlines[1].(*ast.Span)
	wantKVs := []ast.KV{
		{Key: "data-key", Value: "width"},
		{Key: "data-value", Value: "80"},
		{Key: "data-raw", Value: "width=80"},
	}
	if diff := cmp.Diff(wantKVs, kw.Attr.KVs); diff != "" {
		t.Errorf("keyword kvs (-want +got):\n%s", diff)
	}
}

func TestLowerShortcodesNested(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.Shortcode{
			Name: "a",
			Raw:  "{{< a {{< b >}} >}}",
			Args: []ast.ShortcodeArg{{
				Raw: "{{< b >}}",
				Sub: &ast.Shortcode{Name: "b", Raw: "{{< b >}}"},
			}},
		})},
	}
	got := LowerShortcodes{}.Apply(doc)
	outer := got.Blocks[0].(*ast.Para).Inlines[0].(*ast.Span)
	sub := outer.Inlines[1].(*ast.Span)
	// The nested-shortcode param span has no data-value and carries the
	// lowered sub-shortcode inside.
	for _, kv := range sub.Attr.KVs {
		if kv.Key == "data-value" {
			t.Error("sub-shortcode param span should not carry data-value")
		}
	}
	if len(sub.Inlines) != 1 {
		t.Fatalf("sub inlines = %d, want 1", len(sub.Inlines))
	}
	inner := sub.Inlines[0].(*ast.Span)
	if !inner.Attr.HasClass("quarto-shortcode__") {
		t.Error("nested span missing shortcode class")
	}
}

func TestLowerShortcodesEscaped(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(&ast.Shortcode{
			Name:    "meta",
			Escaped: true,
			Raw:     "{{{< meta x >}}}",
		})},
	}
	got := LowerShortcodes{}.Apply(doc)
	want := []ast.Block{para(&ast.Str{Text: "{{< meta x >}}"})}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestMergeStrs(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(
			&ast.Str{Text: "a"},
			&ast.Str{Text: ""},
			&ast.Str{Text: "b"},
			&ast.Space{},
			&ast.Str{Text: "c"},
		)},
	}
	got := MergeStrs{}.Apply(doc)
	want := []ast.Block{para(
		&ast.Str{Text: "ab"},
		&ast.Space{},
		&ast.Str{Text: "c"},
	)}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestMergeStrsNested(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(
			&ast.Emph{Inlines: []ast.Inline{
				&ast.Str{Text: "x"}, &ast.Str{Text: "y"},
			}},
		)},
	}
	got := MergeStrs{}.Apply(doc)
	want := []ast.Block{para(
		&ast.Emph{Inlines: []ast.Inline{&ast.Str{Text: "xy"}}},
	)}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestDefaultPipeline(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(
			&ast.Str{Text: "a"},
			&ast.NoteRef{Label: "n"},
			&ast.Str{Text: "b"},
		)},
		Notes: []ast.NoteDef{
			{Label: "n", Blocks: []ast.Block{para(&ast.Str{Text: "note"})}},
		},
	}
	got := Default().Apply(doc)
	want := []ast.Block{
		para(&ast.Str{Text: "a"}, refSpan("n"), &ast.Str{Text: "b"}),
		defDiv("n", para(&ast.Str{Text: "note"})),
	}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestTransformerDelete(t *testing.T) {
	doc := &ast.Doc{
		Blocks: []ast.Block{para(
			&ast.Str{Text: "keep"},
			&ast.SoftBreak{},
		)},
	}
	t1 := Transformer{Inline: func(in ast.Inline) []ast.Inline {
		if _, ok := in.(*ast.SoftBreak); ok {
			return []ast.Inline{}
		}
		return nil
	}}
	got := t1.Doc(doc)
	want := []ast.Block{para(&ast.Str{Text: "keep"})}
	if diff := cmp.Diff(want, got.Blocks, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}
