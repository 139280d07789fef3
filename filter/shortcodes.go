package filter

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
)

// Span classes and data attributes the shortcode lowering emits.
// Downstream tooling recognizes shortcodes by these markers.
const (
	shortcodeClass      = "quarto-shortcode__"
	shortcodeParamClass = "quarto-shortcode__-param"
)

// LowerShortcodes rewrites structured shortcodes into marker spans: an
// outer span tagged with the shortcode class whose children are one
// param span per name and argument.  Escaped shortcodes become the
// literal text they wrap, with one brace layer removed.
type LowerShortcodes struct{}

func (LowerShortcodes) Name() string { return "lower-shortcodes" }

func (LowerShortcodes) Apply(doc *ast.Doc) *ast.Doc {
	t := Transformer{Inline: func(in ast.Inline) []ast.Inline {
		sc, ok := in.(*ast.Shortcode)
		if !ok {
			return nil
		}
		if sc.Escaped {
			return []ast.Inline{&ast.Str{Text: unescapeShortcode(sc.Raw)}}
		}
		return []ast.Inline{lowerShortcode(sc)}
	}}
	return t.Doc(doc)
}

func lowerShortcode(sc *ast.Shortcode) *ast.Span {
	span := &ast.Span{
		Attr: ast.Attr{
			Classes: []string{shortcodeClass},
			KVs:     []ast.KV{{Key: "data-is-shortcode", Value: "1"}},
		},
	}
	span.Inlines = append(span.Inlines, paramSpan("", sc.Name, sc.Name, nil))
	for _, arg := range sc.Args {
		if arg.Sub != nil {
			span.Inlines = append(span.Inlines, paramSpan(arg.Key, "", arg.Raw, lowerShortcode(arg.Sub)))
			continue
		}
		span.Inlines = append(span.Inlines, paramSpan(arg.Key, arg.Value, arg.Raw, nil))
	}
	return span
}

func paramSpan(key, value, raw string, sub *ast.Span) *ast.Span {
	attr := ast.Attr{Classes: []string{shortcodeParamClass}}
	if key != "" {
		attr.KVs = append(attr.KVs, ast.KV{Key: "data-key", Value: key})
	}
	if sub == nil {
		attr.KVs = append(attr.KVs, ast.KV{Key: "data-value", Value: value})
	}
	attr.KVs = append(attr.KVs, ast.KV{Key: "data-raw", Value: raw})
	p := &ast.Span{Attr: attr}
	if sub != nil {
		p.Inlines = []ast.Inline{sub}
	}
	return p
}

// unescapeShortcode turns `{{{< ... >}}}` into `{{< ... >}}`.
func unescapeShortcode(raw string) string {
	if len(raw) >= 2 && raw[0] == '{' && raw[len(raw)-1] == '}' {
		return raw[1 : len(raw)-1]
	}
	return raw
}
