// Package filter holds the document rewrite passes that run between
// building and encoding: note resolution, shortcode lowering and text
// normalization.  Every pass is total: it always yields a document.
package filter

import (
	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/debug"
)

// Pass rewrites a document.
type Pass interface {
	Name() string
	Apply(*ast.Doc) *ast.Doc
}

// Pipeline applies passes in order.
type Pipeline []Pass

func (p Pipeline) Apply(doc *ast.Doc) *ast.Doc {
	for _, pass := range p {
		if debug.Filter() {
			debug.Logf("filter: %s", pass.Name())
		}
		doc = pass.Apply(doc)
	}
	return doc
}

// Default is the standard pipeline: resolve note references, lower
// shortcodes to spans, then merge adjacent text.
func Default() Pipeline {
	return Pipeline{ResolveNotes{}, LowerShortcodes{}, MergeStrs{}}
}
