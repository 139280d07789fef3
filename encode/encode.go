package encode

import (
	"bytes"
	"io"
	"strings"

	"github.com/signadot/qmd-format/go-qmd/ast"
	"github.com/signadot/qmd-format/go-qmd/format"
)

type EncState struct {
	indent int

	format format.Format

	Color func(ColorAttr, string) string
}

func (es *EncState) color(a ColorAttr, s string) string {
	if es.Color == nil {
		return s
	}
	return es.Color(a, s)
}

// Encode writes doc to w in the selected format; the default is the
// native format.
func Encode(doc *ast.Doc, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	if es.format.IsJSON() {
		return encodeJSON(doc, w)
	}
	return encodeNative(doc, w, es)
}

func MustString(doc *ast.Doc, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(doc, buf, opts...); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
