package ast

import (
	"fmt"
	"strings"

	"github.com/signadot/qmd-format/go-qmd/cst"
	"github.com/signadot/qmd-format/go-qmd/debug"
	"github.com/signadot/qmd-format/go-qmd/parse"
	"github.com/signadot/qmd-format/go-qmd/token"
)

// builder folds a CST bottom-up into interchange values.  Fold values
// are Blocks, Inlines, or the small carrier types below; structural
// kinds fold to nothing and their parents read the node directly.
type builder struct {
	src      []byte
	pd       *token.PosDoc
	meta     Meta
	notes    []NoteDef
	noteSet  map[string]bool
	noteRefs []noteRefSite
	diags    []*parse.Diagnostic
}

// noteRefSite records where a note reference sits in the source, so an
// unresolved label can be reported at the reference itself.
type noteRefSite struct {
	label string
	off   int
}

// Carrier values passed between fold levels.
type (
	attrVal struct {
		attr Attr
		raw  string
	}
	rawFmt struct {
		format string
		raw    string
	}
	citeVal struct {
		id   string
		mode CitationMode
		raw  string
	}
	cellVal struct{ cell TableCell }
	rowVal  struct {
		row    TableRow
		header bool
	}
	alignsVal []Alignment
)

type buildFn func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any

// registry maps every CST kind to its conversion.  A kind without an
// entry is an internal error: the parser produced a node the builder
// does not know, and there is no sensible degradation.
var registry map[cst.Kind]buildFn

// Build converts a parse result into a Doc.  The returned diagnostics
// are build-level warnings (duplicate or unresolved notes, bad
// metadata); parse diagnostics stay on the Result.
func Build(res *parse.Result) (*Doc, []*parse.Diagnostic) {
	b := &builder{
		src:     res.Source,
		pd:      res.Pos,
		noteSet: map[string]bool{},
	}
	vals := cst.BottomUp(res.Root, b.fold)
	doc := &Doc{Meta: b.meta, Blocks: blocksOf(vals), Notes: b.notes}
	b.checkNoteRefs()
	return doc, b.diags
}

func (b *builder) fold(n *cst.Node, kids []cst.Folded[[]any]) []any {
	fn, ok := registry[n.Kind]
	if !ok {
		panic(fmt.Sprintf("ast: no conversion registered for node kind %s", n.Kind))
	}
	if debug.Build() {
		debug.Logf("build: %s", n.Kind)
	}
	return fn(b, n, kids)
}

func (b *builder) warnAt(off int, msg string) {
	b.diags = append(b.diags, &parse.Diagnostic{Severity: parse.Warn, Msg: msg, Pos: b.pd.Pos(off)})
}

func init() {
	nilFn := func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any { return nil }
	registry = map[cst.Kind]buildFn{
		cst.KindDocument:      func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any { return flat(kids) },
		cst.KindMetadataBlock: (*builder).metadataBlock,
		cst.KindParagraph: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Para{Inlines: castInlines(flat(kids))})
		},
		cst.KindAtxHeading:      (*builder).heading,
		cst.KindFencedCodeBlock: (*builder).codeBlock,
		cst.KindBlockQuote: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&BlockQuote{Blocks: blocksOf(flat(kids))})
		},
		cst.KindFencedDiv:     (*builder).div,
		cst.KindThematicBreak: constFn(&HorizontalRule{}),
		cst.KindList:          (*builder).list,
		cst.KindListItem: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return flat(kids)
		},
		cst.KindNoteDefinition: (*builder).noteDefinition,
		cst.KindNoteLabel:      nilFn,
		cst.KindPipeTable:      (*builder).table,
		cst.KindTableRow:       (*builder).tableRow,
		cst.KindTableDelimRow:  (*builder).tableDelimRow,
		cst.KindTableCell:      (*builder).tableCell,

		cst.KindInline: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			b.collectNoteRefs(n)
			return asAny(b.assemble(flat(kids)))
		},
		cst.KindTextBase:  (*builder).textBase,
		cst.KindEscape:    (*builder).escapeChar,
		cst.KindSoftBreak: constFn(&SoftBreak{}),
		cst.KindHardBreak: constFn(&LineBreak{}),
		cst.KindEmphasis: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Emph{Inlines: b.assemble(flat(kids))})
		},
		cst.KindStrongEmphasis: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Strong{Inlines: b.assemble(flat(kids))})
		},
		cst.KindStrikeout: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Strikeout{Inlines: b.assemble(flat(kids))})
		},
		cst.KindSuperscript: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Superscript{Inlines: b.assemble(flat(kids))})
		},
		cst.KindSubscript: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Subscript{Inlines: b.assemble(flat(kids))})
		},
		cst.KindQuoted:            (*builder).quoted,
		cst.KindEmphasisDelimiter: nilFn,
		cst.KindCodeSpan:          (*builder).codeSpan,
		cst.KindCodeSpanDelimiter: nilFn,
		cst.KindCodeContent:       nilFn,
		cst.KindMathSpan:          (*builder).mathSpan,
		cst.KindMathDelimiter:     nilFn,
		cst.KindMathContent:       nilFn,
		cst.KindInlineLink:        (*builder).link,
		cst.KindLinkText: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			// Raw values: the enclosing link or span decides how to
			// assemble them (citation grouping needs the carriers).
			return flat(kids)
		},
		cst.KindLinkDestination: nilFn,
		cst.KindLinkTitle:       nilFn,
		cst.KindBracketedSpan:   (*builder).bracketedSpan,
		cst.KindCitation:        (*builder).citation,
		cst.KindCitationId:      nilFn,
		cst.KindNoteReference:   (*builder).noteReference,
		cst.KindInlineNote: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(&Note{Blocks: []Block{&Para{Inlines: b.assemble(flat(kids))}}})
		},

		cst.KindAttribute:         (*builder).attribute,
		cst.KindAttrId:            nilFn,
		cst.KindAttrClass:         nilFn,
		cst.KindAttrKey:           nilFn,
		cst.KindAttrValue:         nilFn,
		cst.KindRawAttribute:      (*builder).rawAttribute,
		cst.KindRawReaderAttribute: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			name := string(n.ChildKind(cst.KindAttrValue).Text())
			return []any{rawFmt{format: "reader:" + name, raw: string(n.Text())}}
		},
		cst.KindInfoString: nilFn,
		cst.KindCodeText:   nilFn,

		cst.KindShortcode: func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any {
			return one(b.shortcode(n))
		},
		cst.KindShortcodeName:        nilFn,
		cst.KindShortcodeString:      nilFn,
		cst.KindShortcodeNakedString: nilFn,
		cst.KindShortcodeNumber:      nilFn,
		cst.KindShortcodeBoolean:     nilFn,
		cst.KindShortcodeKeyword:     nilFn,
	}
}

func constFn(v any) buildFn {
	return func(b *builder, n *cst.Node, kids []cst.Folded[[]any]) []any { return []any{v} }
}

func one(v any) []any { return []any{v} }

func flat(kids []cst.Folded[[]any]) []any {
	var out []any
	for _, k := range kids {
		out = append(out, k.Value...)
	}
	return out
}

func asAny[T any](in []T) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}

func castInlines(vals []any) []Inline {
	var out []Inline
	for _, v := range vals {
		if in, ok := v.(Inline); ok {
			out = append(out, in)
		}
	}
	return out
}

func blocksOf(vals []any) []Block {
	var out []Block
	for _, v := range vals {
		if bl, ok := v.(Block); ok {
			out = append(out, bl)
		}
	}
	return out
}

// assemble turns a fold value stream into final inlines: raw citation
// carriers become author-in-text cites, attribute carriers attach to
// the preceding element where that element takes an attribute, and raw
// format carriers rewrite a preceding code span into a raw inline.
func (b *builder) assemble(vals []any) []Inline {
	var out []Inline
	for _, v := range vals {
		switch x := v.(type) {
		case *citeVal:
			out = append(out, &Cite{
				Citations: []Citation{{Id: x.id, Mode: x.mode}},
				Inlines:   []Inline{&Str{Text: x.raw}},
			})
		case attrVal:
			if len(out) > 0 && attachAttr(out[len(out)-1], x.attr) {
				continue
			}
			out = append(out, &Str{Text: x.raw})
		case rawFmt:
			if len(out) > 0 {
				if c, ok := out[len(out)-1].(*Code); ok {
					out[len(out)-1] = &RawInline{Format: x.format, Text: c.Text}
					continue
				}
			}
			out = append(out, &Str{Text: x.raw})
		case Inline:
			out = append(out, x)
		}
	}
	return out
}

func attachAttr(in Inline, a Attr) bool {
	switch x := in.(type) {
	case *Code:
		x.Attr = a
	case *Link:
		x.Attr = a
	case *Image:
		x.Attr = a
	case *Span:
		x.Attr = a
	default:
		return false
	}
	return true
}

// Blocks.

func (b *builder) metadataBlock(n *cst.Node, kids []cst.Folded[[]any]) []any {
	data := n.ChildKind(cst.KindCodeText).Text()
	m, err := decodeMeta(data)
	if err != nil {
		b.warnAt(n.Span.Start, err.Error())
		return nil
	}
	b.meta = mergeMeta(b.meta, m)
	return nil
}

func (b *builder) heading(n *cst.Node, kids []cst.Folded[[]any]) []any {
	h := &Header{Level: n.N}
	for _, v := range flat(kids) {
		switch x := v.(type) {
		case attrVal:
			h.Attr = x.attr
		case Inline:
			h.Inlines = append(h.Inlines, x)
		}
	}
	return one(h)
}

func (b *builder) codeBlock(n *cst.Node, kids []cst.Folded[[]any]) []any {
	text := dedent(string(n.ChildKind(cst.KindCodeText).Text()), n.N)
	for _, v := range flat(kids) {
		switch x := v.(type) {
		case rawFmt:
			return one(&RawBlock{Format: x.format, Text: text})
		case attrVal:
			return one(&CodeBlock{Attr: x.attr, Text: text})
		}
	}
	var attr Attr
	if info := n.ChildKind(cst.KindInfoString); info != nil {
		attr.Classes = []string{string(info.Text())}
	}
	return one(&CodeBlock{Attr: attr, Text: text})
}

// dedent strips up to cols columns of leading spaces from every line
// and drops the trailing newline.
func dedent(text string, cols int) string {
	text = strings.TrimSuffix(text, "\n")
	if cols == 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		k := 0
		for k < len(ln) && k < cols && ln[k] == ' ' {
			k++
		}
		lines[i] = ln[k:]
	}
	return strings.Join(lines, "\n")
}

func (b *builder) div(n *cst.Node, kids []cst.Folded[[]any]) []any {
	d := &Div{}
	for _, v := range flat(kids) {
		switch x := v.(type) {
		case attrVal:
			d.Attr = x.attr
		case Block:
			d.Blocks = append(d.Blocks, x)
		}
	}
	return one(d)
}

func (b *builder) list(n *cst.Node, kids []cst.Folded[[]any]) []any {
	tight := n.Flags&cst.FlagTight != 0
	var items [][]Block
	for _, k := range kids {
		blocks := blocksOf(k.Value)
		if tight {
			for i, bl := range blocks {
				if p, ok := bl.(*Para); ok {
					blocks[i] = &Plain{Inlines: p.Inlines}
				}
			}
		}
		items = append(items, blocks)
	}
	if n.Flags&cst.FlagOrdered == 0 {
		return one(&BulletList{Items: items})
	}
	return one(&OrderedList{Start: n.N, Delim: orderedDelim(n), Items: items})
}

// orderedDelim reads the first item's marker delimiter out of the
// source.
func orderedDelim(list *cst.Node) byte {
	if len(list.Children) == 0 {
		return '.'
	}
	i := list.Children[0].Span.Start
	for i < len(list.Src) && list.Src[i] >= '0' && list.Src[i] <= '9' {
		i++
	}
	if i < len(list.Src) && list.Src[i] == ')' {
		return ')'
	}
	return '.'
}

func (b *builder) noteDefinition(n *cst.Node, kids []cst.Folded[[]any]) []any {
	label := string(n.ChildKind(cst.KindNoteLabel).Text())
	if b.noteSet[label] {
		b.warnAt(n.Span.Start, fmt.Sprintf("duplicate note definition [^%s]; first one wins", label))
		return nil
	}
	b.noteSet[label] = true
	b.notes = append(b.notes, NoteDef{Label: label, Blocks: blocksOf(flat(kids))})
	return nil
}

// Tables.

func (b *builder) table(n *cst.Node, kids []cst.Folded[[]any]) []any {
	t := &Table{}
	for _, v := range flat(kids) {
		switch x := v.(type) {
		case rowVal:
			if x.header {
				t.Header = x.row
			} else {
				t.Rows = append(t.Rows, x.row)
			}
		case alignsVal:
			t.Aligns = x
		}
	}
	// Pad alignments so every column has one.
	for len(t.Aligns) < len(t.Header.Cells) {
		t.Aligns = append(t.Aligns, AlignDefault)
	}
	return one(t)
}

func (b *builder) tableRow(n *cst.Node, kids []cst.Folded[[]any]) []any {
	r := rowVal{header: n.Field == "header"}
	for _, v := range flat(kids) {
		if c, ok := v.(cellVal); ok {
			r.row.Cells = append(r.row.Cells, c.cell)
		}
	}
	return []any{r}
}

func (b *builder) tableDelimRow(n *cst.Node, kids []cst.Folded[[]any]) []any {
	var aligns alignsVal
	for _, c := range n.Children {
		aligns = append(aligns, Alignment(c.N))
	}
	return []any{aligns}
}

func (b *builder) tableCell(n *cst.Node, kids []cst.Folded[[]any]) []any {
	ins := castInlines(flat(kids))
	var blocks []Block
	if len(ins) > 0 {
		blocks = []Block{&Plain{Inlines: ins}}
	}
	return []any{cellVal{cell: TableCell{Blocks: blocks}}}
}

// Inlines.

func (b *builder) textBase(n *cst.Node, kids []cst.Folded[[]any]) []any {
	return splitWords(string(n.Text()))
}

// splitWords breaks literal text into Str and Space elements; runs of
// whitespace collapse to one Space.
func splitWords(text string) []any {
	var out []any
	word := strings.Builder{}
	flush := func() {
		if word.Len() > 0 {
			out = append(out, &Str{Text: word.String()})
			word.Reset()
		}
	}
	space := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			flush()
			space = true
			continue
		}
		if space {
			out = append(out, &Space{})
			space = false
		}
		word.WriteByte(c)
	}
	flush()
	if space {
		out = append(out, &Space{})
	}
	return out
}

func (b *builder) escapeChar(n *cst.Node, kids []cst.Folded[[]any]) []any {
	t := n.Text()
	return one(&Str{Text: string(t[1:])})
}

func (b *builder) quoted(n *cst.Node, kids []cst.Folded[[]any]) []any {
	q := &Quoted{Type: SingleQuote, Inlines: b.assemble(flat(kids))}
	if n.Flags&cst.FlagDoubleQuote != 0 {
		q.Type = DoubleQuote
	}
	return one(q)
}

func (b *builder) codeSpan(n *cst.Node, kids []cst.Folded[[]any]) []any {
	return one(&Code{Text: cleanCodeSpan(string(n.ChildKind(cst.KindCodeContent).Text()))})
}

// cleanCodeSpan applies the code span content rules: newlines become
// spaces, and one leading and trailing space drop when both are
// present around non-space content.
func cleanCodeSpan(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.TrimSpace(s) != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func (b *builder) mathSpan(n *cst.Node, kids []cst.Folded[[]any]) []any {
	m := &Math{Type: InlineMath, Text: string(n.ChildKind(cst.KindMathContent).Text())}
	if n.Flags&cst.FlagDisplayMath != 0 {
		m.Type = DisplayMath
	}
	return one(m)
}

func (b *builder) link(n *cst.Node, kids []cst.Folded[[]any]) []any {
	var text []Inline
	var attr Attr
	for _, k := range kids {
		if k.Node.Kind == cst.KindLinkText {
			text = b.assemble(k.Value)
		}
		for _, v := range k.Value {
			if a, ok := v.(attrVal); ok {
				attr = a.attr
			}
		}
	}
	target := Target{}
	if d := n.ChildKind(cst.KindLinkDestination); d != nil {
		target.URL = string(d.Text())
	}
	if t := n.ChildKind(cst.KindLinkTitle); t != nil {
		target.Title = string(t.Text())
	}
	if n.Flags&cst.FlagImage != 0 {
		return one(&Image{Attr: attr, Inlines: text, Target: target})
	}
	return one(&Link{Attr: attr, Inlines: text, Target: target})
}

func (b *builder) bracketedSpan(n *cst.Node, kids []cst.Folded[[]any]) []any {
	var content []any
	var attr *Attr
	for _, k := range kids {
		if k.Node.Kind == cst.KindLinkText {
			content = k.Value
		}
		for _, v := range k.Value {
			if a, ok := v.(attrVal); ok && k.Node.Kind != cst.KindLinkText {
				av := a.attr
				attr = &av
			}
		}
	}
	if hasCite(content) {
		return one(b.citeGroup(n, content))
	}
	if attr != nil {
		return one(&Span{Attr: *attr, Inlines: b.assemble(content)})
	}
	// No attribute, no citations: not a span at all.  The brackets
	// stay literal.
	out := []any{any(&Str{Text: "["})}
	out = append(out, asAny(b.assemble(content))...)
	out = append(out, &Str{Text: "]"})
	return out
}

func hasCite(vals []any) bool {
	for _, v := range vals {
		if _, ok := v.(*citeVal); ok {
			return true
		}
	}
	return false
}

// citeGroup turns a bracketed sequence containing citations into one
// Cite.  Segments split on ';'; within a segment the inlines before
// the key are the prefix, the ones after are the suffix.
func (b *builder) citeGroup(n *cst.Node, vals []any) *Cite {
	segs := splitCiteSegments(vals)
	var cites []Citation
	for _, seg := range segs {
		var cur *Citation
		var pre []Inline
		for _, v := range seg {
			switch x := v.(type) {
			case *citeVal:
				if cur != nil {
					cites = append(cites, *cur)
				}
				mode := NormalCitation
				if x.mode == SuppressAuthor {
					mode = SuppressAuthor
				}
				cur = &Citation{Id: x.id, Mode: mode, Prefix: trimEdges(pre)}
				pre = nil
			case Inline:
				if cur != nil {
					cur.Suffix = append(cur.Suffix, x)
				} else {
					pre = append(pre, x)
				}
			}
		}
		if cur != nil {
			cur.Suffix = trimEdges(cur.Suffix)
			cites = append(cites, *cur)
		} else if len(cites) > 0 && len(pre) > 0 {
			// Key-less segment: its text joins the previous suffix.
			cites[len(cites)-1].Suffix = append(cites[len(cites)-1].Suffix, pre...)
		}
	}
	return &Cite{Citations: cites, Inlines: []Inline{&Str{Text: string(n.Text())}}}
}

func splitCiteSegments(vals []any) [][]any {
	var segs [][]any
	var cur []any
	for _, v := range vals {
		s, ok := v.(*Str)
		if !ok || !strings.Contains(s.Text, ";") {
			cur = append(cur, v)
			continue
		}
		parts := strings.Split(s.Text, ";")
		for i, part := range parts {
			if part != "" {
				cur = append(cur, &Str{Text: part})
			}
			if i < len(parts)-1 {
				segs = append(segs, cur)
				cur = nil
			}
		}
	}
	segs = append(segs, cur)
	return segs
}

func trimEdges(ins []Inline) []Inline {
	for len(ins) > 0 {
		if _, ok := ins[0].(*Space); !ok {
			break
		}
		ins = ins[1:]
	}
	for len(ins) > 0 {
		if _, ok := ins[len(ins)-1].(*Space); !ok {
			break
		}
		ins = ins[:len(ins)-1]
	}
	return ins
}

func (b *builder) citation(n *cst.Node, kids []cst.Folded[[]any]) []any {
	cv := &citeVal{
		id:  string(n.ChildKind(cst.KindCitationId).Text()),
		raw: string(n.Text()),
	}
	switch {
	case n.Flags&cst.FlagSuppressAuthor != 0:
		cv.mode = SuppressAuthor
	case n.Flags&cst.FlagAuthorInText != 0:
		cv.mode = AuthorInText
	}
	return []any{cv}
}

func (b *builder) noteReference(n *cst.Node, kids []cst.Folded[[]any]) []any {
	return one(&NoteRef{Label: string(n.ChildKind(cst.KindNoteLabel).Text())})
}

// Attributes.

func (b *builder) attribute(n *cst.Node, kids []cst.Folded[[]any]) []any {
	var a Attr
	for _, c := range n.Children {
		switch c.Kind {
		case cst.KindAttrId:
			a.Id = string(c.Text())
		case cst.KindAttrClass:
			// Classes form an ordered set.
			if cls := string(c.Text()); !a.HasClass(cls) {
				a.Classes = append(a.Classes, cls)
			}
		case cst.KindAttrKey:
			// First occurrence of a key wins.
			kv := KV{Key: string(c.Text())}
			if hasKey(a.KVs, kv.Key) {
				continue
			}
			if len(c.Children) > 0 {
				kv.Value = string(c.Children[0].Text())
			}
			a.KVs = append(a.KVs, kv)
		}
	}
	return []any{attrVal{attr: a, raw: string(n.Text())}}
}

func hasKey(kvs []KV, key string) bool {
	for _, kv := range kvs {
		if kv.Key == key {
			return true
		}
	}
	return false
}

func (b *builder) rawAttribute(n *cst.Node, kids []cst.Folded[[]any]) []any {
	return []any{rawFmt{
		format: string(n.ChildKind(cst.KindAttrValue).Text()),
		raw:    string(n.Text()),
	}}
}

// Shortcodes.

func (b *builder) shortcode(n *cst.Node) *Shortcode {
	s := &Shortcode{
		Escaped: n.Flags&cst.FlagEscaped != 0,
		Raw:     string(n.Text()),
	}
	for _, c := range n.Children {
		switch c.Kind {
		case cst.KindShortcodeName:
			if s.Name == "" {
				s.Name = string(c.Text())
				continue
			}
			s.Args = append(s.Args, ShortcodeArg{Value: string(c.Text()), Raw: string(c.Text())})
		case cst.KindShortcodeString:
			t := string(c.Text())
			v := t
			if len(v) >= 2 {
				v = v[1 : len(v)-1]
			}
			if s.Name == "" {
				s.Name = v
				continue
			}
			s.Args = append(s.Args, ShortcodeArg{Value: v, Raw: t})
		case cst.KindShortcodeNakedString, cst.KindShortcodeNumber, cst.KindShortcodeBoolean:
			t := string(c.Text())
			s.Args = append(s.Args, ShortcodeArg{Value: t, Raw: t})
		case cst.KindShortcodeKeyword:
			arg := ShortcodeArg{Raw: string(c.Text())}
			if len(c.Children) > 0 {
				arg.Key = string(c.Children[0].Text())
			}
			if len(c.Children) > 1 {
				v := c.Children[1]
				if v.Kind == cst.KindShortcode {
					arg.Sub = b.shortcode(v)
				} else {
					arg.Value = shortcodeScalar(v)
				}
			}
			s.Args = append(s.Args, arg)
		case cst.KindShortcode:
			s.Args = append(s.Args, ShortcodeArg{Sub: b.shortcode(c), Raw: string(c.Text())})
		}
	}
	return s
}

func shortcodeScalar(n *cst.Node) string {
	t := string(n.Text())
	if n.Kind == cst.KindShortcodeString && len(t) >= 2 {
		return t[1 : len(t)-1]
	}
	return t
}

// Note reference checking.

// collectNoteRefs records every note reference under an inline leaf
// with its source offset, translated from the leaf's virtual buffer.
func (b *builder) collectNoteRefs(leaf *cst.Node) {
	cst.TopDown(leaf, func(n *cst.Node, phase cst.Phase) bool {
		if phase == cst.Enter && n.Kind == cst.KindNoteReference {
			b.noteRefs = append(b.noteRefs, noteRefSite{
				label: string(n.ChildKind(cst.KindNoteLabel).Text()),
				off:   leafSrcOffset(leaf, n.Span.Start),
			})
		}
		return true
	})
}

// checkNoteRefs warns about references whose label never got a
// definition, positioned at the reference itself.
func (b *builder) checkNoteRefs() {
	for _, r := range b.noteRefs {
		if !b.noteSet[r.label] {
			b.warnAt(r.off, fmt.Sprintf("reference to undefined note [^%s]", r.label))
		}
	}
}

// leafSrcOffset maps a virtual offset inside an inline leaf's joined
// segment buffer back to a source offset.
func leafSrcOffset(leaf *cst.Node, v int) int {
	off := 0
	for i, s := range leaf.Segments {
		if i > 0 {
			off++ // the joining newline
		}
		n := s.End - s.Start
		if v <= off+n || i == len(leaf.Segments)-1 {
			d := v - off
			if d < 0 {
				d = 0
			} else if d > n {
				d = n
			}
			return s.Start + d
		}
		off += n
	}
	return leaf.Span.Start
}
