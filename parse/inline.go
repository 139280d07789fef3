package parse

import (
	"github.com/signadot/qmd-format/go-qmd/cst"
	"github.com/signadot/qmd-format/go-qmd/debug"
	"github.com/signadot/qmd-format/go-qmd/token"
)

// inlineParser is the second stage.  It runs over one inline leaf's
// virtual buffer (the leaf's line segments joined by newlines) driving
// a token.Scanner, and backtracks through scanner snapshots when a
// speculative construct fails to close.
type inlineParser struct {
	src    []byte
	sc     *token.Scanner
	pos    int
	diags  []*Diagnostic
	mapPos func(int) *token.Pos

	// noSoftBreak folds newlines into the surrounding text; set for
	// leaves whose context cannot hold line breaks, like headings and
	// table cells.
	noSoftBreak bool
}

func newInlineParser(src []byte, mapPos func(int) *token.Pos) *inlineParser {
	return &inlineParser{src: src, sc: token.NewScanner(), mapPos: mapPos}
}

type snapshot struct {
	pos   int
	state []byte
	diags int
}

func (p *inlineParser) save() snapshot {
	return snapshot{pos: p.pos, state: p.sc.Serialize(), diags: len(p.diags)}
}

func (p *inlineParser) restore(s snapshot) {
	p.pos = s.pos
	p.sc.Deserialize(s.state)
	p.diags = p.diags[:s.diags]
}

func (p *inlineParser) errorAt(off int, msg string) {
	p.diags = append(p.diags, &Diagnostic{Severity: Error, Msg: msg, Pos: p.mapPos(off)})
}

func (p *inlineParser) warnAt(off int, msg string) {
	p.diags = append(p.diags, &Diagnostic{Severity: Warn, Msg: msg, Pos: p.mapPos(off)})
}

func isInlineWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isInlinePunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') ||
		(c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

// lastBits raises the pseudo-kinds describing what precedes the
// current position; the scanner's flanking decisions read them from
// the accepted set.
func (p *inlineParser) lastBits() token.Set {
	if p.pos == 0 {
		return token.NewSet(token.LastTokenWhitespace)
	}
	c := p.src[p.pos-1]
	switch {
	case isInlineWS(c):
		return token.NewSet(token.LastTokenWhitespace)
	case isInlinePunct(c):
		return token.NewSet(token.LastTokenPunctuation)
	}
	return 0
}

// seq describes how an inline sequence terminates.
type seq struct {
	closeValid token.Set // scanner kinds that close the sequence
	closeByte  byte      // byte that closes it (']'), 0 for none
	noSpace    bool      // any whitespace aborts the sequence
}

func (s seq) open() bool {
	return s.closeValid == 0 && s.closeByte == 0
}

// closeRes reports how a sequence ended.
type closeRes struct {
	ok   bool
	kind token.Kind
	span cst.Span
}

func (p *inlineParser) parseInlines(s seq) ([]*cst.Node, closeRes) {
	r := &run{p: p, s: s, textStart: -1}
	return r.exec()
}

// run holds per-sequence parse state: collected nodes and the open
// literal text span.
type run struct {
	p         *inlineParser
	s         seq
	nodes     []*cst.Node
	textStart int
}

// flush closes the open text span at end.
func (r *run) flush(end int) {
	if r.textStart >= 0 && end > r.textStart {
		r.nodes = append(r.nodes, &cst.Node{
			Kind: cst.KindTextBase,
			Span: cst.Span{Start: r.textStart, End: end},
			Src:  r.p.src,
		})
	}
	r.textStart = -1
}

// literal extends the open text span by n bytes.
func (r *run) literal(n int) {
	if r.textStart < 0 {
		r.textStart = r.p.pos
	}
	r.p.pos += n
}

// emit appends a parsed node, flushing any literal text before it.
func (r *run) emit(n *cst.Node) {
	r.flush(n.Span.Start)
	r.nodes = append(r.nodes, n)
}

func (r *run) exec() ([]*cst.Node, closeRes) {
	p := r.p
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if r.s.noSpace && isInlineWS(c) {
			r.flush(p.pos)
			return r.nodes, closeRes{}
		}
		if r.s.closeByte != 0 && c == r.s.closeByte {
			r.flush(p.pos)
			sp := cst.Span{Start: p.pos, End: p.pos + 1}
			p.pos++
			return r.nodes, closeRes{ok: true, span: sp}
		}
		var stop bool
		var res closeRes
		switch c {
		case '\n':
			r.newline()
		case '\\':
			r.escape()
		case '`':
			r.leafSpan('`', cst.KindCodeSpan, token.CodeSpanStart, token.CodeSpanClose)
		case '$':
			r.leafSpan('$', cst.KindMathSpan, token.MathSpanStart, token.MathSpanClose)
		case '*':
			stop, res = r.emphasis('*', token.EmphasisOpenStar, token.EmphasisCloseStar)
		case '_':
			stop, res = r.emphasis('_', token.EmphasisOpenUnderscore, token.EmphasisCloseUnderscore)
		case '~':
			stop, res = r.tilde()
		case '^':
			stop, res = r.caret()
		case '\'':
			stop, res = r.quote('\'', token.SingleQuoteOpen, token.SingleQuoteClose)
		case '"':
			stop, res = r.quote('"', token.DoubleQuoteOpen, token.DoubleQuoteClose)
		case '[':
			r.bracket(false)
		case '!':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '[' {
				r.bracket(true)
			} else {
				r.literal(1)
			}
		case '@', '-':
			r.citation(c)
		case '{':
			r.brace()
		default:
			r.literal(1)
		}
		if stop {
			return r.nodes, res
		}
	}
	r.flush(p.pos)
	return r.nodes, closeRes{ok: r.s.open()}
}

// newline emits a soft break, or a hard break when the line ends with
// two or more spaces.  Trailing spaces never reach the text node.
func (r *run) newline() {
	p := r.p
	if p.noSoftBreak {
		r.literal(1)
		return
	}
	end := p.pos
	hard := false
	if r.textStart >= 0 {
		e := end
		for e > r.textStart && p.src[e-1] == ' ' {
			e--
		}
		hard = end-e >= 2
		end = e
	}
	r.flush(end)
	k := cst.KindSoftBreak
	if hard {
		k = cst.KindHardBreak
	}
	r.nodes = append(r.nodes, &cst.Node{
		Kind: k,
		Span: cst.Span{Start: p.pos, End: p.pos + 1},
		Src:  p.src,
	})
	p.pos++
}

func (r *run) escape() {
	p := r.p
	if p.pos+1 >= len(p.src) {
		r.literal(1)
		return
	}
	next := p.src[p.pos+1]
	switch {
	case next == '\n':
		r.flush(p.pos)
		r.nodes = append(r.nodes, &cst.Node{
			Kind: cst.KindHardBreak,
			Span: cst.Span{Start: p.pos, End: p.pos + 2},
			Src:  p.src,
		})
		p.pos += 2
	case isInlinePunct(next):
		r.emit(&cst.Node{
			Kind: cst.KindEscape,
			Span: cst.Span{Start: p.pos, End: p.pos + 2},
			Src:  p.src,
		})
		p.pos += 2
	default:
		r.literal(1)
	}
}

// leafSpan parses a code or math span.  The scanner's forward probe
// guarantees an exact-length closing run exists whenever it answers
// with the open kind; without one the run comes back as UnclosedSpan
// and stays literal.
func (r *run) leafSpan(delim byte, kind cst.Kind, openK, closeK token.Kind) {
	p := r.p
	start := p.pos
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], p.lastBits().With(openK, token.UnclosedSpan))
	if !ok {
		p.restore(snap)
		r.literal(1)
		return
	}
	if k == token.UnclosedSpan {
		r.literal(n)
		return
	}
	delimLen := n
	openSpan := cst.Span{Start: start, End: start + n}
	p.pos += n
	contentStart := p.pos
	for p.pos < len(p.src) {
		if p.src[p.pos] != delim {
			p.pos++
			continue
		}
		cs := p.save()
		k2, n2, ok2 := p.sc.Scan(p.src[p.pos:], token.NewSet(closeK))
		if !ok2 || k2 != closeK {
			// A run of a different length is span content.
			p.restore(cs)
			p.pos += runLen(p.src[p.pos:], delim)
			continue
		}
		contentEnd := p.pos
		closeSpan := cst.Span{Start: p.pos, End: p.pos + n2}
		p.pos += n2
		delimKind, contentKind := cst.KindCodeSpanDelimiter, cst.KindCodeContent
		if kind == cst.KindMathSpan {
			delimKind, contentKind = cst.KindMathDelimiter, cst.KindMathContent
		}
		n := &cst.Node{
			Kind: kind,
			Span: cst.Span{Start: start, End: p.pos},
			Src:  p.src,
			N:    delimLen,
		}
		if kind == cst.KindMathSpan && delimLen >= 2 {
			n.Flags |= cst.FlagDisplayMath
		}
		n.Append(&cst.Node{Kind: delimKind, Span: openSpan, Src: p.src})
		n.Append(&cst.Node{Kind: contentKind, Span: cst.Span{Start: contentStart, End: contentEnd}, Src: p.src})
		n.Append(&cst.Node{Kind: delimKind, Span: closeSpan, Src: p.src})
		r.emit(n)
		return
	}
	if debug.Parse() {
		debug.Logf("inline: leaf span probe disagreed at %d", start)
	}
	p.restore(snap)
	r.literal(delimLen)
}

// emphasis handles one delimiter character.  The scanner sees both
// kinds whenever the enclosing sequence accepts the close, so its
// run decision applies: closing wins when both are legal.  Opening is
// speculative: if the nested parse cannot close, everything rolls
// back through the snapshot and the character stays literal.
func (r *run) emphasis(delim byte, openK, closeK token.Kind) (bool, closeRes) {
	p := r.p
	start := p.pos
	valid := p.lastBits().With(openK)
	if r.s.closeValid.Has(closeK) {
		valid = valid.With(closeK)
	}
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], valid)
	if !ok {
		r.literal(1)
		return false, closeRes{}
	}
	if k == closeK {
		r.flush(start)
		sp := cst.Span{Start: start, End: start + n}
		p.pos += n
		return true, closeRes{ok: true, kind: closeK, span: sp}
	}
	if k != openK {
		r.literal(1)
		return false, closeRes{}
	}
	openSpan := cst.Span{Start: start, End: start + n}
	p.pos += n
	if node, ok2 := p.emphasisRest(delim, openK, closeK, openSpan); ok2 {
		r.emit(node)
		return false, closeRes{}
	}
	p.restore(snap)
	r.literal(1)
	return false, closeRes{}
}

func (p *inlineParser) emphasisRest(delim byte, openK, closeK token.Kind, openSpan cst.Span) (*cst.Node, bool) {
	delims := []cst.Span{openSpan}
	kind := cst.KindEmphasis
	strong := false
	if p.pos < len(p.src) && p.src[p.pos] == delim {
		snap := p.save()
		if k, n, ok := p.sc.Scan(p.src[p.pos:], p.lastBits().With(openK)); ok && k == openK {
			delims = append(delims, cst.Span{Start: p.pos, End: p.pos + n})
			p.pos += n
			strong = true
			kind = cst.KindStrongEmphasis
		} else {
			p.restore(snap)
		}
	}
	content, res := p.parseInlines(seq{closeValid: token.NewSet(closeK)})
	if !res.ok {
		return nil, false
	}
	closes := []cst.Span{res.span}
	if strong {
		if p.pos >= len(p.src) || p.src[p.pos] != delim {
			return nil, false
		}
		k, n, ok := p.sc.Scan(p.src[p.pos:], p.lastBits().With(closeK))
		if !ok || k != closeK {
			return nil, false
		}
		closes = append(closes, cst.Span{Start: p.pos, End: p.pos + n})
		p.pos += n
	}
	node := &cst.Node{
		Kind: kind,
		Span: cst.Span{Start: openSpan.Start, End: closes[len(closes)-1].End},
		Src:  p.src,
	}
	for _, d := range delims {
		node.Append(&cst.Node{Kind: cst.KindEmphasisDelimiter, Span: d, Src: p.src})
	}
	for _, c := range content {
		node.Append(c)
	}
	for _, c := range closes {
		node.Append(&cst.Node{Kind: cst.KindEmphasisDelimiter, Span: c, Src: p.src})
	}
	return node, true
}

// tilde dispatches `~~` to strikeout and `~` to subscript.
func (r *run) tilde() (bool, closeRes) {
	p := r.p
	if p.pos+1 < len(p.src) && p.src[p.pos+1] == '~' {
		return r.spanPair(cst.KindStrikeout, token.StrikeoutOpen, token.StrikeoutClose, 2, false)
	}
	return r.spanPair(cst.KindSubscript, token.SubscriptOpen, token.SubscriptClose, 1, true)
}

func (r *run) caret() (bool, closeRes) {
	p := r.p
	if p.pos+1 < len(p.src) && p.src[p.pos+1] == '[' {
		r.inlineNote()
		return false, closeRes{}
	}
	return r.spanPair(cst.KindSuperscript, token.SuperscriptOpen, token.SuperscriptClose, 1, true)
}

// spanPair parses the toggle-delimited spans: strikeout, superscript,
// subscript.  The scanner prefers the close kind whenever the sequence
// accepts it.
func (r *run) spanPair(kind cst.Kind, openK, closeK token.Kind, width int, noSpace bool) (bool, closeRes) {
	p := r.p
	start := p.pos
	valid := p.lastBits().With(openK)
	if r.s.closeValid.Has(closeK) {
		valid = valid.With(closeK)
	}
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], valid)
	if !ok {
		r.literal(width)
		return false, closeRes{}
	}
	if k == closeK {
		r.flush(start)
		sp := cst.Span{Start: start, End: start + n}
		p.pos += n
		return true, closeRes{ok: true, kind: closeK, span: sp}
	}
	openSpan := cst.Span{Start: start, End: start + n}
	p.pos += n
	content, res := p.parseInlines(seq{closeValid: token.NewSet(closeK), noSpace: noSpace})
	if !res.ok {
		p.restore(snap)
		r.literal(width)
		return false, closeRes{}
	}
	node := &cst.Node{
		Kind: kind,
		Span: cst.Span{Start: start, End: res.span.End},
		Src:  p.src,
	}
	node.Append(&cst.Node{Kind: cst.KindEmphasisDelimiter, Span: openSpan, Src: p.src})
	for _, c := range content {
		node.Append(c)
	}
	node.Append(&cst.Node{Kind: cst.KindEmphasisDelimiter, Span: res.span, Src: p.src})
	r.emit(node)
	return false, closeRes{}
}

func (r *run) quote(c byte, openK, closeK token.Kind) (bool, closeRes) {
	p := r.p
	start := p.pos
	valid := p.lastBits().With(openK)
	if r.s.closeValid.Has(closeK) {
		valid = valid.With(closeK)
	}
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], valid)
	if !ok {
		r.literal(1)
		return false, closeRes{}
	}
	if k == closeK {
		r.flush(start)
		sp := cst.Span{Start: start, End: start + n}
		p.pos += n
		return true, closeRes{ok: true, kind: closeK, span: sp}
	}
	p.pos += n
	content, res := p.parseInlines(seq{closeValid: token.NewSet(closeK)})
	if !res.ok {
		p.restore(snap)
		r.literal(1)
		return false, closeRes{}
	}
	node := &cst.Node{
		Kind: cst.KindQuoted,
		Span: cst.Span{Start: start, End: res.span.End},
		Src:  p.src,
	}
	if c == '"' {
		node.Flags |= cst.FlagDoubleQuote
	}
	for _, ch := range content {
		node.Append(ch)
	}
	r.emit(node)
	return false, closeRes{}
}

func (r *run) inlineNote() {
	p := r.p
	start := p.pos
	snap := p.save()
	p.pos += 2
	content, res := p.parseInlines(seq{closeByte: ']'})
	if !res.ok {
		p.restore(snap)
		p.warnAt(start, "unterminated inline note")
		r.literal(1)
		return
	}
	node := &cst.Node{
		Kind: cst.KindInlineNote,
		Span: cst.Span{Start: start, End: p.pos},
		Src:  p.src,
	}
	for _, c := range content {
		node.Append(c)
	}
	r.emit(node)
}

// bracket parses [^ref], [text](dest "title"), [text]{attrs} and plain
// [text] groups.  With image set the caller saw a leading '!'.
func (r *run) bracket(image bool) {
	p := r.p
	start := p.pos
	if image {
		p.pos++ // '!'
	}
	if !image && p.pos+1 < len(p.src) && p.src[p.pos+1] == '^' {
		if r.noteReference(start) {
			return
		}
	}
	snap := p.save()
	if image {
		snap.pos = start
	}
	bStart := p.pos
	p.pos++ // '['
	content, res := p.parseInlines(seq{closeByte: ']'})
	if !res.ok {
		p.restore(snap)
		r.literal(1)
		return
	}
	text := &cst.Node{
		Kind: cst.KindLinkText,
		Span: cst.Span{Start: bStart, End: res.span.End},
		Src:  p.src,
	}
	for _, c := range content {
		text.Append(c)
	}
	if p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			if node, ok := p.linkTarget(start, text, image); ok {
				r.emit(node)
				return
			}
			// Keep the diagnostics the failed target parse produced;
			// the construct itself degrades to literal text.
			kept := append([]*Diagnostic(nil), p.diags[snap.diags:]...)
			p.restore(snap)
			p.diags = append(p.diags, kept...)
			r.literal(1)
			return
		case '{':
			if attr, end, ok := parseAttrAt(p.src, p.pos); ok {
				p.pos = end
				node := &cst.Node{
					Kind: cst.KindBracketedSpan,
					Span: cst.Span{Start: start, End: end},
					Src:  p.src,
				}
				node.Append(text)
				node.Append(attr)
				r.emit(node)
				return
			}
		}
	}
	if image {
		// ![text] without a target is not an image.
		p.restore(snap)
		r.literal(1)
		return
	}
	node := &cst.Node{
		Kind: cst.KindBracketedSpan,
		Span: cst.Span{Start: start, End: res.span.End},
		Src:  p.src,
	}
	node.Append(text)
	r.emit(node)
}

func (r *run) noteReference(start int) bool {
	p := r.p
	j := p.pos + 2
	for j < len(p.src) && p.src[j] != ']' && p.src[j] != '\n' && p.src[j] != ' ' && p.src[j] != '[' {
		j++
	}
	if j >= len(p.src) || p.src[j] != ']' || j == p.pos+2 {
		return false
	}
	node := &cst.Node{
		Kind: cst.KindNoteReference,
		Span: cst.Span{Start: start, End: j + 1},
		Src:  p.src,
	}
	node.Append(&cst.Node{Kind: cst.KindNoteLabel, Span: cst.Span{Start: p.pos + 2, End: j}, Src: p.src})
	r.emit(node)
	p.pos = j + 1
	return true
}

// linkTarget parses "(dest \"title\")" after link text, plus an
// optional trailing attribute group.
func (p *inlineParser) linkTarget(start int, text *cst.Node, image bool) (*cst.Node, bool) {
	open := p.pos
	p.pos++ // '('
	p.skipLinkSpace()
	var dest cst.Span
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		d := p.pos + 1
		for p.pos = d; p.pos < len(p.src) && p.src[p.pos] != '>' && p.src[p.pos] != '\n'; p.pos++ {
		}
		if p.pos >= len(p.src) || p.src[p.pos] != '>' {
			p.errorAt(open, "unterminated link destination")
			return nil, false
		}
		dest = cst.Span{Start: d, End: p.pos}
		p.pos++
	} else {
		d := p.pos
		for p.pos < len(p.src) && !isInlineWS(p.src[p.pos]) && p.src[p.pos] != ')' {
			p.pos++
		}
		dest = cst.Span{Start: d, End: p.pos}
	}
	p.skipLinkSpace()
	var title *cst.Span
	if p.pos < len(p.src) && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
		q := p.src[p.pos]
		t := p.pos + 1
		for p.pos = t; p.pos < len(p.src) && p.src[p.pos] != q && p.src[p.pos] != '\n'; p.pos++ {
		}
		if p.pos >= len(p.src) || p.src[p.pos] != q {
			p.errorAt(t-1, "unterminated link title")
			return nil, false
		}
		title = &cst.Span{Start: t, End: p.pos}
		p.pos++
		p.skipLinkSpace()
	}
	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		p.errorAt(open, "expected ')' to close link")
		return nil, false
	}
	p.pos++
	node := &cst.Node{
		Kind: cst.KindInlineLink,
		Src:  p.src,
	}
	if image {
		node.Flags |= cst.FlagImage
	}
	node.Append(text)
	node.Append(&cst.Node{Kind: cst.KindLinkDestination, Span: dest, Src: p.src})
	if title != nil {
		node.Append(&cst.Node{Kind: cst.KindLinkTitle, Span: *title, Src: p.src})
	}
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		if attr, end, ok := parseAttrAt(p.src, p.pos); ok {
			node.Append(attr)
			p.pos = end
		}
	}
	node.Span = cst.Span{Start: start, End: p.pos}
	return node, true
}

func (p *inlineParser) skipLinkSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// citation parses @key, @{key}, -@key and -@{key}.
func (r *run) citation(c byte) {
	p := r.p
	start := p.pos
	var valid token.Set
	var flag cst.Flags
	if c == '@' {
		valid = token.NewSet(token.CiteAuthorInText, token.CiteAuthorInTextWithBracket)
		flag = cst.FlagAuthorInText
	} else {
		valid = token.NewSet(token.CiteSuppressAuthor, token.CiteSuppressAuthorWithBracket)
		flag = cst.FlagSuppressAuthor
	}
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], valid)
	if !ok {
		r.literal(1)
		return
	}
	p.pos += n
	var id cst.Span
	switch k {
	case token.CiteAuthorInTextWithBracket, token.CiteSuppressAuthorWithBracket:
		j := p.pos
		for j < len(p.src) && p.src[j] != '}' && p.src[j] != '\n' {
			j++
		}
		if j >= len(p.src) || p.src[j] != '}' || j == p.pos {
			p.restore(snap)
			p.warnAt(start, "unterminated citation key")
			r.literal(1)
			return
		}
		id = cst.Span{Start: p.pos, End: j}
		p.pos = j + 1
	default:
		idLen := citeKeyLen(p.src[p.pos:])
		if idLen == 0 {
			p.restore(snap)
			r.literal(1)
			return
		}
		id = cst.Span{Start: p.pos, End: p.pos + idLen}
		p.pos += idLen
	}
	node := &cst.Node{
		Kind:  cst.KindCitation,
		Span:  cst.Span{Start: start, End: p.pos},
		Src:   p.src,
		Flags: flag,
	}
	node.Append(&cst.Node{Kind: cst.KindCitationId, Span: id, Src: p.src})
	r.emit(node)
}

// citeKeyLen measures a citation key: a letter, digit or underscore
// first, then word characters, with internal punctuation allowed only
// when followed by a word character.
func citeKeyLen(d []byte) int {
	isWord := func(c byte) bool {
		return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
	}
	if len(d) == 0 || !isWord(d[0]) {
		return 0
	}
	n := 1
	for n < len(d) {
		c := d[n]
		if isWord(c) {
			n++
			continue
		}
		switch c {
		case ':', '.', '#', '$', '%', '&', '-', '+', '?', '<', '>', '~', '/':
			if n+1 < len(d) && isWord(d[n+1]) {
				n += 2
				continue
			}
		}
		break
	}
	return n
}

// brace tries a shortcode, then an inline attribute group.
func (r *run) brace() {
	p := r.p
	start := p.pos
	snap := p.save()
	k, n, ok := p.sc.Scan(p.src[p.pos:], token.NewSet(token.ShortcodeOpen, token.ShortcodeOpenEscaped))
	if ok {
		escaped := k == token.ShortcodeOpenEscaped
		openSpan := cst.Span{Start: start, End: start + n}
		p.pos += n
		if node, ok2 := p.shortcodeRest(escaped, openSpan); ok2 {
			r.emit(node)
			return
		}
		p.restore(snap)
		p.errorAt(start, "unclosed shortcode")
		r.literal(1)
		return
	}
	if attr, end, ok2 := parseAttrAt(p.src, p.pos); ok2 {
		r.emit(attr)
		p.pos = end
		return
	}
	r.literal(1)
}

// shortcodeRest parses the body after an open delimiter: a name, then
// arguments, then the matching close.  Everything lives on one line.
func (p *inlineParser) shortcodeRest(escaped bool, openSpan cst.Span) (*cst.Node, bool) {
	node := &cst.Node{Kind: cst.KindShortcode, Src: p.src}
	if escaped {
		node.Flags |= cst.FlagEscaped
	}
	closeK := token.ShortcodeClose
	if escaped {
		closeK = token.ShortcodeCloseEscaped
	}
	first := true
	for {
		p.skipLinkSpace()
		if p.pos >= len(p.src) || p.src[p.pos] == '\n' {
			return nil, false
		}
		if p.src[p.pos] == '>' {
			if k, n, ok := p.sc.Scan(p.src[p.pos:], token.NewSet(closeK)); ok && k == closeK {
				p.pos += n
				node.Span = cst.Span{Start: openSpan.Start, End: p.pos}
				return node, true
			}
		}
		arg, ok := p.shortcodeArg()
		if !ok {
			return nil, false
		}
		if first {
			if arg.Kind == cst.KindShortcodeNakedString {
				arg.Kind = cst.KindShortcodeName
			}
			first = false
		}
		node.Append(arg)
	}
}

func (p *inlineParser) shortcodeArg() (*cst.Node, bool) {
	start := p.pos
	c := p.src[p.pos]
	switch {
	case c == '"' || c == '\'':
		j := p.pos + 1
		for j < len(p.src) && p.src[j] != c && p.src[j] != '\n' {
			j++
		}
		if j >= len(p.src) || p.src[j] != c {
			return nil, false
		}
		p.pos = j + 1
		return &cst.Node{
			Kind: cst.KindShortcodeString,
			Span: cst.Span{Start: start, End: j + 1},
			Src:  p.src,
		}, true
	case c == '{':
		k, n, ok := p.sc.Scan(p.src[p.pos:], token.NewSet(token.ShortcodeOpen))
		if !ok || k != token.ShortcodeOpen {
			return nil, false
		}
		openSpan := cst.Span{Start: start, End: start + n}
		p.pos += n
		return p.shortcodeRest(false, openSpan)
	}
	j := p.pos
	for j < len(p.src) {
		b := p.src[j]
		if b == ' ' || b == '\t' || b == '\n' || b == '=' {
			break
		}
		if b == '>' && j+1 < len(p.src) && p.src[j+1] == '}' {
			break
		}
		j++
	}
	if j == p.pos {
		return nil, false
	}
	word := cst.Span{Start: p.pos, End: j}
	p.pos = j
	if p.pos < len(p.src) && p.src[p.pos] == '=' {
		p.pos++
		if p.pos >= len(p.src) || p.src[p.pos] == ' ' || p.src[p.pos] == '\n' {
			return nil, false
		}
		val, ok := p.shortcodeArg()
		if !ok || val.Kind == cst.KindShortcodeKeyword {
			return nil, false
		}
		kw := &cst.Node{
			Kind: cst.KindShortcodeKeyword,
			Span: cst.Span{Start: start, End: val.Span.End},
			Src:  p.src,
		}
		kw.Append(&cst.Node{Kind: cst.KindShortcodeName, Span: word, Src: p.src})
		kw.Append(val)
		return kw, true
	}
	return &cst.Node{
		Kind: classifyShortcodeWord(p.src[word.Start:word.End]),
		Span: word,
		Src:  p.src,
	}, true
}

func classifyShortcodeWord(w []byte) cst.Kind {
	switch string(w) {
	case "true", "false":
		return cst.KindShortcodeBoolean
	}
	if isShortcodeNumber(w) {
		return cst.KindShortcodeNumber
	}
	return cst.KindShortcodeNakedString
}

func isShortcodeNumber(w []byte) bool {
	i := 0
	if i < len(w) && (w[i] == '-' || w[i] == '+') {
		i++
	}
	digits := 0
	for i < len(w) && w[i] >= '0' && w[i] <= '9' {
		i++
		digits++
	}
	if i < len(w) && w[i] == '.' {
		i++
		for i < len(w) && w[i] >= '0' && w[i] <= '9' {
			i++
			digits++
		}
	}
	return digits > 0 && i == len(w)
}
