package parse

import (
	"bytes"

	"github.com/signadot/qmd-format/go-qmd/cst"
	"github.com/signadot/qmd-format/go-qmd/debug"
	"github.com/signadot/qmd-format/go-qmd/token"
)

// blockParser is the line-oriented first stage.  It carves the source
// into block structure and leaves inline content as KindInline leaves
// whose Segments record which line slices the second stage should
// read.
type blockParser struct {
	src      []byte
	pd       *token.PosDoc
	diags    []*Diagnostic
	depth    int
	maxDepth int
	tooDeep  bool
}

func (p *blockParser) parseDocument() *cst.Node {
	doc := &cst.Node{
		Kind: cst.KindDocument,
		Span: cst.Span{Start: 0, End: len(p.src)},
		Src:  p.src,
	}
	p.parseBlocks(doc, splitLines(p.src))
	return doc
}

// splitLines returns one span per source line, newline excluded.
func splitLines(src []byte) []cst.Span {
	var lines []cst.Span
	start := 0
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, cst.Span{Start: start, End: i})
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, cst.Span{Start: start, End: len(src)})
	}
	return lines
}

func (p *blockParser) parseBlocks(parent *cst.Node, lines []cst.Span) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.tooDeep = true
		return
	}
	i := 0
	for i < len(lines) && !p.tooDeep {
		ln := lines[i]
		t := p.src[ln.Start:ln.End]
		if isBlankLine(t) {
			i++
			continue
		}
		ind, off := lineIndent(t)
		rest := t[off:]
		if debug.Parse() {
			debug.Logf("block: line %d indent %d %q", i, ind, clip(rest, 32))
		}
		switch {
		case ind < 4 && p.isMetadataOpen(lines, i, ind, rest):
			i = p.parseMetadata(parent, lines, i)
		case ind >= 4:
			i = p.parseIndentedCode(parent, lines, i)
		case isFenceLine(rest, '`') || isFenceLine(rest, '~'):
			i = p.parseFencedCode(parent, lines, i, ln, off, rest)
		case isDivFence(rest):
			i = p.parseDiv(parent, lines, i, ln, off, rest)
		case isAtxHeading(rest):
			p.parseHeading(parent, ln, off, rest)
			i++
		case rest[0] == '>':
			i = p.parseBlockQuote(parent, lines, i)
		case isThematicBreak(rest):
			parent.Append(&cst.Node{Kind: cst.KindThematicBreak, Span: ln, Src: p.src})
			i++
		case isNoteDefOpen(rest):
			i = p.parseNoteDef(parent, lines, i, ln, off, rest)
		case isListMarkerLine(rest):
			i = p.parseList(parent, lines, i)
		case rest[0] == '|' && i+1 < len(lines) && isDelimRow(p.lineRest(lines[i+1])):
			i = p.parseTable(parent, lines, i)
		default:
			i = p.parseParagraph(parent, lines, i)
		}
	}
}

func (p *blockParser) lineRest(ln cst.Span) []byte {
	t := p.src[ln.Start:ln.End]
	_, off := lineIndent(t)
	return t[off:]
}

func isBlankLine(t []byte) bool {
	for _, c := range t {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

// lineIndent returns the indentation width in columns (tab stop 4) and
// the byte offset of the first non-space character.
func lineIndent(t []byte) (cols, off int) {
	for off < len(t) {
		switch t[off] {
		case ' ':
			cols++
		case '\t':
			cols += 4 - cols%4
		default:
			return cols, off
		}
		off++
	}
	return cols, off
}

func clip(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Metadata blocks.
//
// A line of exactly "---" at the start of the document or after a
// blank line opens a metadata block when a closing "---" or "..."
// line follows.  The content between the delimiters is raw YAML; the
// builder decodes it.

func (p *blockParser) isMetadataOpen(lines []cst.Span, i, ind int, rest []byte) bool {
	if ind != 0 || !bytes.Equal(bytes.TrimRight(rest, " \t"), []byte("---")) {
		return false
	}
	if i > 0 && !isBlankLine(p.src[lines[i-1].Start:lines[i-1].End]) {
		return false
	}
	return p.metadataClose(lines, i) >= 0
}

func (p *blockParser) metadataClose(lines []cst.Span, i int) int {
	for j := i + 1; j < len(lines); j++ {
		t := bytes.TrimRight(p.src[lines[j].Start:lines[j].End], " \t")
		if bytes.Equal(t, []byte("---")) || bytes.Equal(t, []byte("...")) {
			return j
		}
	}
	return -1
}

func (p *blockParser) parseMetadata(parent *cst.Node, lines []cst.Span, i int) int {
	j := p.metadataClose(lines, i)
	n := &cst.Node{
		Kind: cst.KindMetadataBlock,
		Span: cst.Span{Start: lines[i].Start, End: lines[j].End},
		Src:  p.src,
	}
	content := cst.Span{Start: lines[i].End, End: lines[i].End}
	if j > i+1 {
		content = cst.Span{Start: lines[i+1].Start, End: lines[j-1].End}
	}
	n.Append(&cst.Node{Kind: cst.KindCodeText, Span: content, Src: p.src})
	parent.Append(n)
	return j + 1
}

// Code blocks.

func isFenceLine(rest []byte, c byte) bool {
	return runLen(rest, c) >= 3
}

func runLen(b []byte, c byte) int {
	n := 0
	for n < len(b) && b[n] == c {
		n++
	}
	return n
}

func (p *blockParser) parseFencedCode(parent *cst.Node, lines []cst.Span, i int, ln cst.Span, off int, rest []byte) int {
	c := rest[0]
	openLen := runLen(rest, c)
	info := bytes.TrimSpace(rest[openLen:])
	n := &cst.Node{Kind: cst.KindFencedCodeBlock, Src: p.src, N: off}
	if len(info) > 0 {
		infoStart := ln.Start + off + openLen + indexIn(rest[openLen:], info)
		if info[0] == '{' {
			if attr, _, ok := parseAttrAt(p.src, infoStart); ok {
				n.Append(attr)
			} else {
				p.errorAt(infoStart, "malformed code block attribute")
				n.Append(&cst.Node{Kind: cst.KindInfoString, Span: cst.Span{Start: infoStart, End: infoStart + len(info)}, Src: p.src})
			}
		} else {
			n.Append(&cst.Node{Kind: cst.KindInfoString, Span: cst.Span{Start: infoStart, End: infoStart + len(info)}, Src: p.src})
		}
	}
	j := i + 1
	closed := false
	for ; j < len(lines); j++ {
		r := p.lineRest(lines[j])
		if runLen(r, c) >= openLen && isBlankLine(r[runLen(r, c):]) {
			ind, _ := lineIndent(p.src[lines[j].Start:lines[j].End])
			if ind < 4 {
				closed = true
				break
			}
		}
	}
	content := cst.Span{Start: ln.End, End: ln.End}
	last := j - 1
	if last >= i+1 {
		content = cst.Span{Start: lines[i+1].Start, End: lines[last].End}
	}
	n.Append(&cst.Node{Kind: cst.KindCodeText, Span: content, Src: p.src, N: off})
	end := j
	if closed {
		end = j + 1
		n.Span = cst.Span{Start: ln.Start, End: lines[j].End}
	} else {
		p.warnAt(ln.Start, "unclosed code fence")
		n.Span = cst.Span{Start: ln.Start, End: lines[len(lines)-1].End}
	}
	parent.Append(n)
	return end
}

func indexIn(haystack, needle []byte) int {
	return bytes.Index(haystack, needle)
}

func (p *blockParser) parseIndentedCode(parent *cst.Node, lines []cst.Span, i int) int {
	j := i
	last := i
	for j < len(lines) {
		t := p.src[lines[j].Start:lines[j].End]
		if isBlankLine(t) {
			j++
			continue
		}
		ind, _ := lineIndent(t)
		if ind < 4 {
			break
		}
		last = j
		j++
	}
	n := &cst.Node{
		Kind: cst.KindFencedCodeBlock,
		Span: cst.Span{Start: lines[i].Start, End: lines[last].End},
		Src:  p.src,
		N:    4,
	}
	n.Append(&cst.Node{
		Kind: cst.KindCodeText,
		Span: cst.Span{Start: lines[i].Start, End: lines[last].End},
		Src:  p.src,
		N:    4,
	})
	parent.Append(n)
	return last + 1
}

// Divs.

func isDivFence(rest []byte) bool {
	return runLen(rest, ':') >= 3
}

func (p *blockParser) parseDiv(parent *cst.Node, lines []cst.Span, i int, ln cst.Span, off int, rest []byte) int {
	openLen := runLen(rest, ':')
	label := bytes.TrimSpace(rest[openLen:])
	n := &cst.Node{Kind: cst.KindFencedDiv, Src: p.src}
	if len(label) > 0 {
		labelStart := ln.Start + off + openLen + indexIn(rest[openLen:], label)
		if label[0] == '{' {
			if attr, _, ok := parseAttrAt(p.src, labelStart); ok {
				n.Append(attr)
			} else {
				p.errorAt(labelStart, "malformed div attribute")
			}
		} else {
			// Bare word after the fence is class shorthand.
			attr := &cst.Node{Kind: cst.KindAttribute, Span: cst.Span{Start: labelStart, End: labelStart + len(label)}, Src: p.src}
			attr.Append(&cst.Node{Kind: cst.KindAttrClass, Span: cst.Span{Start: labelStart, End: labelStart + len(label)}, Src: p.src})
			n.Append(attr)
		}
	}
	j := i + 1
	depth := 1
	closed := false
	for ; j < len(lines); j++ {
		r := p.lineRest(lines[j])
		k := runLen(r, ':')
		if k >= 3 {
			if isBlankLine(r[k:]) {
				depth--
				if depth == 0 {
					closed = true
					break
				}
			} else {
				depth++
			}
		}
	}
	end := j
	if closed {
		n.Span = cst.Span{Start: ln.Start, End: lines[j].End}
		end = j + 1
	} else {
		p.errorAt(ln.Start, "unclosed div")
		n.Span = cst.Span{Start: ln.Start, End: lines[len(lines)-1].End}
	}
	p.parseBlocks(n, lines[i+1:j])
	parent.Append(n)
	return end
}

// Headings.

func isAtxHeading(rest []byte) bool {
	n := runLen(rest, '#')
	if n < 1 || n > 6 {
		return false
	}
	return n == len(rest) || rest[n] == ' ' || rest[n] == '\t'
}

func (p *blockParser) parseHeading(parent *cst.Node, ln cst.Span, off int, rest []byte) {
	level := runLen(rest, '#')
	n := &cst.Node{Kind: cst.KindAtxHeading, Span: ln, Src: p.src, N: level}
	contentStart := ln.Start + off + level
	for contentStart < ln.End && (p.src[contentStart] == ' ' || p.src[contentStart] == '\t') {
		contentStart++
	}
	contentEnd := ln.End
	var attr *cst.Node
	if k := bytes.LastIndexByte(p.src[contentStart:ln.End], '{'); k >= 0 {
		if a, end, ok := parseAttrAt(p.src, contentStart+k); ok && trailingBlank(p.src[end:ln.End]) {
			attr = a
			contentEnd = contentStart + k
		}
	}
	for contentEnd > contentStart && (p.src[contentEnd-1] == ' ' || p.src[contentEnd-1] == '\t') {
		contentEnd--
	}
	// Trailing run of #s preceded by a space closes the heading.
	if e := contentEnd; e > contentStart {
		j := e
		for j > contentStart && p.src[j-1] == '#' {
			j--
		}
		if j < e && (j == contentStart || p.src[j-1] == ' ') {
			contentEnd = j
			for contentEnd > contentStart && p.src[contentEnd-1] == ' ' {
				contentEnd--
			}
		}
	}
	content := cst.Span{Start: contentStart, End: contentEnd}
	n.Append(&cst.Node{
		Kind:     cst.KindInline,
		Field:    "content",
		Span:     content,
		Src:      p.src,
		Flags:    cst.FlagNoSoftBreak,
		Segments: []cst.Span{content},
	})
	if attr != nil {
		n.Append(attr)
	}
	parent.Append(n)
}

func trailingBlank(b []byte) bool {
	return isBlankLine(b)
}

// Block quotes.  Every line of the quote must carry the '>' marker;
// there is no lazy continuation.

func (p *blockParser) parseBlockQuote(parent *cst.Node, lines []cst.Span, i int) int {
	var inner []cst.Span
	j := i
	for ; j < len(lines); j++ {
		t := p.src[lines[j].Start:lines[j].End]
		ind, off := lineIndent(t)
		if ind >= 4 || off >= len(t) || t[off] != '>' {
			break
		}
		s := lines[j].Start + off + 1
		if s < lines[j].End && p.src[s] == ' ' {
			s++
		}
		inner = append(inner, cst.Span{Start: s, End: lines[j].End})
	}
	n := &cst.Node{
		Kind: cst.KindBlockQuote,
		Span: cst.Span{Start: lines[i].Start, End: lines[j-1].End},
		Src:  p.src,
	}
	p.parseBlocks(n, inner)
	parent.Append(n)
	return j
}

// Thematic breaks.

func isThematicBreak(rest []byte) bool {
	c := rest[0]
	if c != '-' && c != '_' && c != '*' {
		return false
	}
	n := 0
	for _, b := range rest {
		switch b {
		case c:
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	return n >= 3
}

// Note definitions: [^label]: content.

func isNoteDefOpen(rest []byte) bool {
	if len(rest) < 5 || rest[0] != '[' || rest[1] != '^' {
		return false
	}
	e := bytes.IndexByte(rest, ']')
	return e > 2 && e+1 < len(rest) && rest[e+1] == ':'
}

func (p *blockParser) parseNoteDef(parent *cst.Node, lines []cst.Span, i int, ln cst.Span, off int, rest []byte) int {
	e := bytes.IndexByte(rest, ']')
	label := cst.Span{Start: ln.Start + off + 2, End: ln.Start + off + e}
	first := ln.Start + off + e + 2
	for first < ln.End && p.src[first] == ' ' {
		first++
	}
	inner := []cst.Span{{Start: first, End: ln.End}}
	j := i + 1
	last := i
	for ; j < len(lines); j++ {
		t := p.src[lines[j].Start:lines[j].End]
		if isBlankLine(t) {
			inner = append(inner, cst.Span{Start: lines[j].Start, End: lines[j].Start})
			continue
		}
		ind, _ := lineIndent(t)
		if ind < 4 {
			break
		}
		inner = append(inner, stripColumns(p.src, lines[j], 4))
		last = j
	}
	if last < i {
		last = i
	}
	// Drop trailing blanks collected past the last content line.
	for len(inner) > 1 && inner[len(inner)-1].Start == inner[len(inner)-1].End &&
		inner[len(inner)-1].Start > lines[last].End {
		inner = inner[:len(inner)-1]
	}
	n := &cst.Node{
		Kind: cst.KindNoteDefinition,
		Span: cst.Span{Start: ln.Start, End: lines[last].End},
		Src:  p.src,
	}
	n.Append(&cst.Node{Kind: cst.KindNoteLabel, Span: label, Src: p.src})
	p.parseBlocks(n, inner)
	parent.Append(n)
	return last + 1
}

// stripColumns advances a line span past up to cols columns of leading
// whitespace.
func stripColumns(src []byte, ln cst.Span, cols int) cst.Span {
	s := ln.Start
	for s < ln.End && cols > 0 {
		switch src[s] {
		case ' ':
			cols--
		case '\t':
			cols -= 4
		default:
			return cst.Span{Start: s, End: ln.End}
		}
		s++
	}
	return cst.Span{Start: s, End: ln.End}
}

// Lists.

type listMarker struct {
	ordered bool
	bullet  byte // bullet char, or ordered delimiter ('.' or ')')
	start   int  // first ordinal, ordered lists only
	width   int  // marker width in bytes, trailing space excluded
}

func parseListMarker(rest []byte) (listMarker, bool) {
	if len(rest) == 0 {
		return listMarker{}, false
	}
	c := rest[0]
	if c == '-' || c == '+' || c == '*' {
		if len(rest) > 1 && rest[1] != ' ' && rest[1] != '\t' {
			return listMarker{}, false
		}
		return listMarker{bullet: c, width: 1}, true
	}
	n := 0
	v := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		v = v*10 + int(rest[n]-'0')
		n++
	}
	if n == 0 || n > 9 || n >= len(rest) {
		return listMarker{}, false
	}
	if rest[n] != '.' && rest[n] != ')' {
		return listMarker{}, false
	}
	if n+1 < len(rest) && rest[n+1] != ' ' && rest[n+1] != '\t' {
		return listMarker{}, false
	}
	return listMarker{ordered: true, bullet: rest[n], start: v, width: n + 1}, true
}

func isListMarkerLine(rest []byte) bool {
	if isThematicBreak(rest) {
		return false
	}
	_, ok := parseListMarker(rest)
	return ok
}

func (p *blockParser) parseList(parent *cst.Node, lines []cst.Span, i int) int {
	first := p.lineRest(lines[i])
	m, _ := parseListMarker(first)
	list := &cst.Node{Kind: cst.KindList, Src: p.src}
	if m.ordered {
		list.Flags |= cst.FlagOrdered
		list.N = m.start
	}
	tight := true
	j := i
	lastEnd := lines[i].End
	for j < len(lines) {
		t := p.src[lines[j].Start:lines[j].End]
		if isBlankLine(t) {
			// Blank before another item or item continuation makes
			// the list loose; blank before anything else ends it.
			k := j
			for k < len(lines) && isBlankLine(p.src[lines[k].Start:lines[k].End]) {
				k++
			}
			if k >= len(lines) {
				break
			}
			ind, _ := lineIndent(p.src[lines[k].Start:lines[k].End])
			nm, ok := parseListMarker(p.lineRest(lines[k]))
			if ind < 4 && ok && nm.ordered == m.ordered && nm.bullet == m.bullet && !isThematicBreak(p.lineRest(lines[k])) {
				tight = false
				j = k
				continue
			}
			if ind >= m.width+1 {
				tight = false
				j = k
				continue
			}
			break
		}
		ind, off := lineIndent(t)
		rest := t[off:]
		if ind < 4 && isThematicBreak(rest) {
			break
		}
		nm, ok := parseListMarker(rest)
		if !(ind < 4 && ok && nm.ordered == m.ordered && nm.bullet == m.bullet) {
			break
		}
		contentCol := ind + nm.width + 1
		firstContent := lines[j].Start + off + nm.width
		for firstContent < lines[j].End && p.src[firstContent] == ' ' {
			firstContent++
		}
		inner := []cst.Span{{Start: firstContent, End: lines[j].End}}
		itemEnd := lines[j].End
		k := j + 1
		for ; k < len(lines); k++ {
			lt := p.src[lines[k].Start:lines[k].End]
			if isBlankLine(lt) {
				// Peek past the blanks; deeper content continues the
				// item and makes the list loose.
				q := k
				for q < len(lines) && isBlankLine(p.src[lines[q].Start:lines[q].End]) {
					q++
				}
				if q < len(lines) {
					qi, _ := lineIndent(p.src[lines[q].Start:lines[q].End])
					if qi >= contentCol {
						tight = false
						for ; k < q; k++ {
							inner = append(inner, cst.Span{Start: lines[k].Start, End: lines[k].Start})
						}
						k--
						continue
					}
				}
				break
			}
			li, _ := lineIndent(lt)
			if li < contentCol {
				break
			}
			inner = append(inner, stripColumns(p.src, lines[k], contentCol))
			itemEnd = lines[k].End
		}
		item := &cst.Node{
			Kind: cst.KindListItem,
			Span: cst.Span{Start: lines[j].Start, End: itemEnd},
			Src:  p.src,
		}
		p.parseBlocks(item, inner)
		list.Append(item)
		lastEnd = itemEnd
		j = k
	}
	if tight {
		list.Flags |= cst.FlagTight
	}
	list.Span = cst.Span{Start: lines[i].Start, End: lastEnd}
	parent.Append(list)
	return j
}

// Pipe tables.

func isDelimRow(rest []byte) bool {
	if len(rest) == 0 || rest[0] != '|' {
		return false
	}
	cells := 0
	for _, cell := range splitCells(rest) {
		c := bytes.TrimSpace(cell)
		if len(c) == 0 {
			return false
		}
		k := 0
		if c[0] == ':' {
			k++
		}
		d := 0
		for k < len(c) && c[k] == '-' {
			k++
			d++
		}
		if k < len(c) && c[k] == ':' {
			k++
		}
		if d == 0 || k != len(c) {
			return false
		}
		cells++
	}
	return cells > 0
}

// splitCells splits a pipe table row on unescaped '|', dropping the
// leading and trailing delimiters.
func splitCells(rest []byte) [][]byte {
	body := rest
	if len(body) > 0 && body[0] == '|' {
		body = body[1:]
	}
	body = bytes.TrimRight(body, " \t")
	if len(body) > 0 && body[len(body)-1] == '|' {
		body = body[:len(body)-1]
	}
	var cells [][]byte
	start := 0
	for i := 0; i < len(body); i++ {
		if body[i] == '|' && (i == 0 || body[i-1] != '\\') {
			cells = append(cells, body[start:i])
			start = i + 1
		}
	}
	cells = append(cells, body[start:])
	return cells
}

const (
	alignDefault = iota
	alignLeft
	alignRight
	alignCenter
)

func delimAlign(cell []byte) int {
	c := bytes.TrimSpace(cell)
	l := len(c) > 0 && c[0] == ':'
	r := len(c) > 0 && c[len(c)-1] == ':'
	switch {
	case l && r:
		return alignCenter
	case l:
		return alignLeft
	case r:
		return alignRight
	}
	return alignDefault
}

func (p *blockParser) parseTable(parent *cst.Node, lines []cst.Span, i int) int {
	tbl := &cst.Node{Kind: cst.KindPipeTable, Src: p.src}
	tbl.Append(p.parseTableRow(lines[i], "header"))

	delim := &cst.Node{Kind: cst.KindTableDelimRow, Span: lines[i+1], Src: p.src}
	rest := p.lineRest(lines[i+1])
	base := lines[i+1].End - len(rest)
	for _, cell := range splitCells(rest) {
		off := indexInBytes(rest, cell)
		delim.Append(&cst.Node{
			Kind: cst.KindTableCell,
			Span: cst.Span{Start: base + off, End: base + off + len(cell)},
			Src:  p.src,
			N:    delimAlign(cell),
		})
	}
	tbl.Append(delim)

	j := i + 2
	for ; j < len(lines); j++ {
		r := p.lineRest(lines[j])
		if len(r) == 0 || r[0] != '|' {
			break
		}
		tbl.Append(p.parseTableRow(lines[j], ""))
	}
	tbl.Span = cst.Span{Start: lines[i].Start, End: lines[j-1].End}
	parent.Append(tbl)
	return j
}

func indexInBytes(haystack, needle []byte) int {
	if len(needle) == 0 {
		return 0
	}
	return bytes.Index(haystack, needle)
}

func (p *blockParser) parseTableRow(ln cst.Span, field string) *cst.Node {
	row := &cst.Node{Kind: cst.KindTableRow, Field: field, Span: ln, Src: p.src}
	rest := p.lineRest(ln)
	base := ln.End - len(rest)
	pos := base
	if len(rest) > 0 && rest[0] == '|' {
		pos++
	}
	for _, cell := range splitCells(rest) {
		trimmed := bytes.TrimSpace(cell)
		start := pos + leadingSpace(cell)
		span := cst.Span{Start: start, End: start + len(trimmed)}
		cn := &cst.Node{Kind: cst.KindTableCell, Span: span, Src: p.src}
		cn.Append(&cst.Node{
			Kind:     cst.KindInline,
			Field:    "content",
			Span:     span,
			Src:      p.src,
			Flags:    cst.FlagNoSoftBreak,
			Segments: []cst.Span{span},
		})
		row.Append(cn)
		pos += len(cell) + 1
	}
	return row
}

func leadingSpace(b []byte) int {
	n := 0
	for n < len(b) && (b[n] == ' ' || b[n] == '\t') {
		n++
	}
	return n
}

// Paragraphs.

func (p *blockParser) interruptsParagraph(lines []cst.Span, j int) bool {
	t := p.src[lines[j].Start:lines[j].End]
	if isBlankLine(t) {
		return true
	}
	ind, off := lineIndent(t)
	if ind >= 4 {
		return false
	}
	rest := t[off:]
	switch {
	case isFenceLine(rest, '`') || isFenceLine(rest, '~'),
		isDivFence(rest),
		isAtxHeading(rest),
		isThematicBreak(rest),
		isNoteDefOpen(rest),
		isListMarkerLine(rest):
		return true
	case rest[0] == '>':
		return true
	case rest[0] == '|' && j+1 < len(lines) && isDelimRow(p.lineRest(lines[j+1])):
		return true
	}
	return false
}

func (p *blockParser) parseParagraph(parent *cst.Node, lines []cst.Span, i int) int {
	j := i + 1
	for j < len(lines) && !p.interruptsParagraph(lines, j) {
		j++
	}
	var segs []cst.Span
	for k := i; k < j; k++ {
		t := p.src[lines[k].Start:lines[k].End]
		_, off := lineIndent(t)
		// Trailing spaces stay: two or more before the newline make a
		// hard break.
		segs = append(segs, cst.Span{Start: lines[k].Start + off, End: lines[k].End})
	}
	span := cst.Span{Start: segs[0].Start, End: lines[j-1].End}
	n := &cst.Node{Kind: cst.KindParagraph, Span: span, Src: p.src}
	n.Append(&cst.Node{
		Kind:     cst.KindInline,
		Field:    "content",
		Span:     span,
		Src:      p.src,
		Segments: segs,
	})
	parent.Append(n)
	return j
}

// Diagnostics.

func (p *blockParser) errorAt(off int, msg string) {
	p.diags = append(p.diags, &Diagnostic{Severity: Error, Msg: msg, Pos: p.pd.Pos(off)})
}

func (p *blockParser) warnAt(off int, msg string) {
	p.diags = append(p.diags, &Diagnostic{Severity: Warn, Msg: msg, Pos: p.pd.Pos(off)})
}
