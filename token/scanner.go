package token

import (
	"github.com/signadot/qmd-format/go-qmd/debug"
)

// Scanner disambiguates the overlapping inline delimiter syntaxes:
// emphasis runs, code and math spans, quoted spans, strikeout,
// superscript/subscript, citations and shortcodes. It is stateful across
// calls within one inline span; the grammar drives it by passing the set
// of kinds it is currently prepared to accept.
type Scanner struct {
	st State
}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Serialize snapshots the scanner state; see State.
func (s *Scanner) Serialize() []byte {
	return s.st.Serialize()
}

// Deserialize restores a snapshot taken with Serialize.
func (s *Scanner) Deserialize(d []byte) {
	s.st.Deserialize(d)
}

// InsideShortcode reports whether at least one shortcode is open.
func (s *Scanner) InsideShortcode() bool {
	return s.st.shortcodeDepth > 0
}

// CodeSpanDelimLen returns the delimiter length of the code span opened
// by the last CodeSpanStart, or 0.
func (s *Scanner) CodeSpanDelimLen() int {
	return int(s.st.codeSpanDelimLen)
}

// MathSpanDelimLen returns the delimiter length of the math span opened
// by the last MathSpanStart, or 0.
func (s *Scanner) MathSpanDelimLen() int {
	return int(s.st.mathSpanDelimLen)
}

// isPunctuation matches the markdown definition of ASCII punctuation.
func isPunctuation(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') ||
		(c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

// whitespaceAt treats end of input as whitespace, like a line end.
func whitespaceAt(d []byte, i int) bool {
	if i >= len(d) {
		return true
	}
	switch d[i] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func punctuationAt(d []byte, i int) bool {
	return i < len(d) && isPunctuation(d[i])
}

// Scan runs the scanner at the start of d. Only kinds in valid are
// candidates. On a match it returns the kind and the number of input
// bytes the token consumes; probing beyond the consumed bytes never
// commits input. A false return means no candidate matched and the
// caller should treat the character as ordinary text.
func (s *Scanner) Scan(d []byte, valid Set) (Kind, int, bool) {
	if len(d) == 0 {
		return 0, 0, false
	}
	k, n, ok := s.scan(d, valid)
	if ok && debug.Scan() {
		debug.Logf("scan: %s (%d bytes)\n", k, n)
	}
	return k, n, ok
}

func (s *Scanner) scan(d []byte, valid Set) (Kind, int, bool) {
	switch d[0] {
	case '{':
		return s.scanShortcodeOpen(d, valid)
	case '>':
		return s.scanShortcodeClose(d, valid)
	case '@':
		return s.scanCiteAuthorInText(d, valid)
	case '-':
		return s.scanCiteSuppressAuthor(d, valid)
	case '^':
		return s.scanCaret(d, valid)
	case '`':
		return s.scanLeafDelimiter(d, valid, '`', &s.st.codeSpanDelimLen, CodeSpanStart, CodeSpanClose)
	case '$':
		return s.scanLeafDelimiter(d, valid, '$', &s.st.mathSpanDelimLen, MathSpanStart, MathSpanClose)
	case '*':
		return s.scanEmphasis(d, valid, '*', EmphasisOpenStar, EmphasisCloseStar)
	case '_':
		return s.scanEmphasis(d, valid, '_', EmphasisOpenUnderscore, EmphasisCloseUnderscore)
	case '~':
		return s.scanTilde(d, valid)
	}
	// Quote characters inside a shortcode delimit argument string
	// literals and are handled by the shortcode grammar instead.
	if s.st.shortcodeDepth == 0 && (valid.Has(LastTokenWhitespace) || s.st.insideSingleQuote > 0) && d[0] == '\'' {
		return s.scanQuote(d, valid, &s.st.insideSingleQuote, SingleQuoteOpen, SingleQuoteClose, true)
	}
	if s.st.shortcodeDepth == 0 && (valid.Has(LastTokenWhitespace) || s.st.insideDoubleQuote > 0) && d[0] == '"' {
		return s.scanQuote(d, valid, &s.st.insideDoubleQuote, DoubleQuoteOpen, DoubleQuoteClose, false)
	}
	return 0, 0, false
}

// scanLeafDelimiter handles code span backticks and math span dollars. A
// run matching the currently open delimiter length closes it. Otherwise,
// before committing to an open token, it probes the rest of the input
// for a run of the same length; without one the run yields UnclosedSpan
// so that it degrades to literal text.
func (s *Scanner) scanLeafDelimiter(d []byte, valid Set, delim byte, delimLen *uint8, open, close Kind) (Kind, int, bool) {
	level := 0
	for level < len(d) && d[level] == delim {
		level++
	}
	if level == int(*delimLen) && valid.Has(close) {
		*delimLen = 0
		return close, level, true
	}
	if valid.Has(open) {
		closeLevel := 0
		found := false
		for j := level; j < len(d); j++ {
			if d[j] == delim {
				closeLevel++
				continue
			}
			if closeLevel == level {
				found = true
				break
			}
			closeLevel = 0
		}
		if found || closeLevel == level {
			*delimLen = uint8(level)
			return open, level, true
		}
		if valid.Has(UnclosedSpan) {
			return UnclosedSpan, level, true
		}
	}
	return 0, 0, false
}

// scanQuote handles the smart quote toggles. Closing wins whenever the
// caller accepts it; a single quote may only open when not immediately
// followed by whitespace (apostrophes).
func (s *Scanner) scanQuote(d []byte, valid Set, inside *uint8, open, close Kind, guardWS bool) (Kind, int, bool) {
	if valid.Has(close) {
		*inside = 0
		return close, 1, true
	}
	if valid.Has(open) && !(guardWS && whitespaceAt(d, 1)) {
		*inside = 1
		return open, 1, true
	}
	return 0, 0, false
}

// scanCaret handles superscript. `^[` is never superscript: that prefix
// is reserved for inline note syntax.
func (s *Scanner) scanCaret(d []byte, valid Set) (Kind, int, bool) {
	if 1 < len(d) && d[1] == '[' {
		return 0, 0, false
	}
	if valid.Has(SuperscriptClose) {
		s.st.insideSuperscript = 0
		return SuperscriptClose, 1, true
	}
	if valid.Has(SuperscriptOpen) {
		s.st.insideSuperscript = 1
		return SuperscriptOpen, 1, true
	}
	return 0, 0, false
}

// scanTilde dispatches `~~` to strikeout and a single `~` to subscript.
func (s *Scanner) scanTilde(d []byte, valid Set) (Kind, int, bool) {
	if 1 < len(d) && d[1] == '~' {
		if valid.Has(StrikeoutClose) {
			s.st.insideStrikeout = 0
			return StrikeoutClose, 2, true
		}
		if valid.Has(StrikeoutOpen) {
			s.st.insideStrikeout = 1
			return StrikeoutOpen, 2, true
		}
		return 0, 0, false
	}
	if valid.Has(SubscriptClose) {
		s.st.insideSubscript = 0
		return SubscriptClose, 1, true
	}
	if valid.Has(SubscriptOpen) {
		s.st.insideSubscript = 1
		return SubscriptOpen, 1, true
	}
	return 0, 0, false
}

// scanEmphasis resolves a delimiter run in one step and then replays the
// decision one character at a time. While emphasisRunLeft is non-zero a
// previous call already decided this run; emit the recorded decision and
// decrement. Otherwise count the run, look at the character after it and
// at the caller's last-token bits, and apply the flanking rules. Closing
// takes precedence when both directions are legal.
func (s *Scanner) scanEmphasis(d []byte, valid Set, delim byte, open, close Kind) (Kind, int, bool) {
	if s.st.emphasisRunLeft > 0 {
		if s.st.flags&stateEmphasisRunIsOpen != 0 && valid.Has(open) {
			s.st.flags &^= stateEmphasisRunIsOpen
			s.st.emphasisRunLeft--
			return open, 1, true
		}
		if valid.Has(close) {
			s.st.emphasisRunLeft--
			return close, 1, true
		}
	}
	runLen := 0
	for runLen < len(d) && d[runLen] == delim {
		runLen++
	}
	if !valid.Has(open) && !valid.Has(close) {
		return 0, 0, false
	}
	// This decision covers the whole run; remember how many characters
	// of it remain after the one being emitted now.
	s.st.emphasisRunLeft = uint8(runLen - 1)
	nextWS := whitespaceAt(d, runLen)
	nextPunct := punctuationAt(d, runLen)
	if valid.Has(close) &&
		!valid.Has(LastTokenWhitespace) &&
		(!valid.Has(LastTokenPunctuation) || nextPunct || nextWS) {
		s.st.flags &^= stateEmphasisRunIsOpen
		return close, 1, true
	}
	if valid.Has(open) && !nextWS &&
		(!nextPunct || valid.Has(LastTokenPunctuation) || valid.Has(LastTokenWhitespace)) {
		s.st.flags |= stateEmphasisRunIsOpen
		return open, 1, true
	}
	return 0, 0, false
}

func (s *Scanner) scanCiteAuthorInText(d []byte, valid Set) (Kind, int, bool) {
	if 1 < len(d) && d[1] == '{' && valid.Has(CiteAuthorInTextWithBracket) {
		return CiteAuthorInTextWithBracket, 2, true
	}
	if valid.Has(CiteAuthorInText) {
		return CiteAuthorInText, 1, true
	}
	return 0, 0, false
}

func (s *Scanner) scanCiteSuppressAuthor(d []byte, valid Set) (Kind, int, bool) {
	if 1 >= len(d) || d[1] != '@' {
		return 0, 0, false
	}
	if 2 < len(d) && d[2] == '{' && valid.Has(CiteSuppressAuthorWithBracket) {
		return CiteSuppressAuthorWithBracket, 3, true
	}
	if valid.Has(CiteSuppressAuthor) {
		return CiteSuppressAuthor, 2, true
	}
	return 0, 0, false
}

func (s *Scanner) scanShortcodeOpen(d []byte, valid Set) (Kind, int, bool) {
	if 1 >= len(d) || d[1] != '{' {
		return 0, 0, false
	}
	if 2 < len(d) && d[2] == '<' && valid.Has(ShortcodeOpen) {
		s.st.shortcodeDepth++
		return ShortcodeOpen, 3, true
	}
	if 2 < len(d) && d[2] == '{' && 3 < len(d) && d[3] == '<' && valid.Has(ShortcodeOpenEscaped) {
		s.st.shortcodeDepth++
		return ShortcodeOpenEscaped, 4, true
	}
	return 0, 0, false
}

func (s *Scanner) scanShortcodeClose(d []byte, valid Set) (Kind, int, bool) {
	if 2 >= len(d) || d[1] != '}' || d[2] != '}' {
		return 0, 0, false
	}
	if 3 < len(d) && d[3] == '}' && valid.Has(ShortcodeCloseEscaped) {
		s.st.shortcodeDepth--
		return ShortcodeCloseEscaped, 4, true
	}
	if valid.Has(ShortcodeClose) {
		s.st.shortcodeDepth--
		return ShortcodeClose, 3, true
	}
	return 0, 0, false
}
