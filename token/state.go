package token

// stateEmphasisRunIsOpen is set while the current emphasis delimiter
// run has been decided to open; it occupies the low bits of State.flags.
const stateEmphasisRunIsOpen = 0x1 << 2

// State is the full serializable state of a Scanner: one small counter
// per ambiguous delimiter family. The zero value is the initial state.
//
// The parse front-end may save a branch's state with Serialize and wind
// it back with Deserialize, so the two must be exact inverses.
type State struct {
	flags            uint8
	codeSpanDelimLen uint8
	mathSpanDelimLen uint8
	emphasisRunLeft  uint8

	// shortcodeDepth counts open shortcodes; quote characters inside a
	// shortcode belong to its argument syntax, not to Quoted spans.
	shortcodeDepth uint8

	insideSuperscript uint8
	insideSubscript   uint8
	insideStrikeout   uint8
	insideSingleQuote uint8
	insideDoubleQuote uint8
}

// StateSize is the byte length of a serialized State.
const StateSize = 10

// Serialize writes the state to a fixed-size byte buffer.
func (s *State) Serialize() []byte {
	return []byte{
		s.flags,
		s.codeSpanDelimLen,
		s.mathSpanDelimLen,
		s.emphasisRunLeft,
		s.shortcodeDepth,
		s.insideSuperscript,
		s.insideSubscript,
		s.insideStrikeout,
		s.insideSingleQuote,
		s.insideDoubleQuote,
	}
}

// Deserialize restores the state from a buffer produced by Serialize.
// Empty input yields the all-zero initial state.
func (s *State) Deserialize(d []byte) {
	*s = State{}
	if len(d) == 0 {
		return
	}
	s.flags = d[0]
	s.codeSpanDelimLen = d[1]
	s.mathSpanDelimLen = d[2]
	s.emphasisRunLeft = d[3]
	s.shortcodeDepth = d[4]
	s.insideSuperscript = d[5]
	s.insideSubscript = d[6]
	s.insideStrikeout = d[7]
	s.insideSingleQuote = d[8]
	s.insideDoubleQuote = d[9]
}
