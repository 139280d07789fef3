package token

// Kind identifies a delimiter token the Scanner can produce. The inline
// parser passes a Set of kinds it is prepared to accept at the current
// grammar position; the Scanner only ever returns a kind from that set.
type Kind int

const (
	CodeSpanStart Kind = iota
	CodeSpanClose
	EmphasisOpenStar
	EmphasisOpenUnderscore
	EmphasisCloseStar
	EmphasisCloseUnderscore
	// LastTokenWhitespace and LastTokenPunctuation are never returned;
	// the caller raises them in the accepted set to tell the Scanner
	// what preceded the current position. Emphasis flanking decisions
	// depend on them.
	LastTokenWhitespace
	LastTokenPunctuation
	StrikeoutOpen
	StrikeoutClose
	MathSpanStart
	MathSpanClose
	SingleQuoteOpen
	SingleQuoteClose
	DoubleQuoteOpen
	DoubleQuoteClose
	SuperscriptOpen
	SuperscriptClose
	SubscriptOpen
	SubscriptClose
	CiteAuthorInTextWithBracket
	CiteSuppressAuthorWithBracket
	CiteAuthorInText
	CiteSuppressAuthor
	ShortcodeOpenEscaped
	ShortcodeCloseEscaped
	ShortcodeOpen
	ShortcodeClose
	// UnclosedSpan is the soft fallback for a leaf-span delimiter run
	// with no closer anywhere ahead; the run degrades to literal text.
	UnclosedSpan

	numKinds
)

func (k Kind) String() string {
	return map[Kind]string{
		CodeSpanStart:                 "CodeSpanStart",
		CodeSpanClose:                 "CodeSpanClose",
		EmphasisOpenStar:              "EmphasisOpenStar",
		EmphasisOpenUnderscore:        "EmphasisOpenUnderscore",
		EmphasisCloseStar:             "EmphasisCloseStar",
		EmphasisCloseUnderscore:       "EmphasisCloseUnderscore",
		LastTokenWhitespace:           "LastTokenWhitespace",
		LastTokenPunctuation:          "LastTokenPunctuation",
		StrikeoutOpen:                 "StrikeoutOpen",
		StrikeoutClose:                "StrikeoutClose",
		MathSpanStart:                 "MathSpanStart",
		MathSpanClose:                 "MathSpanClose",
		SingleQuoteOpen:               "SingleQuoteOpen",
		SingleQuoteClose:              "SingleQuoteClose",
		DoubleQuoteOpen:               "DoubleQuoteOpen",
		DoubleQuoteClose:              "DoubleQuoteClose",
		SuperscriptOpen:               "SuperscriptOpen",
		SuperscriptClose:              "SuperscriptClose",
		SubscriptOpen:                 "SubscriptOpen",
		SubscriptClose:                "SubscriptClose",
		CiteAuthorInTextWithBracket:   "CiteAuthorInTextWithBracket",
		CiteSuppressAuthorWithBracket: "CiteSuppressAuthorWithBracket",
		CiteAuthorInText:              "CiteAuthorInText",
		CiteSuppressAuthor:            "CiteSuppressAuthor",
		ShortcodeOpenEscaped:          "ShortcodeOpenEscaped",
		ShortcodeCloseEscaped:         "ShortcodeCloseEscaped",
		ShortcodeOpen:                 "ShortcodeOpen",
		ShortcodeClose:                "ShortcodeClose",
		UnclosedSpan:                  "UnclosedSpan",
	}[k]
}

// Set is a bitset of token kinds.
type Set uint64

func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

func (s Set) Has(k Kind) bool {
	return s&(1<<uint(k)) != 0
}

func (s Set) With(kinds ...Kind) Set {
	return s | NewSet(kinds...)
}
