// Package ast defines the interchange document tree and the builder
// that converts a concrete syntax tree into it.  The shapes mirror the
// Pandoc data model so the encoders can write Pandoc native and JSON
// output directly.
package ast

// Doc is a complete document: metadata, content blocks, and the note
// definitions collected during building.  Notes is consumed by the
// note resolution filter; encoders ignore it.
type Doc struct {
	Meta   Meta
	Blocks []Block
	Notes  []NoteDef
}

// NoteDef is a collected note definition.
type NoteDef struct {
	Label  string
	Blocks []Block
}

// Meta is ordered document metadata.
type Meta []MetaEntry

type MetaEntry struct {
	Key   string
	Value MetaValue
}

// Lookup returns the value for key, or nil.
func (m Meta) Lookup(key string) MetaValue {
	for _, e := range m {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// MetaValue is one of MetaMap, MetaList, MetaBool or MetaString.
type MetaValue interface{ metaValue() }

type MetaMap []MetaEntry
type MetaList []MetaValue
type MetaBool bool
type MetaString string

func (MetaMap) metaValue()    {}
func (MetaList) metaValue()   {}
func (MetaBool) metaValue()   {}
func (MetaString) metaValue() {}

// Attr carries an identifier, classes and key/value pairs.
type Attr struct {
	Id      string
	Classes []string
	KVs     []KV
}

type KV struct {
	Key   string
	Value string
}

// IsEmpty reports whether the attribute carries nothing.
func (a Attr) IsEmpty() bool {
	return a.Id == "" && len(a.Classes) == 0 && len(a.KVs) == 0
}

// HasClass reports whether c is among the classes.
func (a Attr) HasClass(c string) bool {
	for _, x := range a.Classes {
		if x == c {
			return true
		}
	}
	return false
}

// Block is a block-level element.
type Block interface{ block() }

type Plain struct{ Inlines []Inline }
type Para struct{ Inlines []Inline }

type CodeBlock struct {
	Attr Attr
	Text string
}

type RawBlock struct {
	Format string
	Text   string
}

type BlockQuote struct{ Blocks []Block }

// OrderedList items. Delim is '.' or ')'.
type OrderedList struct {
	Start int
	Delim byte
	Items [][]Block
}

type BulletList struct{ Items [][]Block }

type Header struct {
	Level   int
	Attr    Attr
	Inlines []Inline
}

type HorizontalRule struct{}

type Div struct {
	Attr   Attr
	Blocks []Block
}

// Alignment of a table column.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "AlignLeft"
	case AlignRight:
		return "AlignRight"
	case AlignCenter:
		return "AlignCenter"
	}
	return "AlignDefault"
}

type TableCell struct{ Blocks []Block }

type TableRow struct{ Cells []TableCell }

// Table is the simple pipe table shape: one header row, column
// alignments, body rows.
type Table struct {
	Attr   Attr
	Aligns []Alignment
	Header TableRow
	Rows   []TableRow
}

func (*Plain) block()          {}
func (*Para) block()           {}
func (*CodeBlock) block()      {}
func (*RawBlock) block()       {}
func (*BlockQuote) block()     {}
func (*OrderedList) block()    {}
func (*BulletList) block()     {}
func (*Header) block()         {}
func (*HorizontalRule) block() {}
func (*Div) block()            {}
func (*Table) block()          {}

// Inline is an inline-level element.
type Inline interface{ inline() }

type Str struct{ Text string }
type Space struct{}
type SoftBreak struct{}
type LineBreak struct{}

type Emph struct{ Inlines []Inline }
type Strong struct{ Inlines []Inline }
type Strikeout struct{ Inlines []Inline }
type Superscript struct{ Inlines []Inline }
type Subscript struct{ Inlines []Inline }

type QuoteType int

const (
	SingleQuote QuoteType = iota
	DoubleQuote
)

type Quoted struct {
	Type    QuoteType
	Inlines []Inline
}

type Code struct {
	Attr Attr
	Text string
}

type MathType int

const (
	InlineMath MathType = iota
	DisplayMath
)

type Math struct {
	Type MathType
	Text string
}

type RawInline struct {
	Format string
	Text   string
}

type Target struct {
	URL   string
	Title string
}

type Link struct {
	Attr    Attr
	Inlines []Inline
	Target  Target
}

type Image struct {
	Attr    Attr
	Inlines []Inline
	Target  Target
}

type Span struct {
	Attr    Attr
	Inlines []Inline
}

// Note is an inline footnote: block content hanging off a reference
// point in running text.
type Note struct{ Blocks []Block }

// NoteRef is an unresolved reference to a note definition.  The note
// resolution filter replaces it with a Note; encoders render any
// survivor as a reference span.
type NoteRef struct{ Label string }

type CitationMode int

const (
	NormalCitation CitationMode = iota
	AuthorInText
	SuppressAuthor
)

func (m CitationMode) String() string {
	switch m {
	case AuthorInText:
		return "AuthorInText"
	case SuppressAuthor:
		return "SuppressAuthor"
	}
	return "NormalCitation"
}

type Citation struct {
	Id      string
	Prefix  []Inline
	Suffix  []Inline
	Mode    CitationMode
	NoteNum int
	Hash    int
}

type Cite struct {
	Citations []Citation
	Inlines   []Inline
}

// Shortcode is a structured extension call.  The shortcode lowering
// filter rewrites it into nested spans; Raw preserves the source text
// so escaped shortcodes can render literally.
type Shortcode struct {
	Name    string
	Escaped bool
	Raw     string
	Args    []ShortcodeArg
}

// ShortcodeArg is one argument: positional when Key is empty, nested
// when Sub is set.
type ShortcodeArg struct {
	Key   string
	Value string
	Raw   string
	Sub   *Shortcode
}

func (*Str) inline()         {}
func (*Space) inline()       {}
func (*SoftBreak) inline()   {}
func (*LineBreak) inline()   {}
func (*Emph) inline()        {}
func (*Strong) inline()      {}
func (*Strikeout) inline()   {}
func (*Superscript) inline() {}
func (*Subscript) inline()   {}
func (*Quoted) inline()      {}
func (*Code) inline()        {}
func (*Math) inline()        {}
func (*RawInline) inline()   {}
func (*Link) inline()        {}
func (*Image) inline()       {}
func (*Span) inline()        {}
func (*Note) inline()        {}
func (*NoteRef) inline()     {}
func (*Cite) inline()        {}
func (*Shortcode) inline()   {}
