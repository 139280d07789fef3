// Package cst provides the concrete syntax tree produced by the parse
// front-ends, along with generic traversal support. CST nodes are
// lossless: every node carries its byte span in the backing source, and
// a node's span contains the spans of all its children.
package cst

// Kind labels a CST node. Every kind a front-end can produce must have
// a registered conversion in the AST builder.
type Kind int

const (
	KindDocument Kind = iota
	KindMetadataBlock
	KindParagraph
	KindAtxHeading
	KindFencedCodeBlock
	KindInfoString
	KindCodeText
	KindBlockQuote
	KindList
	KindListItem
	KindFencedDiv
	KindPipeTable
	KindTableRow
	KindTableDelimRow
	KindTableCell
	KindNoteDefinition
	KindNoteLabel
	KindThematicBreak

	KindInline
	KindTextBase
	KindEscape
	KindSoftBreak
	KindHardBreak
	KindEmphasis
	KindStrongEmphasis
	KindEmphasisDelimiter
	KindCodeSpan
	KindCodeSpanDelimiter
	KindCodeContent
	KindMathSpan
	KindMathDelimiter
	KindMathContent
	KindStrikeout
	KindSuperscript
	KindSubscript
	KindQuoted
	KindInlineLink
	KindLinkText
	KindLinkDestination
	KindLinkTitle
	KindBracketedSpan
	KindAttribute
	KindAttrId
	KindAttrClass
	KindAttrKey
	KindAttrValue
	KindRawAttribute
	KindRawReaderAttribute
	KindCitation
	KindCitationId
	KindNoteReference
	KindInlineNote
	KindShortcode
	KindShortcodeName
	KindShortcodeString
	KindShortcodeNakedString
	KindShortcodeNumber
	KindShortcodeBoolean
	KindShortcodeKeyword

	numKinds
)

var kindNames = map[Kind]string{
	KindDocument:             "document",
	KindMetadataBlock:        "metadata_block",
	KindParagraph:            "paragraph",
	KindAtxHeading:           "atx_heading",
	KindFencedCodeBlock:      "fenced_code_block",
	KindInfoString:           "info_string",
	KindCodeText:             "code_text",
	KindBlockQuote:           "block_quote",
	KindList:                 "list",
	KindListItem:             "list_item",
	KindFencedDiv:            "fenced_div",
	KindPipeTable:            "pipe_table",
	KindTableRow:             "table_row",
	KindTableDelimRow:        "table_delim_row",
	KindTableCell:            "table_cell",
	KindNoteDefinition:       "note_definition",
	KindNoteLabel:            "note_label",
	KindThematicBreak:        "thematic_break",
	KindInline:               "inline",
	KindTextBase:             "text_base",
	KindEscape:               "escape",
	KindSoftBreak:            "soft_break",
	KindHardBreak:            "hard_break",
	KindEmphasis:             "emphasis",
	KindStrongEmphasis:       "strong_emphasis",
	KindEmphasisDelimiter:    "emphasis_delimiter",
	KindCodeSpan:             "code_span",
	KindCodeSpanDelimiter:    "code_span_delimiter",
	KindCodeContent:          "code_content",
	KindMathSpan:             "math_span",
	KindMathDelimiter:        "math_delimiter",
	KindMathContent:          "math_content",
	KindStrikeout:            "strikeout",
	KindSuperscript:          "superscript",
	KindSubscript:            "subscript",
	KindQuoted:               "quoted",
	KindInlineLink:           "inline_link",
	KindLinkText:             "link_text",
	KindLinkDestination:      "link_destination",
	KindLinkTitle:            "link_title",
	KindBracketedSpan:        "bracketed_span",
	KindAttribute:            "attribute",
	KindAttrId:               "attr_id",
	KindAttrClass:            "attr_class",
	KindAttrKey:              "attr_key",
	KindAttrValue:            "attr_value",
	KindRawAttribute:         "raw_attribute",
	KindRawReaderAttribute:   "raw_reader_attribute",
	KindCitation:             "citation",
	KindCitationId:           "citation_id",
	KindNoteReference:        "note_reference",
	KindInlineNote:           "inline_note",
	KindShortcode:            "shortcode",
	KindShortcodeName:        "shortcode_name",
	KindShortcodeString:      "shortcode_string",
	KindShortcodeNakedString: "shortcode_naked_string",
	KindShortcodeNumber:      "shortcode_number",
	KindShortcodeBoolean:     "shortcode_boolean",
	KindShortcodeKeyword:     "shortcode_keyword",
}

func (k Kind) String() string {
	return kindNames[k]
}

// NumKinds is the number of distinct node kinds; the AST builder checks
// its conversion registry against it.
const NumKinds = int(numKinds)

// Flags carries small kind-specific booleans.
type Flags uint16

const (
	FlagOrdered Flags = 1 << iota
	FlagTight
	FlagImage
	FlagEscaped
	FlagSuppressAuthor
	FlagAuthorInText
	FlagDoubleQuote
	FlagDisplayMath
	FlagNoSoftBreak
)

// Span is a half-open byte range into a node's backing source.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Node is a CST node. Kind-specific scalar payload lives in N and
// Flags, tagged-union style: N is the heading level for atx_heading,
// the start number for ordered lists and the delimiter length for math
// spans.
type Node struct {
	Kind     Kind
	Field    string
	Span     Span
	Src      []byte
	Children []*Node

	N     int
	Flags Flags

	// Segments lists the source line spans of an inline leaf that has
	// not been through the inline front-end yet; the coordinator
	// consumes and clears it.
	Segments []Span
}

// Text returns the source bytes the node spans.
func (n *Node) Text() []byte {
	return n.Src[n.Span.Start:n.Span.End]
}

// Child returns the first child with the given field name, or nil.
func (n *Node) Child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildKind returns the first child of the given kind, or nil.
func (n *Node) ChildKind(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// Append adds children, keeping sibling order.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Depth returns the maximum depth of the tree rooted at n, counting n
// as 1. Computed iteratively; input nesting must not bind the stack.
func (n *Node) Depth() int {
	type item struct {
		n *Node
		d int
	}
	maxD := 0
	stack := []item{{n, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.d > maxD {
			maxD = it.d
		}
		for _, c := range it.n.Children {
			stack = append(stack, item{c, it.d + 1})
		}
	}
	return maxD
}
