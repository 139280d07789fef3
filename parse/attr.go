package parse

import (
	"github.com/signadot/qmd-format/go-qmd/cst"
)

// parseAttrAt reads an attribute group starting at src[i], which must
// be '{'.  It returns the attribute node and the index just past the
// closing '}'.  Three shapes are recognized:
//
//	{#id .class key=val key="val"}  -> KindAttribute
//	{=format}                       -> KindRawAttribute
//	{<name}                         -> KindRawReaderAttribute
//
// Attributes never span lines.  A malformed group returns ok=false and
// the caller falls back to literal text.
func parseAttrAt(src []byte, i int) (*cst.Node, int, bool) {
	if i >= len(src) || src[i] != '{' {
		return nil, i, false
	}
	start := i
	i++
	i = skipAttrSpace(src, i)
	if i < len(src) && (src[i] == '=' || src[i] == '<') {
		raw := src[i]
		i++
		j := i
		for j < len(src) && !isAttrSpace(src[j]) && src[j] != '}' && src[j] != '{' {
			j++
		}
		if j == i {
			return nil, start, false
		}
		word := cst.Span{Start: i, End: j}
		j = skipAttrSpace(src, j)
		if j >= len(src) || src[j] != '}' {
			return nil, start, false
		}
		k := cst.KindRawAttribute
		if raw == '<' {
			k = cst.KindRawReaderAttribute
		}
		n := &cst.Node{Kind: k, Span: cst.Span{Start: start, End: j + 1}, Src: src}
		n.Append(&cst.Node{Kind: cst.KindAttrValue, Span: word, Src: src})
		return n, j + 1, true
	}
	attr := &cst.Node{Kind: cst.KindAttribute, Src: src}
	for {
		i = skipAttrSpace(src, i)
		if i >= len(src) {
			return nil, start, false
		}
		if src[i] == '}' {
			attr.Span = cst.Span{Start: start, End: i + 1}
			return attr, i + 1, true
		}
		switch src[i] {
		case '#', '.':
			k := cst.KindAttrId
			if src[i] == '.' {
				k = cst.KindAttrClass
			}
			i++
			j := attrWordEnd(src, i)
			if j == i {
				return nil, start, false
			}
			attr.Append(&cst.Node{Kind: k, Span: cst.Span{Start: i, End: j}, Src: src})
			i = j
		default:
			j := attrWordEnd(src, i)
			if j == i {
				return nil, start, false
			}
			key := cst.Span{Start: i, End: j}
			if j >= len(src) || src[j] != '=' {
				return nil, start, false
			}
			i = j + 1
			var val cst.Span
			if i < len(src) && src[i] == '"' {
				i++
				v := i
				for i < len(src) && src[i] != '"' && src[i] != '\n' {
					i++
				}
				if i >= len(src) || src[i] != '"' {
					return nil, start, false
				}
				val = cst.Span{Start: v, End: i}
				i++
			} else {
				v := i
				j = attrWordEnd(src, i)
				if j == v {
					return nil, start, false
				}
				val = cst.Span{Start: v, End: j}
				i = j
			}
			kv := &cst.Node{Kind: cst.KindAttrKey, Span: key, Src: src}
			kv.Append(&cst.Node{Kind: cst.KindAttrValue, Span: val, Src: src})
			attr.Append(kv)
		}
	}
}

func attrWordEnd(src []byte, i int) int {
	for i < len(src) {
		c := src[i]
		if isAttrSpace(c) || c == '}' || c == '{' || c == '=' || c == '"' || c == '\n' {
			return i
		}
		i++
	}
	return i
}

func skipAttrSpace(src []byte, i int) int {
	for i < len(src) && isAttrSpace(src[i]) {
		i++
	}
	return i
}

func isAttrSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
