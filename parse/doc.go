// Package parse turns markup source into a concrete syntax tree.
//
// Parsing is two-stage: a line-oriented block pass carves the source
// into block structure and leaves inline content unparsed, then an
// inline pass runs over every inline leaf and splices the resulting
// subtrees back in document order. The inline pass can fan out over
// multiple goroutines; output is deterministic either way.
package parse
