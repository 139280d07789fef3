package parse

import (
	"sort"
	"sync"

	"github.com/signadot/qmd-format/go-qmd/cst"
	"github.com/signadot/qmd-format/go-qmd/debug"
	"github.com/signadot/qmd-format/go-qmd/token"
)

// Result holds the parsed tree together with its source and the
// diagnostics produced along the way, ordered by source position.
type Result struct {
	Root   *cst.Node
	Source []byte
	Pos    *token.PosDoc
	Diags  []*Diagnostic
}

// HasErrors reports whether any diagnostic is error level.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Parse parses src.  Structural problems degrade to literal text and
// show up as Diagnostics on the Result; the returned error is non-nil
// only when no tree could be produced at all.
func Parse(src []byte, opts ...ParseOption) (*Result, error) {
	o := defaultOpts()
	for _, opt := range opts {
		opt(&o)
	}
	pd := token.NewPosDoc(src)
	bp := &blockParser{src: src, pd: pd, maxDepth: o.maxDepth}
	root := bp.parseDocument()
	if bp.tooDeep {
		return nil, ErrTooDeep
	}

	var leaves []*cst.Node
	cst.TopDown(root, func(n *cst.Node, phase cst.Phase) bool {
		if phase == cst.Enter && n.Kind == cst.KindInline && n.Segments != nil {
			leaves = append(leaves, n)
		}
		return true
	})
	if debug.Parse() {
		debug.Logf("parse: %d inline leaves, %d workers", len(leaves), o.workers)
	}

	leafDiags := make([][]*Diagnostic, len(leaves))
	if o.workers <= 1 || len(leaves) < 2 {
		for i, leaf := range leaves {
			leafDiags[i] = parseLeaf(leaf, pd)
		}
	} else {
		var wg sync.WaitGroup
		idx := make(chan int)
		for w := 0; w < o.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range idx {
					leafDiags[i] = parseLeaf(leaves[i], pd)
				}
			}()
		}
		for i := range leaves {
			idx <- i
		}
		close(idx)
		wg.Wait()
	}

	diags := bp.diags
	for _, ds := range leafDiags {
		diags = append(diags, ds...)
	}
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Pos.I < diags[j].Pos.I
	})
	return &Result{Root: root, Source: src, Pos: pd, Diags: diags}, nil
}

// parseLeaf runs the inline stage over one leaf and splices the result
// in.  The leaf's Segments become a virtual buffer, its line slices
// joined by newlines; the children the inline parser produces are
// rooted in that buffer, while the leaf itself keeps its source span
// and its Segments, which later stages use to map the children's
// virtual offsets back to source offsets.
func parseLeaf(leaf *cst.Node, pd *token.PosDoc) []*Diagnostic {
	buf := newSegBuf(leaf.Src, leaf.Segments)
	ip := newInlineParser(buf.data, func(v int) *token.Pos {
		return pd.Pos(buf.srcOffset(v))
	})
	ip.noSoftBreak = leaf.Flags&cst.FlagNoSoftBreak != 0
	nodes, _ := ip.parseInlines(seq{})
	leaf.Children = nodes
	return ip.diags
}

// segBuf materializes an inline leaf's segments as one buffer and maps
// virtual offsets back to source offsets for diagnostics.
type segBuf struct {
	data []byte
	segs []cst.Span
	offs []int // virtual start offset per segment
}

func newSegBuf(src []byte, segs []cst.Span) *segBuf {
	b := &segBuf{segs: segs}
	for i, s := range segs {
		if i > 0 {
			b.data = append(b.data, '\n')
		}
		b.offs = append(b.offs, len(b.data))
		b.data = append(b.data, src[s.Start:s.End]...)
	}
	return b
}

func (b *segBuf) srcOffset(v int) int {
	if len(b.segs) == 0 {
		return 0
	}
	i := sort.Search(len(b.offs), func(i int) bool {
		return b.offs[i] > v
	}) - 1
	if i < 0 {
		i = 0
	}
	off := v - b.offs[i]
	if max := b.segs[i].End - b.segs[i].Start; off > max {
		off = max
	}
	return b.segs[i].Start + off
}
