package cst

// Phase distinguishes the two visits TopDown makes per node.
type Phase int

const (
	Enter Phase = iota
	Exit
)

// TopDown walks the tree in pre-order, visiting each node with an Enter
// event before its children and an Exit event after them. The visitor's
// return on Enter controls descent into the node's children; it is
// ignored on Exit. The walk is iterative so deeply nested input cannot
// exhaust the goroutine stack.
func TopDown(root *Node, visit func(n *Node, phase Phase) bool) {
	type frame struct {
		n       *Node
		entered bool
		next    int
	}
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.entered {
			top.entered = true
			if !visit(top.n, Enter) {
				visit(top.n, Exit)
				stack = stack[:len(stack)-1]
				continue
			}
		}
		if top.next < len(top.n.Children) {
			child := top.n.Children[top.next]
			top.next++
			stack = append(stack, frame{n: child})
			continue
		}
		visit(top.n, Exit)
		stack = stack[:len(stack)-1]
	}
}

// Folded pairs a child node with the value its subtree folded to.
type Folded[T any] struct {
	Node  *Node
	Value T
}

// BottomUp folds the tree in post-order: each node is visited after all
// of its children, receiving their already-folded values in sibling
// order. Iterative for the same reason as TopDown.
func BottomUp[T any](root *Node, visit func(n *Node, children []Folded[T]) T) T {
	type frame struct {
		n    *Node
		next int
		acc  []Folded[T]
	}
	stack := []frame{{n: root}}
	for {
		top := &stack[len(stack)-1]
		if top.next < len(top.n.Children) {
			child := top.n.Children[top.next]
			top.next++
			stack = append(stack, frame{n: child})
			continue
		}
		v := visit(top.n, top.acc)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return v
		}
		parent := &stack[len(stack)-1]
		parent.acc = append(parent.acc, Folded[T]{Node: top.n, Value: v})
	}
}
