package ir

// Visitor is called for each node by Walk. If the returned visitor w is not
// nil, Walk visits each child of the node with w, followed by a call of
// w.Visit(nil).
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses the tree rooted at n in depth-first order.
func Walk(v Visitor, n Node) {
	if isNilNode(n) {
		return
	}
	if v = v.Visit(n); v == nil {
		return
	}

	switch n := n.(type) {
	case *Symbol, *ConstantUnion:
	case *Unary:
		walkTyped(v, n.Operand)
	case *Binary:
		walkTyped(v, n.Left)
		walkTyped(v, n.Right)
	case *Aggregate:
		for _, c := range n.Seq {
			Walk(v, c)
		}
	case *Selection:
		walkTyped(v, n.Cond)
		Walk(v, n.TrueBlock)
		Walk(v, n.FalseBlock)
	case *Switch:
		walkTyped(v, n.Cond)
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *Loop:
		walkTyped(v, n.Test)
		Walk(v, n.Body)
		walkTyped(v, n.Terminal)
	case *Branch:
		walkTyped(v, n.Expr)
	case *Method:
		walkTyped(v, n.Object)
	}

	v.Visit(nil)
}

func walkTyped(v Visitor, n Typed) {
	if n != nil {
		Walk(v, n)
	}
}

// isNilNode catches both a nil interface and a typed nil pointer.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Aggregate:
		return n == nil
	case *Symbol:
		return n == nil
	case *ConstantUnion:
		return n == nil
	case *Unary:
		return n == nil
	case *Binary:
		return n == nil
	case *Selection:
		return n == nil
	case *Switch:
		return n == nil
	case *Loop:
		return n == nil
	case *Branch:
		return n == nil
	case *Method:
		return n == nil
	}
	return false
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if n != nil && f(n) {
		return f
	}
	return nil
}

// Inspect calls f for each node of the tree in depth-first order. Children
// are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
