package domain

// Node is a workflow tree node. It is implemented by Leaf and *ActionNode only.
type Node interface {
	isNode()
}

// Leaf references a raw media resource: a remote URL or a local path.
type Leaf struct {
	Reference string `json:"url" yaml:"url"`
}

func (Leaf) isNode() {}

// ActionNode applies one editing action to one or more upstream nodes.
//
// Unary actions carry their upstream node in Input; n-ary actions
// (see ActionKind.MultiInput) carry an ordered list in Inputs. Exactly one
// of the two is set on a well-formed node.
type ActionNode struct {
	Kind   ActionKind
	Input  Node
	Inputs []Node
	Params Params
}

func (*ActionNode) isNode() {}

// Children returns the upstream nodes in evaluation order.
func (n *ActionNode) Children() []Node {
	if n.Input != nil {
		return []Node{n.Input}
	}
	return n.Inputs
}

// Leaves returns every leaf occurrence of the tree, pre-order, left to right.
// A leaf reachable twice is returned twice. A node that is its own ancestor
// is not descended into again, so cyclic trees terminate.
func Leaves(root Node) []Leaf {
	var out []Leaf
	path := make(map[*ActionNode]bool)
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Leaf:
			out = append(out, v)
		case *ActionNode:
			if v == nil || path[v] {
				return
			}
			path[v] = true
			for _, c := range v.Children() {
				walk(c)
			}
			delete(path, v)
		}
	}
	walk(root)
	return out
}
