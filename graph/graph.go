package graph

import "strconv"

// Node is one recorded operator invocation (or backbone input). Nodes
// are immutable once emitted; all fields are read through accessors so
// a finished graph cannot be rewired by consumers.
type Node struct {
	id     int
	name   string
	op     OpKind
	level  int
	role   Role
	attrs  Attrs
	inputs []*Node
}

// ID returns the node's sequential emission index, unique per graph.
func (n *Node) ID() int { return n.id }

// Name returns the node's human-readable name, unique per graph.
func (n *Node) Name() string { return n.name }

// Op returns the operator kind the node records.
func (n *Node) Op() OpKind { return n.op }

// Level returns the pyramid rank the node's output represents.
func (n *Node) Level() int { return n.level }

// Role returns the part the node plays within its level.
func (n *Node) Role() Role { return n.role }

// Attrs returns the typed operator parameters.
func (n *Node) Attrs() Attrs { return n.attrs }

// Inputs returns a copy of the node's input nodes in declaration order.
func (n *Node) Inputs() []*Node {
	out := make([]*Node, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// NumInputs returns the number of input nodes without allocating.
func (n *Node) NumInputs() int { return len(n.inputs) }

// DependsOn reports whether target is reachable from n through input
// edges (n itself counts). Useful for provenance checks on small graphs.
// Complexity: O(V+E) per call.
func (n *Node) DependsOn(target *Node) bool {
	if target == nil {
		return false
	}
	seen := make(map[int]struct{})
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if _, ok := seen[cur.id]; ok {
			continue
		}
		seen[cur.id] = struct{}{}
		stack = append(stack, cur.inputs...)
	}

	return false
}

// Graph is an append-only recorder of operator nodes. The zero value is
// not usable; construct with New.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
}

// New returns an empty graph ready for recording.
func New() *Graph {
	return &Graph{byName: make(map[string]*Node)}
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns all nodes in emission order, which is a valid
// topological order of the DAG by construction.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// ByName returns the node emitted under name, if any. Names passed to
// Apply are kept verbatim unless already taken (see Apply).
func (g *Graph) ByName(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Input declares a backbone feed named name representing pyramid rank
// rank. Inputs have no dependencies and RoleInput.
func (g *Graph) Input(name string, rank int) *Node {
	return g.Apply(OpInput, name, rank, RoleInput, Attrs{})
}

// Apply records one operator invocation and returns its node.
//
// The requested name is kept verbatim when free; a taken name gets a
// deterministic "_2", "_3", ... suffix so repeated builder runs on one
// graph stay collision-free. All inputs must be non-nil nodes of this
// graph; violating that is a programmer error and panics (builders
// validate configuration before emitting, so this never fires at
// runtime for valid configurations).
//
// Complexity: O(len(inputs)) time, O(1) extra space.
func (g *Graph) Apply(op OpKind, name string, level int, role Role, attrs Attrs, inputs ...*Node) *Node {
	for _, in := range inputs {
		if in == nil {
			panic("graph: Apply with nil input node")
		}
		if in.id >= len(g.nodes) || g.nodes[in.id] != in {
			panic("graph: Apply with input node from another graph")
		}
	}

	n := &Node{
		id:     len(g.nodes),
		name:   g.uniqueName(name),
		op:     op,
		level:  level,
		role:   role,
		attrs:  attrs,
		inputs: inputs,
	}
	g.nodes = append(g.nodes, n)
	g.byName[n.name] = n

	return n
}

// uniqueName resolves name against already-emitted nodes, appending the
// smallest suffix "_2", "_3", ... that frees it.
func (g *Graph) uniqueName(name string) string {
	if _, taken := g.byName[name]; !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, taken := g.byName[candidate]; !taken {
			return candidate
		}
	}
}
