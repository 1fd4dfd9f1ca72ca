// Package graph implements the reverse-mode (backpropagation) engine.
//
// A Graph owns every node of one computation DAG in a single arena slice.
// Edges are NodeIDs (indices into the arena) rather than pointers, so a
// node shared by several successors is referenced safely and a graph can be
// cloned with two slice copies. Topology is immutable after construction;
// the per-pass value and gradient buffers are mutable scratch state kept in
// separate slices indexed like the arena.
//
// A pass over one Graph is not safe for concurrent use; independent clones
// may be evaluated in parallel with no coordination.
package graph

import (
	"fmt"
	"math"

	"github.com/gradix-ml/gradix/internal/scalar"
)

// NodeID identifies a node within its owning Graph.
type NodeID int

type opKind int

const (
	opInput opKind = iota
	opConstant
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opLog
)

// node is arena topology only: kind, operand edges, and the static scalar
// (constant value, input binding, or power exponent).
type node struct {
	kind opKind
	a, b NodeID
	c    float64
}

// Graph is an arena of computation nodes plus the scratch buffers for one
// forward/backward pass.
type Graph struct {
	nodes  []node
	values []float64
	grads  []float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// push appends a node, growing the scratch buffers in lockstep.
// Operands must refer to already-built nodes: construction order is the
// topological order Forward relies on.
func (g *Graph) push(n node, operands ...NodeID) NodeID {
	for _, id := range operands {
		if id < 0 || int(id) >= len(g.nodes) {
			panic(fmt.Sprintf("graph: operand %d does not exist yet (%d nodes built)", id, len(g.nodes)))
		}
	}
	g.nodes = append(g.nodes, n)
	g.values = append(g.values, 0)
	g.grads = append(g.grads, 0)
	return NodeID(len(g.nodes) - 1)
}

// Input adds a differentiation variable bound to v.
func (g *Graph) Input(v float64) NodeID {
	return g.push(node{kind: opInput, c: v})
}

// Constant adds the constant c. Constants accumulate no gradient.
func (g *Graph) Constant(c float64) NodeID {
	return g.push(node{kind: opConstant, c: c})
}

// Add adds a node computing a + b.
func (g *Graph) Add(a, b NodeID) NodeID {
	return g.push(node{kind: opAdd, a: a, b: b}, a, b)
}

// Sub adds a node computing a - b.
func (g *Graph) Sub(a, b NodeID) NodeID {
	return g.push(node{kind: opSub, a: a, b: b}, a, b)
}

// Mul adds a node computing a * b.
func (g *Graph) Mul(a, b NodeID) NodeID {
	return g.push(node{kind: opMul, a: a, b: b}, a, b)
}

// Div adds a node computing num / den.
func (g *Graph) Div(num, den NodeID) NodeID {
	return g.push(node{kind: opDiv, a: num, b: den}, num, den)
}

// Pow adds a node computing a^n for a fixed exponent n.
func (g *Graph) Pow(a NodeID, n float64) NodeID {
	return g.push(node{kind: opPow, a: a, c: n}, a)
}

// Log adds a node computing ln(a).
func (g *Graph) Log(a NodeID) NodeID {
	return g.push(node{kind: opLog, a: a}, a)
}

// SetValue rebinds an input node before a pass.
func (g *Graph) SetValue(id NodeID, v float64) {
	if g.nodes[id].kind != opInput {
		panic(fmt.Sprintf("graph: SetValue on node %d, which is not an input", id))
	}
	g.nodes[id].c = v
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Value returns the cached value of a node. Valid only after Forward.
func (g *Graph) Value(id NodeID) float64 {
	return g.values[id]
}

// Gradient returns the accumulated gradient of a node. Valid only after
// Backward.
func (g *Graph) Gradient(id NodeID) float64 {
	return g.grads[id]
}

// ZeroGrad clears every gradient accumulator. Backward accumulates
// additively, so callers must ZeroGrad between passes.
func (g *Graph) ZeroGrad() {
	for i := range g.grads {
		g.grads[i] = 0
	}
}

// Forward runs one evaluation pass in arena order, caching each node's
// value. Construction disallows forward references, so arena order is a
// valid topological order.
//
// Log and Div domains are validated fail-fast: on violation Forward returns
// a wrapped scalar.DomainError naming the offending node, and the cached
// values must not be trusted.
func (g *Graph) Forward() error {
	for i, n := range g.nodes {
		switch n.kind {
		case opInput, opConstant:
			g.values[i] = n.c
		case opAdd:
			g.values[i] = g.values[n.a] + g.values[n.b]
		case opSub:
			g.values[i] = g.values[n.a] - g.values[n.b]
		case opMul:
			g.values[i] = g.values[n.a] * g.values[n.b]
		case opDiv:
			if err := scalar.CheckDivision(g.values[n.b]); err != nil {
				return fmt.Errorf("forward: node %d: %w", i, err)
			}
			g.values[i] = g.values[n.a] / g.values[n.b]
		case opPow:
			g.values[i] = math.Pow(g.values[n.a], n.c)
		case opLog:
			if err := scalar.CheckLog(g.values[n.a]); err != nil {
				return fmt.Errorf("forward: node %d: %w", i, err)
			}
			g.values[i] = math.Log(g.values[n.a])
		default:
			panic(fmt.Sprintf("graph: unknown node kind %d", n.kind))
		}
	}
	return nil
}

// Backward propagates the seed gradient from out back through the graph,
// accumulating each node's contribution into its predecessors. Requires a
// successful Forward first.
//
// Accumulation is additive: a node feeding several successors sums one
// contribution per successor. That is also why gradients survive across
// calls — use ZeroGrad between passes.
//
// The seed is 1 for a plain derivative of the output with respect to the
// inputs.
func (g *Graph) Backward(out NodeID, seed float64) {
	g.grads[out] += seed

	// Reverse arena order: every successor of node i has a higher index,
	// so grads[i] is final by the time i is visited.
	for i := len(g.nodes) - 1; i >= 0; i-- {
		gr := g.grads[i]
		if gr == 0 {
			continue
		}
		n := g.nodes[i]
		switch n.kind {
		case opInput, opConstant:
			// Inputs terminate propagation; constants take no gradient.
		case opAdd:
			g.grads[n.a] += gr
			g.grads[n.b] += gr
		case opSub:
			g.grads[n.a] += gr
			g.grads[n.b] -= gr
		case opMul:
			g.grads[n.a] += gr * g.values[n.b]
			g.grads[n.b] += gr * g.values[n.a]
		case opDiv:
			g.grads[n.a] += gr / g.values[n.b]
			g.grads[n.b] -= gr * g.values[n.a] / (g.values[n.b] * g.values[n.b])
		case opPow:
			// Legacy policy: skip propagation on a zero base rather than
			// feed a possibly Inf/NaN 0^(n-1) term into the accumulator.
			// An approximation, not an exact rule; kept deliberately.
			if g.values[n.a] != 0 {
				g.grads[n.a] += gr * n.c * math.Pow(g.values[n.a], n.c-1)
			}
		case opLog:
			// values[n.a] > 0 was validated during Forward.
			g.grads[n.a] += gr / g.values[n.a]
		default:
			panic(fmt.Sprintf("graph: unknown node kind %d", n.kind))
		}
	}
}

// Clone returns a deep copy sharing no state with g. Clones may be
// evaluated concurrently with each other and with the original.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:  make([]node, len(g.nodes)),
		values: make([]float64, len(g.values)),
		grads:  make([]float64, len(g.grads)),
	}
	copy(c.nodes, g.nodes)
	copy(c.values, g.values)
	copy(c.grads, g.grads)
	return c
}
