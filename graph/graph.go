// Copyright 2025 The Gradix Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the reverse-mode
// (backpropagation) differentiation engine.
//
// A Graph owns all of its nodes in one arena; node handles are indices, so
// shared subexpressions are referenced safely and a graph clones cheaply.
// One Forward pass caches values in dependency order, then one Backward
// pass seeded with 1 at the output accumulates gradients via the chain
// rule. Gradients are additive across Backward calls — ZeroGrad between
// passes.
//
// Example:
//
//	// f(x) = x*x + 3*x at x = 2
//	g := graph.New()
//	x := g.Input(2)
//	y := g.Add(g.Mul(x, x), g.Mul(g.Constant(3), x))
//	if err := g.Forward(); err != nil {
//	    log.Fatal(err)
//	}
//	g.Backward(y, 1)
//	fmt.Println(g.Gradient(x)) // 7
package graph

import (
	"github.com/gradix-ml/gradix/internal/graph"
)

// Graph is an arena-owned computation DAG with per-pass scratch state.
type Graph = graph.Graph

// NodeID identifies a node within its owning Graph.
type NodeID = graph.NodeID

// New creates an empty graph.
func New() *Graph {
	return graph.New()
}
