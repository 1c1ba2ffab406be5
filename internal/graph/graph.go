// Package graph holds the interpretation graph: interpretations as nodes,
// typed directed relations as edges. One instance serves one structural
// region and is mutated by exactly one recognition pass at a time, so the
// graph does no locking of its own.
package graph

import (
	"github.com/cockroachdb/errors"

	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/core/relation"
)

// NodeID is a handle into the graph's node arena. Handles are small
// monotonically assigned integers, never reused.
type NodeID int

// EdgeID is a handle to a relation edge.
type EdgeID int

// Edge is a directed, typed relation between two interpretations.
type Edge struct {
	ID     EdgeID        `json:"id"`
	Kind   relation.Kind `json:"kind"`
	Source NodeID        `json:"source"`
	Target NodeID        `json:"target"`
}

// Graph is the mutable attributed graph. Derived node state (abnormal flag,
// staff cache) depends on edge existence, so every edge mutation invalidates
// the derived caches of both endpoints.
type Graph struct {
	nodes map[NodeID]*model.Interpretation
	out   map[NodeID][]Edge
	in    map[NodeID][]Edge

	nextNode NodeID
	nextEdge EdgeID
	edges    int
}

func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]*model.Interpretation),
		out:   make(map[NodeID][]Edge),
		in:    make(map[NodeID][]Edge),
	}
}

// AddNode inserts an interpretation and assigns its graph id.
func (g *Graph) AddNode(inter *model.Interpretation) NodeID {
	g.nextNode++
	id := g.nextNode
	inter.ID = int(id)
	g.nodes[id] = inter

	return id
}

// RemoveNode drops a node and every edge incident to it. Removing an absent
// node is a no-op.
func (g *Graph) RemoveNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}

	for _, e := range append(append([]Edge{}, g.out[id]...), g.in[id]...) {
		g.RemoveEdge(e.ID)
	}

	delete(g.nodes, id)
	delete(g.out, id)
	delete(g.in, id)
}

// AddEdge creates a typed directed edge. Missing endpoints and duplicate
// edges of the same kind between the same ordered pair are structural
// inconsistencies, surfaced as assertion failures rather than repaired.
func (g *Graph) AddEdge(source, target NodeID, kind relation.Kind) (Edge, error) {
	src, ok := g.nodes[source]
	if !ok {
		return Edge{}, errors.AssertionFailedf("edge source %d not in graph", source)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return Edge{}, errors.AssertionFailedf("edge target %d not in graph", target)
	}

	for _, e := range g.out[source] {
		if e.Target == target && e.Kind == kind {
			return Edge{}, errors.AssertionFailedf(
				"duplicate %s edge %d->%d", kind, source, target)
		}
	}

	g.nextEdge++
	edge := Edge{ID: g.nextEdge, Kind: kind, Source: source, Target: target}
	g.out[source] = append(g.out[source], edge)
	g.in[target] = append(g.in[target], edge)
	g.edges++

	src.InvalidateDerived()
	dst.InvalidateDerived()

	return edge, nil
}

// RemoveEdge drops an edge by handle and reports whether it existed.
func (g *Graph) RemoveEdge(id EdgeID) bool {
	for source, list := range g.out {
		for i, e := range list {
			if e.ID != id {
				continue
			}

			g.out[source] = append(list[:i:i], list[i+1:]...)
			g.in[e.Target] = dropEdge(g.in[e.Target], id)
			g.edges--

			if src, ok := g.nodes[e.Source]; ok {
				src.InvalidateDerived()
			}
			if dst, ok := g.nodes[e.Target]; ok {
				dst.InvalidateDerived()
			}

			return true
		}
	}

	return false
}

func dropEdge(list []Edge, id EdgeID) []Edge {
	for i, e := range list {
		if e.ID == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// Node returns the interpretation behind a handle, nil when absent.
func (g *Graph) Node(id NodeID) *model.Interpretation {
	return g.nodes[id]
}

// Contains reports whether the node is currently in the graph.
func (g *Graph) Contains(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasRelation reports whether any edge of the given kind is incident to the
// node, in either direction.
func (g *Graph) HasRelation(id NodeID, kind relation.Kind) bool {
	for _, e := range g.out[id] {
		if e.Kind == kind {
			return true
		}
	}
	for _, e := range g.in[id] {
		if e.Kind == kind {
			return true
		}
	}

	return false
}

// Relations returns the edges of the given kind incident to the node,
// outgoing first, in insertion order.
func (g *Graph) Relations(id NodeID, kind relation.Kind) []Edge {
	var edges []Edge
	for _, e := range g.out[id] {
		if e.Kind == kind {
			edges = append(edges, e)
		}
	}
	for _, e := range g.in[id] {
		if e.Kind == kind {
			edges = append(edges, e)
		}
	}

	return edges
}

// Opposite returns the interpretation at the far end of an edge from the
// given node, nil when the node is not an endpoint or the far end is gone.
func (g *Graph) Opposite(id NodeID, e Edge) *model.Interpretation {
	switch id {
	case e.Source:
		return g.nodes[e.Target]
	case e.Target:
		return g.nodes[e.Source]
	default:
		return nil
	}
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the edge count.
func (g *Graph) EdgeCount() int {
	return g.edges
}
