package graph

import (
	"sort"
	"time"
)

// Snapshot is a read-only nodes/links view of the graph for the query
// surface.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Links []SnapshotLink `json:"links"`
	Meta  Meta           `json:"meta"`
}

// SnapshotNode flattens an interpretation for transport.
type SnapshotNode struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	Grade    float64 `json:"grade"`
	Abnormal bool    `json:"abnormal"`
}

// SnapshotLink flattens a relation edge for transport.
type SnapshotLink struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Type   string `json:"type"`
}

// Meta carries snapshot metadata.
type Meta struct {
	GeneratedAt time.Time `json:"generated_at"`
	Stats       Stats     `json:"stats"`
}

// Stats provides graph statistics.
type Stats struct {
	TotalNodes int `json:"total_nodes"`
	TotalEdges int `json:"total_edges"`
}

// Snapshot builds a deterministic view of the current nodes and edges,
// ordered by id. The abnormal flags are reported as cached; callers wanting
// fresh values run the validity check first.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]SnapshotNode, 0, len(g.nodes)),
		Links: make([]SnapshotLink, 0, g.edges),
		Meta: Meta{
			GeneratedAt: time.Now().UTC(),
			Stats:       Stats{TotalNodes: len(g.nodes), TotalEdges: g.edges},
		},
	}

	for id, inter := range g.nodes {
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:       int(id),
			Type:     inter.Shape.String(),
			Grade:    inter.Grade,
			Abnormal: inter.IsAbnormal(),
		})
	}
	sort.Slice(snap.Nodes, func(a, b int) bool { return snap.Nodes[a].ID < snap.Nodes[b].ID })

	var edges []Edge
	for _, list := range g.out {
		edges = append(edges, list...)
	}
	sort.Slice(edges, func(a, b int) bool { return edges[a].ID < edges[b].ID })

	for _, e := range edges {
		snap.Links = append(snap.Links, SnapshotLink{
			Source: int(e.Source),
			Target: int(e.Target),
			Type:   e.Kind.String(),
		})
	}

	return snap
}
