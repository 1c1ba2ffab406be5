// Package core implements the attachment engine: it orchestrates the spatial
// matcher and the relation registry against a region's interpretation graph
// to search for, commit, and maintain symbol attachments.
//
// All operations are synchronous and run to completion; a "no match" outcome
// is an absent value, never an error. Only precondition and invariant
// violations surface as errors.
package core

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/staffsight/ligature/internal/core/match"
	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/core/relation"
	"github.com/staffsight/ligature/internal/graph"
)

// Engine is the attachment engine. It is stateless beyond its tolerance
// registry and is a pure client of the graph it is handed.
type Engine struct {
	registry *relation.Registry
	log      *zap.SugaredLogger
}

func NewEngine(registry *relation.Registry, log *zap.SugaredLogger) *Engine {
	if registry == nil {
		registry = relation.DefaultRegistry()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Engine{
		registry: registry,
		log:      log,
	}
}

// SearchLink tries to find a head to attach the symbol to, without mutating
// the graph. The effective profile is the max of the symbol-local and the
// region profile; gap maxima are resolved for the governed kind and converted
// to pixels with the region scale.
//
// Returns nil when the pool is empty or no head lies within tolerance.
func (e *Engine) SearchLink(sym *model.Interpretation, region *Region) (*relation.Link, error) {
	if sym.Bounds.IsDegenerate() {
		return nil, errors.AssertionFailedf("degenerate symbol bounds %+v", sym.Bounds)
	}

	if len(region.Chords) == 0 {
		return nil, nil
	}

	profile := relation.EffectiveProfile(sym.Profile, region.Profile)
	xOutFrac, yFrac, err := e.registry.GapMaxima(relation.KindHeadAttachment, profile)
	if err != nil {
		return nil, err
	}

	head := match.LookupHead(
		sym.Bounds,
		region.Chords,
		region.Scale.ToPixels(xOutFrac),
		region.Scale.ToPixels(yFrac))
	if head == nil {
		return nil, nil
	}

	return &relation.Link{Target: head, Kind: relation.KindHeadAttachment, Outgoing: false}, nil
}

// CommitLink applies a pending link: it adds the relation edge and clears the
// symbol's abnormal flag. The target's cached derived state is invalidated by
// the edge insertion, not recomputed here.
func (e *Engine) CommitLink(g *graph.Graph, symID graph.NodeID, link *relation.Link) (graph.Edge, error) {
	if link == nil || link.Target == nil {
		return graph.Edge{}, errors.AssertionFailedf("commit of empty link")
	}

	targetID := graph.NodeID(link.Target.ID)
	if !g.Contains(targetID) {
		return graph.Edge{}, errors.AssertionFailedf("link target %d not in graph", targetID)
	}

	source, target := targetID, symID
	if link.Outgoing {
		source, target = symID, targetID
	}

	edge, err := g.AddEdge(source, target, link.Kind)
	if err != nil {
		return graph.Edge{}, err
	}

	if sym := g.Node(symID); sym != nil {
		sym.SetAbnormal(false)
	}

	return edge, nil
}

// CreateValidAdded constructs a candidate symbol interpretation, searches for
// its link, and on success adds the node and commits the link in one step.
// An unattachable instance is discarded: no link means no graph mutation and
// a nil result.
func (e *Engine) CreateValidAdded(shape model.Shape, grade float64, glyph *model.Glyph, profile int, region *Region) (*model.Interpretation, error) {
	sym := model.NewInterpretation(glyph, shape, grade)
	sym.Profile = profile

	link, err := e.SearchLink(sym, region)
	if err != nil {
		return nil, err
	}
	if link == nil {
		e.log.Debugw("symbol discarded, no head in reach",
			"shape", shape.String(), "grade", grade, "region", region.ID)
		return nil, nil
	}

	id := region.Graph.AddNode(sym)
	if _, err := e.CommitLink(region.Graph, id, link); err != nil {
		// Keep the create-and-commit step atomic: never a node without its edge.
		region.Graph.RemoveNode(id)
		return nil, err
	}

	e.log.Infow("symbol attached",
		"shape", shape.String(), "grade", grade, "node", id, "head", link.Target.ID)

	return sym, nil
}

// SearchObsoleteLinks returns the edges among the given ones that no longer
// hold for a symbol governed by head attachment: edges of another kind,
// edges whose endpoint has left the graph, and edges whose endpoints have
// drifted out of the current gap tolerances. It removes nothing itself; the
// caller applies the removals, which allows dry runs and batching.
func (e *Engine) SearchObsoleteLinks(region *Region, edges []graph.Edge) []graph.Edge {
	g := region.Graph

	var obsolete []graph.Edge
	for _, edge := range edges {
		if edge.Kind != relation.KindHeadAttachment {
			obsolete = append(obsolete, edge)
			continue
		}

		src := g.Node(edge.Source)
		dst := g.Node(edge.Target)
		if src == nil || dst == nil {
			obsolete = append(obsolete, edge)
			continue
		}

		// Re-check geometry at the same profile the search would use today.
		sym := dst
		if src.Shape.IsBowing() {
			sym = src
		}
		profile := relation.EffectiveProfile(sym.Profile, region.Profile)
		xOutFrac, yFrac, err := e.registry.GapMaxima(relation.KindHeadAttachment, profile)
		if err != nil {
			// Unresolvable tolerances never justify dropping a link.
			continue
		}

		xGap, yGap := match.BoxGaps(src.Bounds, dst.Bounds)
		if xGap > region.Scale.ToPixels(xOutFrac) || yGap > region.Scale.ToPixels(yFrac) {
			obsolete = append(obsolete, edge)
		}
	}

	return obsolete
}

// CheckValidity re-derives the symbol's abnormal state from the live edge set
// and updates the cached flag to match. The cache is never trusted; the check
// is idempotent and otherwise side-effect-free.
func (e *Engine) CheckValidity(g *graph.Graph, id graph.NodeID) (bool, error) {
	sym := g.Node(id)
	if sym == nil {
		return false, errors.AssertionFailedf("validity check on node %d not in graph", id)
	}

	abnormal := !g.HasRelation(id, relation.KindHeadAttachment)
	sym.SetAbnormal(abnormal)

	return !abnormal, nil
}

// Staff resolves the symbol's staff by inheriting it from the attached head.
// The value is cached on the node until an edge mutation invalidates it.
// Returns nil without error when the symbol is unattached.
func (e *Engine) Staff(g *graph.Graph, id graph.NodeID) (*model.Staff, error) {
	sym := g.Node(id)
	if sym == nil {
		return nil, errors.AssertionFailedf("staff query on node %d not in graph", id)
	}

	if staff, ok := sym.CachedStaff(); ok {
		return staff, nil
	}

	for _, edge := range g.Relations(id, relation.KindHeadAttachment) {
		head := g.Opposite(id, edge)
		if head == nil {
			continue
		}
		if staff, ok := head.CachedStaff(); ok {
			sym.CacheStaff(staff)
			return staff, nil
		}
	}

	return nil, nil
}

// Voice resolves the symbol's performing voice from the attached head.
// Deliberately never cached: rhythm analysis reassigns voices independently
// of attachment, so every query re-reads the head.
func (e *Engine) Voice(g *graph.Graph, id graph.NodeID) (*model.Voice, error) {
	sym := g.Node(id)
	if sym == nil {
		return nil, errors.AssertionFailedf("voice query on node %d not in graph", id)
	}

	for _, edge := range g.Relations(id, relation.KindHeadAttachment) {
		if head := g.Opposite(id, edge); head != nil {
			return head.Voice, nil
		}
	}

	return nil, nil
}
