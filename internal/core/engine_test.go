package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/core/relation"
	"github.com/staffsight/ligature/internal/graph"
)

// Default tolerances for head attachment at interline 20 and profile 0:
// x out gap 15px, y gap 12px.

func testRegion(profile int) *Region {
	return NewRegion(profile, model.Scale{Interline: 20})
}

func headAt(x, y, staffID, voiceID int) *model.Interpretation {
	return model.NewHead(
		model.ShapeNoteheadBlack, 0.9,
		model.Bounds{X: x, Y: y, Width: 14, Height: 12},
		&model.Staff{ID: staffID}, &model.Voice{ID: voiceID})
}

func symbolAt(x, y int) *model.Interpretation {
	glyph := model.NewGlyph(model.Bounds{X: x, Y: y, Width: 12, Height: 14})
	return model.NewInterpretation(glyph, model.ShapeUpBow, 0.8)
}

func TestSearchLinkEmptyPool(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)

	link, err := e.SearchLink(symbolAt(0, 0), region)
	require.NoError(t, err)
	assert.Nil(t, link)
	assert.Equal(t, 0, region.Graph.Len())
}

func TestSearchLinkFindsHead(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	h := headAt(100, 100, 1, 2)
	region.AddChord(model.NewChord(h))

	// Symbol just above the head: x overlap, y gap 6
	sym := symbolAt(100, 80)
	link, err := e.SearchLink(sym, region)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, h, link.Target)
	assert.Equal(t, relation.KindHeadAttachment, link.Kind)
	assert.False(t, link.Outgoing)

	// Search alone never mutates the graph
	assert.Equal(t, 1, region.Graph.Len())
	assert.Equal(t, 0, region.Graph.EdgeCount())
}

func TestSearchLinkNoHeadInReach(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(500, 500, 1, 1)))

	link, err := e.SearchLink(symbolAt(0, 0), region)
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestSearchLinkDegenerateBounds(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(0, 0, 1, 1)))

	sym := model.NewInterpretation(nil, model.ShapeUpBow, 0.8)
	_, err := e.SearchLink(sym, region)
	assert.Error(t, err)
}

func TestRegionProfileLoosensTolerance(t *testing.T) {
	// Head at horizontal gap 20px: out of reach at profile 0 (15px),
	// within reach at profile 3 (30px).
	e := NewEngine(nil, nil)

	strict := testRegion(0)
	strict.AddChord(model.NewChord(headAt(120, 0, 1, 1)))
	sym := symbolAt(88, 0) // right edge 100, gap 20

	link, err := e.SearchLink(sym, strict)
	require.NoError(t, err)
	assert.Nil(t, link)

	loose := testRegion(3)
	loose.AddChord(model.NewChord(headAt(120, 0, 1, 1)))

	link, err = e.SearchLink(sym, loose)
	require.NoError(t, err)
	assert.NotNil(t, link)
}

func TestSymbolProfileLoosensTolerance(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(120, 0, 1, 1)))

	sym := symbolAt(88, 0)
	sym.Profile = 3

	link, err := e.SearchLink(sym, region)
	require.NoError(t, err)
	assert.NotNil(t, link)
}

func TestCreateValidAddedAttaches(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(100, 100, 4, 9)))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	// Exactly one node and one edge were added
	assert.Equal(t, 2, region.Graph.Len())
	assert.Equal(t, 1, region.Graph.EdgeCount())
	assert.False(t, sym.IsAbnormal())
}

func TestCreateValidAddedDiscardsUnattachable(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(500, 500, 1, 1)))

	glyph := model.NewGlyph(model.Bounds{X: 0, Y: 0, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	assert.Nil(t, sym)

	// No graph mutation at all
	assert.Equal(t, 1, region.Graph.Len())
	assert.Equal(t, 0, region.Graph.EdgeCount())
}

func TestCheckValidityIdempotent(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(100, 100, 1, 1)))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)
	nodes, edges := region.Graph.Len(), region.Graph.EdgeCount()

	valid, err := e.CheckValidity(region.Graph, id)
	require.NoError(t, err)
	assert.True(t, valid)

	again, err := e.CheckValidity(region.Graph, id)
	require.NoError(t, err)
	assert.Equal(t, valid, again)
	assert.Equal(t, nodes, region.Graph.Len())
	assert.Equal(t, edges, region.Graph.EdgeCount())
}

func TestCheckValidityRederivesFromEdges(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(100, 100, 1, 1)))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)

	// Remove the governing edge behind the cache's back
	edges := region.Graph.Relations(id, relation.KindHeadAttachment)
	require.Len(t, edges, 1)
	region.Graph.RemoveEdge(edges[0].ID)

	valid, err := e.CheckValidity(region.Graph, id)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.True(t, sym.IsAbnormal())
}

func TestCheckValidityUnknownNode(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)

	_, err := e.CheckValidity(region.Graph, graph.NodeID(42))
	assert.Error(t, err)
}

func TestStaffInheritance(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(100, 100, 4, 9)))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)

	staff, err := e.Staff(region.Graph, id)
	require.NoError(t, err)
	require.NotNil(t, staff)
	assert.Equal(t, 4, staff.ID)

	// Cached now
	cached, ok := sym.CachedStaff()
	assert.True(t, ok)
	assert.Equal(t, staff, cached)

	// Removing the edge invalidates the cache; the query then finds nothing
	edges := region.Graph.Relations(id, relation.KindHeadAttachment)
	require.Len(t, edges, 1)
	region.Graph.RemoveEdge(edges[0].ID)

	staff, err = e.Staff(region.Graph, id)
	require.NoError(t, err)
	assert.Nil(t, staff)
}

func TestVoiceNeverCached(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	h := headAt(100, 100, 4, 9)
	region.AddChord(model.NewChord(h))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)

	voice, err := e.Voice(region.Graph, id)
	require.NoError(t, err)
	require.NotNil(t, voice)
	assert.Equal(t, 9, voice.ID)

	// Rhythm analysis reassigns the head's voice: the next query sees it
	h.Voice = &model.Voice{ID: 11}

	voice, err = e.Voice(region.Graph, id)
	require.NoError(t, err)
	require.NotNil(t, voice)
	assert.Equal(t, 11, voice.ID)
}

func TestSearchObsoleteLinks(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	h := headAt(100, 100, 1, 1)
	region.AddChord(model.NewChord(h))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)
	edges := region.Graph.Relations(id, relation.KindHeadAttachment)
	require.Len(t, edges, 1)

	// Target alive and in reach: nothing to remove
	assert.Empty(t, e.SearchObsoleteLinks(region, edges))

	// Target gone: the link is returned for removal, but not removed
	region.Graph.RemoveNode(graph.NodeID(h.ID))
	// RemoveNode already dropped the edge from the graph; the caller still
	// holds the stale edge list and asks what is obsolete in it.
	obsolete := e.SearchObsoleteLinks(region, edges)
	require.Len(t, obsolete, 1)
	assert.Equal(t, edges[0].ID, obsolete[0].ID)
}

func TestSearchObsoleteLinksGeometryDrift(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	h := headAt(100, 100, 1, 1)
	region.AddChord(model.NewChord(h))

	glyph := model.NewGlyph(model.Bounds{X: 100, Y: 80, Width: 12, Height: 14})
	sym, err := e.CreateValidAdded(model.ShapeUpBow, 0.8, glyph, 0, region)
	require.NoError(t, err)
	require.NotNil(t, sym)

	id := graph.NodeID(sym.ID)
	edges := region.Graph.Relations(id, relation.KindHeadAttachment)
	require.Len(t, edges, 1)
	assert.Empty(t, e.SearchObsoleteLinks(region, edges))

	// The head drifts far out of the 15px/12px reach after the commit
	h.Bounds = model.Bounds{X: 500, Y: 500, Width: 14, Height: 12}

	obsolete := e.SearchObsoleteLinks(region, edges)
	require.Len(t, obsolete, 1)
	assert.Equal(t, edges[0].ID, obsolete[0].ID)

	// The query itself removes nothing
	assert.Equal(t, 1, region.Graph.EdgeCount())

	// A loosened profile can keep a mildly drifted link alive
	h.Bounds = model.Bounds{X: 132, Y: 80, Width: 14, Height: 12} // x gap 20px
	require.Len(t, e.SearchObsoleteLinks(region, edges), 1)

	region.Profile = 3 // x out gap becomes 30px
	assert.Empty(t, e.SearchObsoleteLinks(region, edges))
}

func TestSearchObsoleteLinksForeignKind(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	headID := region.Graph.AddNode(headAt(0, 0, 1, 1))
	symID := region.Graph.AddNode(symbolAt(0, 20))

	edge, err := region.Graph.AddEdge(headID, symID, relation.KindChordSupport)
	require.NoError(t, err)

	// A kind the symbol cannot carry is obsolete for it
	obsolete := e.SearchObsoleteLinks(region, []graph.Edge{edge})
	require.Len(t, obsolete, 1)
}

func TestCommitLinkDuplicateIsInvariantFailure(t *testing.T) {
	e := NewEngine(nil, nil)
	region := testRegion(0)
	h := headAt(100, 100, 1, 1)
	region.AddChord(model.NewChord(h))

	sym := symbolAt(100, 80)
	link, err := e.SearchLink(sym, region)
	require.NoError(t, err)
	require.NotNil(t, link)

	id := region.Graph.AddNode(sym)
	_, err = e.CommitLink(region.Graph, id, link)
	require.NoError(t, err)

	_, err = e.CommitLink(region.Graph, id, link)
	assert.Error(t, err)
}

func TestRegionKeepsChordsAbscissaOrdered(t *testing.T) {
	region := testRegion(0)
	region.AddChord(model.NewChord(headAt(300, 0, 1, 1)))
	region.AddChord(model.NewChord(headAt(100, 0, 1, 1)))
	region.AddChord(model.NewChord(headAt(200, 0, 1, 1)))

	require.Len(t, region.Chords, 3)
	assert.Equal(t, 100, region.Chords[0].Bounds().X)
	assert.Equal(t, 200, region.Chords[1].Bounds().X)
	assert.Equal(t, 300, region.Chords[2].Bounds().X)

	// Heads were added to the graph alongside
	assert.Equal(t, 3, region.Graph.Len())
}
