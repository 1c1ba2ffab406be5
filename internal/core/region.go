package core

import (
	"sort"

	"github.com/google/uuid"

	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/graph"
)

// Region is one independently processed structural region of a sheet. It
// exclusively owns its interpretation graph, its scale and its candidate
// chord pool; callers must serialize access per region (the core does no
// locking, see package doc).
type Region struct {
	ID      string
	Profile int
	Scale   model.Scale
	Graph   *graph.Graph
	Chords  []*model.Chord
}

func NewRegion(profile int, scale model.Scale) *Region {
	return &Region{
		ID:      uuid.New().String(),
		Profile: profile,
		Scale:   scale,
		Graph:   graph.New(),
	}
}

// AddChord registers a candidate target chord, adding its heads to the graph
// and keeping the pool abscissa-ordered.
func (r *Region) AddChord(chord *model.Chord) {
	for _, head := range chord.Heads {
		if head.ID == 0 {
			r.Graph.AddNode(head)
		}
	}

	x := chord.Bounds().X
	at := sort.Search(len(r.Chords), func(i int) bool {
		return r.Chords[i].Bounds().X > x
	})

	r.Chords = append(r.Chords, nil)
	copy(r.Chords[at+1:], r.Chords[at:])
	r.Chords[at] = chord
}
