package model

import "sort"

// Chord is a head-bearing chord, the candidate target element of an
// attachment search. Heads are kept ordered by ordinate.
type Chord struct {
	Heads []*Interpretation `json:"heads"`
}

func NewChord(heads ...*Interpretation) *Chord {
	c := &Chord{Heads: heads}
	sort.SliceStable(c.Heads, func(a, b int) bool {
		return c.Heads[a].Bounds.Y < c.Heads[b].Bounds.Y
	})

	return c
}

// Bounds returns the union of the head bounds. Zero bounds for an empty chord.
func (c *Chord) Bounds() Bounds {
	if len(c.Heads) == 0 {
		return Bounds{}
	}

	b := c.Heads[0].Bounds
	for _, h := range c.Heads[1:] {
		b = b.Union(h.Bounds)
	}

	return b
}

// SortChordsByAbscissa normalizes a candidate pool into the abscissa order the
// spatial matcher requires.
func SortChordsByAbscissa(chords []*Chord) {
	sort.SliceStable(chords, func(a, b int) bool {
		return chords[a].Bounds().X < chords[b].Bounds().X
	})
}
