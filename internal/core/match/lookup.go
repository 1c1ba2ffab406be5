// Package match implements the spatial matcher: pure geometric search for
// the best attachment target within gap tolerances.
package match

import "github.com/staffsight/ligature/internal/core/model"

// LookupHead scans an abscissa-ordered chord pool and returns the note head
// closest to the symbol bounds, or nil when none lies within tolerance.
//
// A head is eligible when its horizontal box gap on the symbol's outward side
// is at most maxXOutGap and its vertical box gap is at most maxYGap, both in
// pixels. Overlapping boxes have gap 0. Ties on the combined gap go to the
// first head encountered in scan order.
//
// Pure function: no side effects, the pool is read-only.
func LookupHead(symbol model.Bounds, chords []*model.Chord, maxXOutGap, maxYGap int) *model.Interpretation {
	var best *model.Interpretation
	bestGap := 0

	for _, chord := range chords {
		cb := chord.Bounds()

		// Pool is abscissa-ordered: once a chord starts beyond reach to the
		// right, no later chord can match.
		if cb.X-symbol.Right() > maxXOutGap {
			break
		}

		for _, head := range chord.Heads {
			xGap := hGap(symbol, head.Bounds)
			if xGap > maxXOutGap {
				continue
			}

			yGap := vGap(symbol, head.Bounds)
			if yGap > maxYGap {
				continue
			}

			if total := xGap + yGap; best == nil || total < bestGap {
				best = head
				bestGap = total
			}
		}
	}

	return best
}

// BoxGaps returns the horizontal and vertical separation between two boxes,
// 0 along an axis where they overlap. Used both for the initial search and
// for re-checking committed links after geometry has moved.
func BoxGaps(a, b model.Bounds) (xGap, yGap int) {
	return hGap(a, b), vGap(a, b)
}

// hGap returns the horizontal separation between two boxes, 0 when they
// overlap horizontally.
func hGap(a, b model.Bounds) int {
	switch {
	case b.X > a.Right():
		return b.X - a.Right()
	case a.X > b.Right():
		return a.X - b.Right()
	default:
		return 0
	}
}

// vGap returns the vertical separation between two boxes, 0 when they
// overlap vertically.
func vGap(a, b model.Bounds) int {
	switch {
	case b.Y > a.Bottom():
		return b.Y - a.Bottom()
	case a.Y > b.Bottom():
		return a.Y - b.Bottom()
	default:
		return 0
	}
}
