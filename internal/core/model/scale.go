package model

import "math"

// Fraction is a distance expressed in interline-relative units.
type Fraction float64

// Scale converts interline-relative distances into pixel distances for the
// current sheet. The interline is the measured vertical distance between two
// staff lines, in pixels.
type Scale struct {
	Interline int `json:"interline"`
}

// ToPixels converts an interline fraction to pixels, rounding half up.
func (s Scale) ToPixels(f Fraction) int {
	return int(math.Round(float64(s.Interline) * float64(f)))
}
