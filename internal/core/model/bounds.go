package model

// Bounds is a pixel-space bounding box.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the abscissa just past the box.
func (b Bounds) Right() int {
	return b.X + b.Width
}

// Bottom returns the ordinate just past the box.
func (b Bounds) Bottom() int {
	return b.Y + b.Height
}

// Center returns the box center point.
func (b Bounds) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// IsDegenerate reports whether the box cannot hold any pixel.
// Degenerate bounds on a search input are a precondition violation.
func (b Bounds) IsDegenerate() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Union returns the smallest box covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	x := min(b.X, o.X)
	y := min(b.Y, o.Y)
	r := max(b.Right(), o.Right())
	bt := max(b.Bottom(), o.Bottom())

	return Bounds{X: x, Y: y, Width: r - x, Height: bt - y}
}
