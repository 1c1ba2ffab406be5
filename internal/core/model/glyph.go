package model

import "github.com/google/uuid"

// Glyph is the pixel footprint a symbol was recognized from. The owning
// interpretation keeps the bounds as its own snapshot; the glyph is only a
// back-reference into the recognition pipeline.
type Glyph struct {
	ID     string `json:"id"`
	Bounds Bounds `json:"bounds"`
}

func NewGlyph(bounds Bounds) *Glyph {
	return &Glyph{
		ID:     uuid.New().String(),
		Bounds: bounds,
	}
}
