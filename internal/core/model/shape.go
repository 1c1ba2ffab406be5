package model

import "fmt"

// Shape identifies the symbol kind carried by an interpretation.
type Shape int

const (
	ShapeNone Shape = iota

	// Bowing indications for string instruments.
	ShapeUpBow
	ShapeDownBow

	// Note head shapes, the attachment targets.
	ShapeNoteheadBlack
	ShapeNoteheadVoid
	ShapeNoteheadWhole
)

var shapeNames = map[Shape]string{
	ShapeNone:          "none",
	ShapeUpBow:         "upbow",
	ShapeDownBow:       "downbow",
	ShapeNoteheadBlack: "notehead_black",
	ShapeNoteheadVoid:  "notehead_void",
	ShapeNoteheadWhole: "notehead_whole",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// IsBowing reports whether the shape is a bowing indication (upbow or downbow).
func (s Shape) IsBowing() bool {
	return s == ShapeUpBow || s == ShapeDownBow
}

// IsHead reports whether the shape is a note head.
func (s Shape) IsHead() bool {
	return s == ShapeNoteheadBlack || s == ShapeNoteheadVoid || s == ShapeNoteheadWhole
}

// ParseShape resolves a shape name as used in API payloads. The "none"
// placeholder is not a parseable shape.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name && s != ShapeNone {
			return s, nil
		}
	}
	return ShapeNone, fmt.Errorf("unknown shape %q", name)
}
