package model

// Staff is the staff an interpretation belongs to.
type Staff struct {
	ID int `json:"id"`
}

// Voice is the performing voice assigned by rhythm analysis. Voice values
// move around as rhythm analysis proceeds, so inherited voices are never
// cached (see the engine's Voice query).
type Voice struct {
	ID int `json:"id"`
}

// Interpretation is a candidate recognized symbol, a node in the
// interpretation graph. Head interpretations carry an intrinsic staff and
// voice; attachable symbols (bowings) inherit both through their relation.
//
// The abnormal flag and the staff cache are derived state. Edge existence in
// the graph is the source of truth; both are re-derived on demand and
// invalidated whenever an incident edge is added or removed.
type Interpretation struct {
	ID      int     `json:"id"` // assigned when added to a graph, 0 before
	Shape   Shape   `json:"shape"`
	Grade   float64 `json:"grade"`
	Bounds  Bounds  `json:"bounds"`
	Profile int     `json:"profile"`
	Glyph   *Glyph  `json:"-"`
	Voice   *Voice  `json:"-"` // intrinsic, heads only

	abnormal bool
	staff    *Staff
	staffSet bool
	ownStaff bool
}

// NewInterpretation builds an attachable symbol interpretation from a glyph.
// It starts abnormal: no relation exists yet.
func NewInterpretation(glyph *Glyph, shape Shape, grade float64) *Interpretation {
	inter := &Interpretation{
		Shape:    shape,
		Grade:    grade,
		Glyph:    glyph,
		abnormal: true,
	}
	if glyph != nil {
		inter.Bounds = glyph.Bounds
	}

	return inter
}

// NewHead builds a note-head interpretation with its intrinsic staff and voice.
func NewHead(shape Shape, grade float64, bounds Bounds, staff *Staff, voice *Voice) *Interpretation {
	return &Interpretation{
		Shape:    shape,
		Grade:    grade,
		Bounds:   bounds,
		Voice:    voice,
		staff:    staff,
		staffSet: true,
		ownStaff: true,
	}
}

// IsAbnormal reports the cached abnormal state. The cache may be stale; use
// the engine's CheckValidity to re-derive it from the live edge set.
func (i *Interpretation) IsAbnormal() bool {
	return i.abnormal
}

func (i *Interpretation) SetAbnormal(abnormal bool) {
	i.abnormal = abnormal
}

// CachedStaff returns the staff and whether it is currently resolved.
func (i *Interpretation) CachedStaff() (*Staff, bool) {
	return i.staff, i.staffSet
}

// CacheStaff records an inherited staff until the next invalidation.
func (i *Interpretation) CacheStaff(staff *Staff) {
	i.staff = staff
	i.staffSet = true
}

// InvalidateDerived drops cached derived state. Intrinsic staff values (heads)
// survive; inherited ones are cleared and must be re-resolved.
func (i *Interpretation) InvalidateDerived() {
	if !i.ownStaff {
		i.staff = nil
		i.staffSet = false
	}
}
