// Package relation catalogs the typed relation kinds of the interpretation
// graph and resolves their profile-dependent spatial tolerances.
package relation

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/staffsight/ligature/internal/core/model"
)

// Kind tags a semantic relation type. Kinds are a closed set; tolerance
// resolution and validity checks are table lookups keyed by the tag.
type Kind int

const (
	KindNone Kind = iota

	// KindHeadAttachment links an attachable symbol to the note head that
	// carries it. It is the governed kind for bowings: a bowing without one
	// is abnormal.
	KindHeadAttachment

	// KindChordSupport links a symbol to a whole chord rather than a single
	// head. Reserved for symbol families attached at chord granularity.
	KindChordSupport
)

var kindNames = map[Kind]string{
	KindNone:           "none",
	KindHeadAttachment: "head_attachment",
	KindChordSupport:   "chord_support",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name as used in configuration.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && k != KindNone {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown relation kind %q", name)
}

// MaxProfile is the loosest tolerance profile. Profiles run 0..MaxProfile.
const MaxProfile = 3

// GapSpec defines a kind's tolerance pair in interline units: a base value
// for profile 0 plus a per-profile increment. Increments must be
// non-negative so that a higher profile is never tighter.
type GapSpec struct {
	XOutGap     model.Fraction
	YGap        model.Fraction
	XOutGapStep model.Fraction
	YGapStep    model.Fraction
}

// Registry resolves tolerance pairs per relation kind.
type Registry struct {
	specs map[Kind]GapSpec
}

// DefaultSpecs returns a fresh copy of the built-in tolerance table.
func DefaultSpecs() map[Kind]GapSpec {
	return map[Kind]GapSpec{
		KindHeadAttachment: {XOutGap: 0.75, YGap: 0.6, XOutGapStep: 0.25, YGapStep: 0.2},
		KindChordSupport:   {XOutGap: 1.0, YGap: 2.0, XOutGapStep: 0.25, YGapStep: 0.5},
	}
}

// DefaultRegistry returns the built-in tolerance table.
func DefaultRegistry() *Registry {
	return &Registry{specs: DefaultSpecs()}
}

// NewRegistry builds a registry from explicit specs, rejecting negative
// increments (they would break tolerance monotonicity).
func NewRegistry(specs map[Kind]GapSpec) (*Registry, error) {
	for kind, spec := range specs {
		if spec.XOutGapStep < 0 || spec.YGapStep < 0 {
			return nil, errors.Newf("relation %s: negative profile step", kind)
		}
		if spec.XOutGap < 0 || spec.YGap < 0 {
			return nil, errors.Newf("relation %s: negative base gap", kind)
		}
	}

	return &Registry{specs: specs}, nil
}

// GapMaxima resolves the (max outward horizontal gap, max vertical gap) pair
// for a kind at a profile, in interline units. An out-of-range profile or an
// unregistered kind is a precondition violation.
func (r *Registry) GapMaxima(kind Kind, profile int) (xOut, yGap model.Fraction, err error) {
	if profile < 0 || profile > MaxProfile {
		return 0, 0, errors.AssertionFailedf("profile %d out of range [0..%d]", profile, MaxProfile)
	}

	spec, ok := r.specs[kind]
	if !ok {
		return 0, 0, errors.AssertionFailedf("no tolerance spec for relation %s", kind)
	}

	p := model.Fraction(profile)

	return spec.XOutGap + p*spec.XOutGapStep, spec.YGap + p*spec.YGapStep, nil
}

// EffectiveProfile combines a symbol-local profile with the containing
// region's profile. A region-wide relaxation never makes an individual search
// stricter than the region default, hence the max.
func EffectiveProfile(local, region int) int {
	return max(local, region)
}
