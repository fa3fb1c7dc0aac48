package scene

import (
	"fmt"
	"math"

	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/subvolume"
)

// ValidationSeverity indicates whether a validation finding blocks
// extraction or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks extraction
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Item     string // "settings", "subvolume", "subplane", "fracture", "trace"
	ID       int    // element id or subplane index, zero for scene-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Item, e.Message)
	}
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Item, e.ID, e.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether extraction may proceed.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the Tier 1 structural checks and returns the blocking
// findings. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateSettings(s.Settings)...)
	errs = append(errs, validateSubvolume(s)...)
	errs = append(errs, validateElements(s)...)
	return errs
}

// ValidateAll runs all tiers and separates errors from warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult

	// Tier 1: structure.
	result.Errors = append(result.Errors, Validate(s)...)

	// Tier 2: geometry.
	geoErrs, geoWarnings := validateGeometry(s)
	result.Errors = append(result.Errors, geoErrs...)
	result.Warnings = append(result.Warnings, geoWarnings...)

	return result
}

// ---------------------------------------------------------------------------
// Tier 1: structure
// ---------------------------------------------------------------------------

func validateSettings(st Settings) []ValidationError {
	var errs []ValidationError
	check := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, ValidationError{
				Item:    "settings",
				Message: fmt.Sprintf("%s is %g, must be positive", name, v),
			})
		}
	}
	check("epsilon-length", st.EpsilonLength)
	check("epsilon-zero", st.Epsilon0)
	check("epsilon-check-points", st.EpsilonCheckPoints)
	return errs
}

func validateSubvolume(s *Scene) []ValidationError {
	if s.Subvolume == nil {
		if len(s.Subplanes) == 0 {
			return []ValidationError{{Item: "subvolume", Message: "scene has neither a subvolume nor subplanes"}}
		}
		return nil
	}

	var errs []ValidationError
	add := func(format string, args ...any) {
		errs = append(errs, ValidationError{Item: "subvolume", Message: fmt.Sprintf(format, args...)})
	}
	sv := s.Subvolume
	if sv.Height <= 0 {
		add("height is %g, must be positive", sv.Height)
	}
	switch sv.Shape {
	case subvolume.ShapePrism:
		if sv.Radius <= 0 {
			add("prism radius is %g, must be positive", sv.Radius)
		}
		if sv.Sides < 3 {
			add("prism has %d sides, needs at least 3", sv.Sides)
		}
	case subvolume.ShapeBox:
		if len(sv.Bottom) < 3 {
			add("box footprint has %d points, needs at least 3", len(sv.Bottom))
		}
	default:
		add("unknown shape %v", sv.Shape)
	}
	return errs
}

func validateElements(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[int]bool)
	for _, f := range s.Fractures {
		if seen[f.ID] {
			errs = append(errs, ValidationError{Item: "fracture", ID: f.ID, Message: "duplicate id"})
		}
		seen[f.ID] = true
		if f.Aperture < 0 {
			errs = append(errs, ValidationError{
				Item: "fracture", ID: f.ID,
				Message: fmt.Sprintf("aperture is %g, must not be negative", f.Aperture),
			})
		}
	}
	seen = make(map[int]bool)
	for _, t := range s.Traces {
		if seen[t.ID] {
			errs = append(errs, ValidationError{Item: "trace", ID: t.ID, Message: "duplicate id"})
		}
		seen[t.ID] = true
		if t.Aperture < 0 {
			errs = append(errs, ValidationError{
				Item: "trace", ID: t.ID,
				Message: fmt.Sprintf("aperture is %g, must not be negative", t.Aperture),
			})
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: geometry
// ---------------------------------------------------------------------------

func validateGeometry(s *Scene) ([]ValidationError, []ValidationError) {
	var errs, warnings []ValidationError
	st := s.Settings

	for _, f := range s.Fractures {
		c := f.Corners
		if geom.Dist(c[0], c[1]) <= st.Epsilon0 || geom.Dist(c[0], c[3]) <= st.Epsilon0 {
			errs = append(errs, ValidationError{Item: "fracture", ID: f.ID, Message: "degenerate corners"})
			continue
		}
		n := geom.Normal(c[0], c[1], c[3])
		if d := math.Abs(geom.DistanceToPlane(c[2], c[0], n)); d > st.EpsilonCheckPoints {
			warnings = append(warnings, ValidationError{
				Item: "fracture", ID: f.ID,
				Message:  fmt.Sprintf("corner 2 lies %g off the plane and will be projected", d),
				Severity: SeverityWarning,
			})
		}
	}

	for _, t := range s.Traces {
		if l := geom.Dist(t.From, t.To); l < st.EpsilonLength {
			warnings = append(warnings, ValidationError{
				Item: "trace", ID: t.ID,
				Message:  fmt.Sprintf("length %g is below epsilon-length and will be ignored", l),
				Severity: SeverityWarning,
			})
		}
	}

	for i, p := range s.Subplanes {
		if geom.Dist(p[0], p[1]) <= st.Epsilon0 || geom.Dist(p[0], p[3]) <= st.Epsilon0 {
			errs = append(errs, ValidationError{Item: "subplane", ID: i + 1, Message: "degenerate corners"})
		}
	}
	return errs, warnings
}
