// Package kernel defines the solid backend used to audit extraction
// results against an independent model of the subvolume. Implementations
// (sdfx) build solids from the subvolume footprint behind this interface,
// so the audit does not depend on the clipping predicates it checks.
package kernel

import (
	"fmt"

	"github.com/chazu/subvol/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance of p to the surface,
	// negative inside.
	Distance(p geom.Point3) float64
}

// Kernel builds solids.
type Kernel interface {
	// Prism extrudes a counter-clockwise footprint ring from zmin to zmax.
	Prism(footprint []v2.Vec, zmin, zmax float64) (Solid, error)
}

// Probe is a point an extraction claims lies inside the subvolume.
type Probe struct {
	Owner string // "fracture" or "trace"
	ID    int
	P     geom.Point3
}

// Violation is a probe the solid places outside by more than the tolerance.
type Violation struct {
	Probe
	Distance float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %d point (%g, %g, %g) outside by %g",
		v.Owner, v.ID, v.P.X, v.P.Y, v.P.Z, v.Distance)
}

// Audit returns the probes lying farther than tol outside s, in probe order.
func Audit(s Solid, probes []Probe, tol float64) []Violation {
	var out []Violation
	for _, p := range probes {
		if d := s.Distance(p.P); d > tol {
			out = append(out, Violation{Probe: p, Distance: d})
		}
	}
	return out
}
