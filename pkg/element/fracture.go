// Package element defines the fracture and trace elements that flow
// through clipping, intersection and mesh assembly.
package element

import (
	"fmt"

	"github.com/chazu/subvol/pkg/geom"
)

// State records where an element sits relative to the subvolume.
type State int

const (
	StateInside   State = iota // unclipped and fully inside
	StateOutside               // excluded from all downstream steps
	StateReshaped              // partially inside, boundary replaced by a hull
)

func (s State) String() string {
	switch s {
	case StateInside:
		return "inside"
	case StateOutside:
		return "outside"
	case StateReshaped:
		return "reshaped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Boundary is the outline of a fracture. It is either the original
// Rectangle or, after clipping, a convex Polygon.
type Boundary interface {
	Points() []geom.Point3
	isBoundary()
}

// Rectangle is four ordered corners.
type Rectangle [4]geom.Point3

// Points returns the corners as a slice.
func (r Rectangle) Points() []geom.Point3 { return r[:] }
func (Rectangle) isBoundary()             {}

// Polygon is a convex ring of at least three points.
type Polygon []geom.Point3

// Points returns the ring.
func (p Polygon) Points() []geom.Point3 { return p }
func (Polygon) isBoundary()             {}

// Edge returns edge i of the closed boundary loop.
func Edge(b Boundary, i int) (geom.Point3, geom.Point3) {
	pts := b.Points()
	return pts[i], pts[(i+1)%len(pts)]
}

// Fracture is a planar discontinuity. It starts as a rectangle produced
// by the generator and may be reshaped into a convex polygon by clipping.
type Fracture struct {
	ID       int
	Boundary Boundary

	// Corners are the generator's corners after coplanarity correction.
	// The local frame is anchored on corners 0, 1 and 3 even after the
	// boundary has been reshaped.
	Corners   [4]geom.Point3
	Normal    geom.Point3
	Sides     [2]float64 // |c1-c0|, |c3-c0|
	Diagonals [2]float64 // |c2-c0|, |c3-c1|
	Aperture  float64
	State     State

	// VertexIDs are the mesh vertices of the boundary, attached by the
	// topology assembler in boundary order.
	VertexIDs []int
}

// NewFracture builds a rectangular fracture with the default coplanarity
// tolerance geom.CheckPointsEps.
func NewFracture(id int, corners [4]geom.Point3, aperture float64) (*Fracture, bool) {
	return NewFractureTol(id, corners, aperture, geom.CheckPointsEps)
}

// NewFractureTol builds a rectangular fracture. Corner 2 is projected onto
// the plane of the other three if it strays farther than checkEps; the
// second result reports that correction so the caller can log it.
func NewFractureTol(id int, corners [4]geom.Point3, aperture, checkEps float64) (*Fracture, bool) {
	c, corrected := geom.FlattenQuad(corners, checkEps)
	f := &Fracture{
		ID:       id,
		Boundary: Rectangle(c),
		Corners:  c,
		Normal:   geom.Normal(c[0], c[1], c[3]),
		Sides:    [2]float64{geom.Dist(c[0], c[1]), geom.Dist(c[0], c[3])},
		Diagonals: [2]float64{
			geom.Dist(c[0], c[2]),
			geom.Dist(c[1], c[3]),
		},
		Aperture: aperture,
		State:    StateInside,
	}
	return f, corrected
}

// IsPolygon reports whether clipping replaced the rectangle.
func (f *Fracture) IsPolygon() bool {
	_, ok := f.Boundary.(Polygon)
	return ok
}

// HullSize returns the number of boundary points.
func (f *Fracture) HullSize() int {
	return len(f.Boundary.Points())
}

// Points returns the current boundary points.
func (f *Fracture) Points() []geom.Point3 {
	return f.Boundary.Points()
}

// Inside reports whether the fracture takes part in downstream steps.
func (f *Fracture) Inside() bool {
	return f.State != StateOutside
}

// Facet returns the boundary as a facet carrying the fracture normal.
func (f *Fracture) Facet() geom.Facet {
	return geom.Facet{Points: f.Points(), Normal: f.Normal}
}

// Sphere returns the broad-phase sphere: the diagonal sphere for a
// rectangle, the vertex-average sphere for a polygon.
func (f *Fracture) Sphere() geom.Sphere {
	switch b := f.Boundary.(type) {
	case Rectangle:
		return geom.QuadSphere(b)
	default:
		return geom.PolygonSphere(b.Points())
	}
}

// Frame returns the local frame anchored on corners 0, 1 and 3.
func (f *Fracture) Frame() (geom.Frame, bool) {
	return geom.NewFrame(f.Corners[0], f.Corners[1], f.Corners[3], f.Normal)
}

// Reshape replaces the boundary with a clipped convex polygon.
func (f *Fracture) Reshape(poly []geom.Point3) {
	f.Boundary = Polygon(poly)
	f.State = StateReshaped
}
