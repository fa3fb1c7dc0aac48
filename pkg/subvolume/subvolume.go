// Package subvolume models the bounded region that every element is
// clipped against: a regular N-gon prism or a box extruded from an
// arbitrary footprint ring.
package subvolume

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/geom"
)

// ErrMalformedInput marks input that cannot describe a subvolume or a
// subplane. It is fatal for the run.
var ErrMalformedInput = errors.New("malformed input")

// Shape selects the subvolume construction.
type Shape int

const (
	ShapePrism Shape = iota
	ShapeBox
)

func (s Shape) String() string {
	switch s {
	case ShapePrism:
		return "prism"
	case ShapeBox:
		return "box"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape maps a shape code to a Shape.
func ParseShape(code string) (Shape, error) {
	switch code {
	case "prism":
		return ShapePrism, nil
	case "box", "quader":
		return ShapeBox, nil
	}
	return 0, fmt.Errorf("subvolume: unknown shape %q: %w", code, ErrMalformedInput)
}

// Face is one side quadrilateral: bottom[i], bottom[i+1], top[i+1],
// top[i]. The normal points out of the subvolume.
type Face struct {
	Corners [4]geom.Point3
	Normal  geom.Point3
	Sides   [2]float64 // ring edge length, height
	Sphere  geom.Sphere
}

// Facet returns the face as a facet.
func (f Face) Facet() geom.Facet {
	return geom.Facet{Points: f.Corners[:], Normal: f.Normal}
}

// Subvolume is a right prism over a counter-clockwise footprint ring.
type Subvolume struct {
	Shape  Shape
	Bottom []geom.Point3
	Top    []geom.Point3
	Height float64
	Faces  []Face

	// Footprint is the bottom ring projected to the xy plane.
	Footprint []v2.Vec

	BottomSphere geom.Sphere
	TopSphere    geom.Sphere
}

// NewPrism builds a regular prism centred on center. Ring vertex i sits at
// angle pi/N + 2*pi*i/N, so a four-sided prism is an axis-aligned square
// of side radius*sqrt(2).
func NewPrism(center geom.Point3, radius float64, sides int, height float64) (*Subvolume, error) {
	if sides < 3 {
		return nil, fmt.Errorf("subvolume: prism needs at least 3 sides, got %d: %w", sides, ErrMalformedInput)
	}
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("subvolume: prism radius %g and height %g must be positive: %w", radius, height, ErrMalformedInput)
	}

	z := center.Z - height/2
	bottom := lo.Times(sides, func(i int) geom.Point3 {
		theta := math.Pi/float64(sides) + 2*math.Pi*float64(i)/float64(sides)
		return geom.Point3{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
			Z: z,
		}
	})

	s := build(ShapePrism, bottom, height)
	for i := range s.Faces {
		s.Faces[i].Sphere = geom.QuadSphere(s.Faces[i].Corners)
	}
	s.BottomSphere = geom.Sphere{Center: geom.Point3{X: center.X, Y: center.Y, Z: z}, Radius: radius}
	s.TopSphere = geom.Sphere{Center: geom.Point3{X: center.X, Y: center.Y, Z: z + height}, Radius: radius}
	return s, nil
}

// NewBox builds a box over an explicit bottom ring. A closing point equal
// to the first is dropped and the ring is rewound counter-clockwise.
func NewBox(bottom []geom.Point3, height float64) (*Subvolume, error) {
	ring := append([]geom.Point3(nil), bottom...)
	if n := len(ring); n > 1 && geom.Near(ring[0], ring[n-1], geom.TightEps) {
		ring = ring[:n-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("subvolume: box footprint needs at least 3 points, got %d: %w", len(ring), ErrMalformedInput)
	}
	if height <= 0 {
		return nil, fmt.Errorf("subvolume: box height %g must be positive: %w", height, ErrMalformedInput)
	}

	switch footprint(ring).Orientation() {
	case orb.CW:
		ring = lo.Reverse(ring)
	case orb.CCW:
	default:
		return nil, fmt.Errorf("subvolume: box footprint has no area: %w", ErrMalformedInput)
	}

	s := build(ShapeBox, ring, height)
	for i := range s.Faces {
		s.Faces[i].Sphere = geom.PolygonSphere(s.Faces[i].Corners[:])
	}
	s.BottomSphere = geom.PolygonSphere(s.Bottom)
	s.TopSphere = geom.PolygonSphere(s.Top)
	return s, nil
}

func footprint(ring []geom.Point3) orb.Ring {
	return lo.Map(ring, func(p geom.Point3, _ int) orb.Point {
		return orb.Point{p.X, p.Y}
	})
}

func build(shape Shape, bottom []geom.Point3, height float64) *Subvolume {
	up := geom.Point3{Z: height}
	top := lo.Map(bottom, func(p geom.Point3, _ int) geom.Point3 { return p.Add(up) })

	n := len(bottom)
	faces := make([]Face, n)
	for i := range faces {
		j := (i + 1) % n
		c := [4]geom.Point3{bottom[i], bottom[j], top[j], top[i]}
		faces[i] = Face{
			Corners: c,
			Normal:  geom.Normal(c[0], c[1], c[3]),
			Sides:   [2]float64{geom.Dist(c[0], c[1]), height},
		}
	}
	return &Subvolume{
		Shape:     shape,
		Bottom:    bottom,
		Top:       top,
		Height:    height,
		Faces:     faces,
		Footprint: lo.Map(bottom, func(p geom.Point3, _ int) v2.Vec { return geom.XY(p) }),
	}
}

// ZRange returns the bottom and top heights.
func (s *Subvolume) ZRange() (float64, float64) {
	z := s.Bottom[0].Z
	return z, z + s.Height
}

// Contains reports whether p is inside or on the subvolume. The z range
// is checked first; then p is on a footprint edge within LooseEps or
// inside the footprint by ray crossing.
func (s *Subvolume) Contains(p geom.Point3) bool {
	zmin, zmax := s.ZRange()
	if p.Z < zmin-geom.LooseEps || p.Z > zmax+geom.LooseEps {
		return false
	}
	q := geom.XY(p)
	ring := s.Footprint
	n := len(ring)
	for i := range ring {
		if geom.PointOnLineSegment2D(q, ring[i], ring[(i+1)%n], geom.LooseEps) {
			return true
		}
	}
	return geom.PointInPolygon2D(q, ring)
}

// CapIntersection returns the point where segment p0-p1 crosses the top
// or bottom cap. Prism caps are convex and use the convex polygon test;
// box caps may be concave and use the footprint test.
func (s *Subvolume) CapIntersection(p0, p1 geom.Point3, top bool) (geom.Point3, bool) {
	ring := s.Bottom
	if top {
		ring = s.Top
	}
	if s.Shape == ShapePrism {
		return geom.LineConvexPolygonIntersection(p0, p1, ring)
	}
	x, ok := geom.LinePlaneIntersection(p0, p1, ring[0], geom.Point3{Z: 1})
	if !ok || !s.Contains(x) {
		return geom.Point3{}, false
	}
	return x, true
}

// CapSphere returns the broad-phase sphere of a cap.
func (s *Subvolume) CapSphere(top bool) geom.Sphere {
	if top {
		return s.TopSphere
	}
	return s.BottomSphere
}
