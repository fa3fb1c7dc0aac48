// Package geom is the geometric predicate kernel used by the clipper and
// the assemblers: epsilon comparison of points, plane, line and polygon
// intersections, point-in-polygon tests, bounding spheres and the local
// frame used to flatten a planar element into 2D.
//
// None of these routines fail. A missing intersection is reported through
// an ok result and callers treat it as an ordinary branch.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point3 is an immutable 3D point. Two points are never compared with ==;
// use Near with the epsilon the call site needs.
type Point3 = v3.Vec

// Tolerances. TightEps is used when deduplicating topology, LooseEps when
// deciding geometric coincidence during clipping. The two are deliberately
// different and must not be merged.
const (
	TightEps       = 1e-10
	LooseEps       = 1e-5
	CheckPointsEps = 1e-6  // corner coplanarity
	HullEps        = 1e-11 // strict left turn in the hull scan
)

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point3) float64 {
	return a.Sub(b).Length()
}

// Near reports whether a and b are within eps of each other.
func Near(a, b Point3, eps float64) bool {
	return Dist(a, b) <= eps
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3) Point3 {
	return a.Add(b).MulScalar(0.5)
}

// Unit returns v scaled to length one, or the zero vector if v is zero.
func Unit(v Point3) Point3 {
	l := v.Length()
	if l == 0 {
		return Point3{}
	}
	return v.MulScalar(1 / l)
}

// Normal returns the unit normal (p1-p0) x (p3-p0) of the plane spanned by
// a corner and its two neighbours.
func Normal(p0, p1, p3 Point3) Point3 {
	return Unit(p1.Sub(p0).Cross(p3.Sub(p0)))
}

// IndexOf returns the index of the first point in pts within eps of p,
// or -1.
func IndexOf(pts []Point3, p Point3, eps float64) int {
	for i, q := range pts {
		if Near(p, q, eps) {
			return i
		}
	}
	return -1
}

// AppendUnique appends p to pts unless a point within eps is already there.
// It reports whether p was appended.
func AppendUnique(pts []Point3, p Point3, eps float64) ([]Point3, bool) {
	if IndexOf(pts, p, eps) >= 0 {
		return pts, false
	}
	return append(pts, p), true
}

// Less orders points lexicographically by x, then y, then z.
func Less(a, b Point3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// DistanceToPlane returns the signed distance of p from the plane through
// origin with unit normal n.
func DistanceToPlane(p, origin, n Point3) float64 {
	return n.Dot(p.Sub(origin))
}

// FlattenQuad checks that corner 2 of a quadrilateral lies in the plane
// through corners 0, 1 and 3. If it is farther than eps it is projected
// onto that plane. The returned flag reports a correction.
func FlattenQuad(c [4]Point3, eps float64) ([4]Point3, bool) {
	n := Normal(c[0], c[1], c[3])
	d := DistanceToPlane(c[2], c[0], n)
	if math.Abs(d) <= eps {
		return c, false
	}
	c[2] = c[2].Sub(n.MulScalar(d))
	return c, true
}
