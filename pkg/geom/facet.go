package geom

import (
	"math"
	"sort"
)

// Facet is a planar convex ring of points with its unit normal. The normal
// is (p1-p0) x (pLast-p0), so the ring winds counter-clockwise about it.
type Facet struct {
	Points []Point3
	Normal Point3
}

// NewFacet builds a facet from an ordered ring of at least three points.
func NewFacet(pts []Point3) Facet {
	f := Facet{Points: pts}
	if len(pts) >= 3 {
		f.Normal = Normal(pts[0], pts[1], pts[len(pts)-1])
	}
	return f
}

// QuadFacet builds a facet from four ordered corners.
func QuadFacet(c [4]Point3) Facet {
	return NewFacet(c[:])
}

// Len returns the number of ring points.
func (f Facet) Len() int {
	return len(f.Points)
}

// Edge returns edge i of the closed ring.
func (f Facet) Edge(i int) (Point3, Point3) {
	return f.Points[i], f.Points[(i+1)%len(f.Points)]
}

// LinePlaneIntersection returns the point where segment p0-p1 crosses the
// plane through origin with unit normal n. Segments parallel to the plane
// have no intersection.
func LinePlaneIntersection(p0, p1, origin, n Point3) (Point3, bool) {
	d := p1.Sub(p0)
	den := n.Dot(d)
	if den == 0 || math.Abs(den) <= TightEps*d.Length() {
		return Point3{}, false
	}
	t := n.Dot(origin.Sub(p0)) / den
	if t < -TightEps || t > 1+TightEps {
		return Point3{}, false
	}
	return p0.Add(d.MulScalar(t)), true
}

// PointInQuadrilateral3D walks the four edges of a quadrilateral. A point
// within LooseEps of an edge line whose distances to both edge endpoints
// do not exceed the edge length returns 4 at once. Otherwise the result is
// the number of edges the point lies to the left of, seen along normal, so
// 4 means interior.
func PointInQuadrilateral3D(p Point3, c [4]Point3, normal Point3) int {
	return ringCount(p, c[:], normal)
}

// PointInFacet applies the PointInQuadrilateral3D walk to a ring of any
// length and reports interior-or-boundary.
func PointInFacet(p Point3, f Facet) bool {
	return len(f.Points) >= 3 && ringCount(p, f.Points, f.Normal) == len(f.Points)
}

func ringCount(p Point3, ring []Point3, normal Point3) int {
	n := len(ring)
	count := 0
	for i := range ring {
		a, b := ring[i], ring[(i+1)%n]
		edge := b.Sub(a)
		l := edge.Length()
		ap := p.Sub(a)
		if l > 0 && ap.Cross(edge).Length()/l < LooseEps &&
			ap.Length() <= l && Dist(p, b) <= l {
			return n
		}
		if edge.Cross(ap).Dot(normal) > 0 {
			count++
		}
	}
	return count
}

// LineConvexPolygonIntersection returns the point where segment p0-p1
// pierces a convex planar polygon.
func LineConvexPolygonIntersection(p0, p1 Point3, poly []Point3) (Point3, bool) {
	f := NewFacet(poly)
	if f.Len() < 3 {
		return Point3{}, false
	}
	x, ok := LinePlaneIntersection(p0, p1, poly[0], f.Normal)
	if !ok || !PointInFacet(x, f) {
		return Point3{}, false
	}
	return x, true
}

// PlanePlaneIntersection returns the two points bounding the intersection
// segment of two finite planar facets. Candidates are the edges of each
// facet crossing the other's plane inside the other; the farthest pair
// wins. The candidate set does not depend on argument order, so swapping
// a and b yields the same two points.
func PlanePlaneIntersection(a, b Facet) ([2]Point3, bool) {
	var raw []Point3
	raw = appendCrossings(raw, a, b)
	raw = appendCrossings(raw, b, a)
	if len(raw) < 2 {
		return [2]Point3{}, false
	}
	sort.Slice(raw, func(i, j int) bool { return Less(raw[i], raw[j]) })

	var pts []Point3
	for _, p := range raw {
		pts, _ = AppendUnique(pts, p, LooseEps)
	}
	if len(pts) < 2 {
		return [2]Point3{}, false
	}

	best := -1.0
	var seg [2]Point3
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if d := Dist(pts[i], pts[j]); d > best {
				best = d
				seg = [2]Point3{pts[i], pts[j]}
			}
		}
	}
	return seg, true
}

// appendCrossings adds the points where edges of f cross the plane of g
// inside g.
func appendCrossings(dst []Point3, f, g Facet) []Point3 {
	if f.Len() < 3 || g.Len() < 3 {
		return dst
	}
	for i := range f.Points {
		p0, p1 := f.Edge(i)
		x, ok := LinePlaneIntersection(p0, p1, g.Points[0], g.Normal)
		if !ok || !PointInFacet(x, g) {
			continue
		}
		dst = append(dst, x)
	}
	return dst
}

// LineLineIntersection returns the meeting point of segments a0-a1 and
// b0-b1 when their closest approach is within eps. Parallel segments have
// no single meeting point and report false.
func LineLineIntersection(a0, a1, b0, b1 Point3, eps float64) (Point3, bool) {
	d1 := a1.Sub(a0)
	d2 := b1.Sub(b0)
	r := a0.Sub(b0)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	if a <= TightEps || e <= TightEps {
		return Point3{}, false
	}
	b := d1.Dot(d2)
	c := d1.Dot(r)
	f := d2.Dot(r)
	denom := a*e - b*b
	if denom <= TightEps*a*e {
		return Point3{}, false
	}

	s := clamp01((b*f - c*e) / denom)
	t := (b*s + f) / e
	if t < 0 {
		t = 0
		s = clamp01(-c / a)
	} else if t > 1 {
		t = 1
		s = clamp01((b - c) / a)
	}

	pa := a0.Add(d1.MulScalar(s))
	pb := b0.Add(d2.MulScalar(t))
	if Dist(pa, pb) > eps {
		return Point3{}, false
	}
	return Midpoint(pa, pb), true
}

// OnSegment reports whether p lies on segment a-b within eps, endpoints
// included.
func OnSegment(p, a, b Point3, eps float64) bool {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return Near(p, a, eps)
	}
	t := ab.Dot(p.Sub(a)) / l2
	if t < 0 || t > 1 {
		return Near(p, a, eps) || Near(p, b, eps)
	}
	return Near(p, a.Add(ab.MulScalar(t)), eps)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

