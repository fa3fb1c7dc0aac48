package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// PointOnLineSegment2D reports whether p lies within eps of segment a-b
// and its projection falls between the endpoints.
func PointOnLineSegment2D(p, a, b v2.Vec, eps float64) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return math.Hypot(apx, apy) <= eps
	}
	if math.Abs(apx*aby-apy*abx)/math.Sqrt(l2) > eps {
		return false
	}
	r := (apx*abx + apy*aby) / l2
	return 0 <= r && r <= 1
}

// PointInPolygon2D is the ray-crossing test (W. R. Franklin). Points on
// the boundary may fall either way; test PointOnLineSegment2D first when
// boundary points must count as inside.
func PointInPolygon2D(p v2.Vec, ring []v2.Vec) bool {
	c := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			c = !c
		}
	}
	return c
}

// XY drops the z coordinate.
func XY(p Point3) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}
