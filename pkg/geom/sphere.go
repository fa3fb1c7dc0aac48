package geom

import "math"

// Sphere is a cheap enclosing sphere used for broad-phase culling. It is an
// over-approximation; later distance tests rely on that.
type Sphere struct {
	Center Point3
	Radius float64
}

// Overlaps reports whether the two spheres can touch, allowing slack.
func (s Sphere) Overlaps(o Sphere, slack float64) bool {
	return Dist(s.Center, o.Center) <= s.Radius+o.Radius+slack
}

// QuadSphere centres the sphere on the midpoint of diagonal 0-2 and uses
// half the longer diagonal as radius.
func QuadSphere(c [4]Point3) Sphere {
	d02 := Dist(c[0], c[2])
	d13 := Dist(c[1], c[3])
	return Sphere{
		Center: Midpoint(c[0], c[2]),
		Radius: math.Max(d02, d13) / 2,
	}
}

// PolygonSphere centres the sphere on the vertex average and reaches the
// farthest vertex.
func PolygonSphere(pts []Point3) Sphere {
	if len(pts) == 0 {
		return Sphere{}
	}
	var sum Point3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	c := sum.MulScalar(1 / float64(len(pts)))
	r := 0.0
	for _, p := range pts {
		r = math.Max(r, Dist(c, p))
	}
	return Sphere{Center: c, Radius: r}
}

// SegmentSphere encloses segment a-b.
func SegmentSphere(a, b Point3) Sphere {
	return Sphere{Center: Midpoint(a, b), Radius: Dist(a, b) / 2}
}
