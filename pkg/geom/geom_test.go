package geom

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// unitSquare is the square [0,1]x[0,1] at height z, counter-clockwise
// seen from +z.
func unitSquare(z float64) [4]Point3 {
	return [4]Point3{
		{X: 0, Y: 0, Z: z},
		{X: 1, Y: 0, Z: z},
		{X: 1, Y: 1, Z: z},
		{X: 0, Y: 1, Z: z},
	}
}

// ---------------------------------------------------------------------------
// Point helpers
// ---------------------------------------------------------------------------

func TestNearUsesGivenEpsilon(t *testing.T) {
	a := Point3{X: 1, Y: 2, Z: 3}
	b := Point3{X: 1 + 5e-11, Y: 2, Z: 3}
	c := Point3{X: 1 + 5e-6, Y: 2, Z: 3}

	if !Near(a, b, TightEps) {
		t.Error("points 5e-11 apart should be tight-equal")
	}
	if Near(a, c, TightEps) {
		t.Error("points 5e-6 apart should not be tight-equal")
	}
	if !Near(a, c, LooseEps) {
		t.Error("points 5e-6 apart should be loose-equal")
	}
}

func TestAppendUnique(t *testing.T) {
	var pts []Point3
	pts, added := AppendUnique(pts, Point3{X: 1}, LooseEps)
	if !added || len(pts) != 1 {
		t.Fatalf("first append: added=%v len=%d", added, len(pts))
	}
	pts, added = AppendUnique(pts, Point3{X: 1 + 1e-7}, LooseEps)
	if added || len(pts) != 1 {
		t.Errorf("near duplicate appended: added=%v len=%d", added, len(pts))
	}
	pts, added = AppendUnique(pts, Point3{X: 2}, LooseEps)
	if !added || len(pts) != 2 {
		t.Errorf("distinct point not appended: added=%v len=%d", added, len(pts))
	}
}

func TestFlattenQuad(t *testing.T) {
	t.Run("planar unchanged", func(t *testing.T) {
		c := unitSquare(2)
		got, moved := FlattenQuad(c, CheckPointsEps)
		if moved {
			t.Error("planar quad reported as corrected")
		}
		if got != c {
			t.Errorf("planar quad changed: %v", got)
		}
	})
	t.Run("lifted corner projected", func(t *testing.T) {
		c := unitSquare(0)
		c[2].Z = 0.25
		got, moved := FlattenQuad(c, CheckPointsEps)
		if !moved {
			t.Fatal("non-planar quad not corrected")
		}
		if math.Abs(got[2].Z) > TightEps {
			t.Errorf("corner 2 z = %g, want 0", got[2].Z)
		}
		if got[2].X != 1 || got[2].Y != 1 {
			t.Errorf("corner 2 moved in plane: %v", got[2])
		}
	})
	t.Run("within tolerance kept", func(t *testing.T) {
		c := unitSquare(0)
		c[2].Z = 1e-3
		got, moved := FlattenQuad(c, 1e-2)
		if moved || got[2].Z != 1e-3 {
			t.Errorf("corner 2 = %v moved=%v, want untouched", got[2], moved)
		}
	})
}

// ---------------------------------------------------------------------------
// Intersections
// ---------------------------------------------------------------------------

func TestLinePlaneIntersection(t *testing.T) {
	origin := Point3{}
	n := Point3{Z: 1}
	tests := []struct {
		name   string
		p0, p1 Point3
		want   Point3
		ok     bool
	}{
		{"crossing", Point3{X: 1, Y: 1, Z: -1}, Point3{X: 1, Y: 1, Z: 1}, Point3{X: 1, Y: 1}, true},
		{"touching endpoint", Point3{X: 2, Z: 0}, Point3{X: 2, Z: 3}, Point3{X: 2}, true},
		{"short of plane", Point3{Z: 1}, Point3{Z: 2}, Point3{}, false},
		{"parallel", Point3{Z: 1}, Point3{X: 5, Z: 1}, Point3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LinePlaneIntersection(tt.p0, tt.p1, origin, n)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !Near(got, tt.want, TightEps) {
				t.Errorf("point = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointInQuadrilateral3D(t *testing.T) {
	c := unitSquare(0)
	n := Point3{Z: 1}
	tests := []struct {
		name string
		p    Point3
		want int
	}{
		{"interior", Point3{X: 0.5, Y: 0.5}, 4},
		{"on edge", Point3{X: 0.5, Y: 0}, 4},
		{"on edge within loose eps", Point3{X: 0.5, Y: -5e-6}, 4},
		{"corner", Point3{X: 1, Y: 1}, 4},
		{"outside", Point3{X: 2, Y: 0.5}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInQuadrilateral3D(tt.p, c, n); got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLineConvexPolygonIntersection(t *testing.T) {
	sq := unitSquare(1)
	poly := sq[:]

	x, ok := LineConvexPolygonIntersection(Point3{X: 0.3, Y: 0.3}, Point3{X: 0.3, Y: 0.3, Z: 2}, poly)
	if !ok {
		t.Fatal("vertical segment through the square missed")
	}
	if !Near(x, Point3{X: 0.3, Y: 0.3, Z: 1}, TightEps) {
		t.Errorf("hit = %v", x)
	}

	if _, ok := LineConvexPolygonIntersection(Point3{X: 3, Y: 3}, Point3{X: 3, Y: 3, Z: 2}, poly); ok {
		t.Error("segment beside the square reported a hit")
	}
}

func TestPlanePlaneIntersection(t *testing.T) {
	horizontal := QuadFacet(unitSquare(0))
	// Vertical square in the plane x = 0.5 spanning y in [-1,2], z in [-1,1].
	vertical := QuadFacet([4]Point3{
		{X: 0.5, Y: -1, Z: -1},
		{X: 0.5, Y: 2, Z: -1},
		{X: 0.5, Y: 2, Z: 1},
		{X: 0.5, Y: -1, Z: 1},
	})

	seg, ok := PlanePlaneIntersection(horizontal, vertical)
	if !ok {
		t.Fatal("crossing facets reported no intersection")
	}
	want := [2]Point3{{X: 0.5, Y: 0}, {X: 0.5, Y: 1}}
	if !Near(seg[0], want[0], LooseEps) || !Near(seg[1], want[1], LooseEps) {
		t.Errorf("segment = %v, want %v", seg, want)
	}

	t.Run("symmetric", func(t *testing.T) {
		rev, ok := PlanePlaneIntersection(vertical, horizontal)
		if !ok {
			t.Fatal("reversed order reported no intersection")
		}
		same := seg[0] == rev[0] && seg[1] == rev[1]
		swapped := seg[0] == rev[1] && seg[1] == rev[0]
		if !same && !swapped {
			t.Errorf("A,B = %v but B,A = %v", seg, rev)
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		far := QuadFacet([4]Point3{
			{X: 5, Y: -1, Z: -1},
			{X: 5, Y: 2, Z: -1},
			{X: 5, Y: 2, Z: 1},
			{X: 5, Y: -1, Z: 1},
		})
		if _, ok := PlanePlaneIntersection(horizontal, far); ok {
			t.Error("disjoint facets reported an intersection")
		}
	})

	t.Run("parallel", func(t *testing.T) {
		if _, ok := PlanePlaneIntersection(horizontal, QuadFacet(unitSquare(1))); ok {
			t.Error("parallel facets reported an intersection")
		}
	})
}

func TestLineLineIntersection(t *testing.T) {
	x, ok := LineLineIntersection(
		Point3{X: 0, Y: 0}, Point3{X: 2, Y: 2},
		Point3{X: 0, Y: 2}, Point3{X: 2, Y: 0},
		LooseEps,
	)
	if !ok {
		t.Fatal("crossing diagonals reported no intersection")
	}
	if !Near(x, Point3{X: 1, Y: 1}, TightEps) {
		t.Errorf("crossing = %v, want (1,1,0)", x)
	}

	if _, ok := LineLineIntersection(
		Point3{}, Point3{X: 1},
		Point3{Y: 1}, Point3{X: 1, Y: 1},
		LooseEps,
	); ok {
		t.Error("parallel segments reported an intersection")
	}

	if _, ok := LineLineIntersection(
		Point3{}, Point3{X: 1},
		Point3{X: 0.5, Y: 0.5, Z: -1}, Point3{X: 0.5, Y: 0.5, Z: 1},
		LooseEps,
	); ok {
		t.Error("skew segments reported an intersection")
	}
}

// ---------------------------------------------------------------------------
// 2D predicates
// ---------------------------------------------------------------------------

func TestPointOnLineSegment2D(t *testing.T) {
	a, b := v2.Vec{X: 0, Y: 0}, v2.Vec{X: 10, Y: 0}
	tests := []struct {
		name string
		p    v2.Vec
		want bool
	}{
		{"interior", v2.Vec{X: 5, Y: 0}, true},
		{"endpoint", v2.Vec{X: 10, Y: 0}, true},
		{"off line", v2.Vec{X: 5, Y: 1}, false},
		// Collinear but beyond the segment: the parametric test must use
		// 0 <= r AND r <= 1.
		{"collinear beyond end", v2.Vec{X: 15, Y: 0}, false},
		{"collinear before start", v2.Vec{X: -3, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointOnLineSegment2D(tt.p, a, b, LooseEps); got != tt.want {
				t.Errorf("PointOnLineSegment2D(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInPolygon2D(t *testing.T) {
	// L-shaped, non-convex ring.
	ring := []v2.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 4}, {X: 0, Y: 4}}
	tests := []struct {
		p    v2.Vec
		want bool
	}{
		{v2.Vec{X: 0.5, Y: 0.5}, true},
		{v2.Vec{X: 3, Y: 0.5}, true},
		{v2.Vec{X: 0.5, Y: 3}, true},
		{v2.Vec{X: 3, Y: 3}, false},
		{v2.Vec{X: -1, Y: 0.5}, false},
	}
	for _, tt := range tests {
		if got := PointInPolygon2D(tt.p, ring); got != tt.want {
			t.Errorf("PointInPolygon2D(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Spheres and frames
// ---------------------------------------------------------------------------

func TestQuadSphereEnclosesCorners(t *testing.T) {
	c := [4]Point3{{X: 0}, {X: 4}, {X: 4, Y: 2}, {Y: 2}}
	s := QuadSphere(c)
	if !Near(s.Center, Point3{X: 2, Y: 1}, TightEps) {
		t.Errorf("center = %v, want (2,1,0)", s.Center)
	}
	if math.Abs(s.Radius-math.Sqrt(5)) > TightEps {
		t.Errorf("radius = %g, want sqrt(5)", s.Radius)
	}
	for _, p := range c {
		if Dist(p, s.Center) > s.Radius+TightEps {
			t.Errorf("corner %v outside sphere", p)
		}
	}
}

func TestSphereOverlaps(t *testing.T) {
	a := Sphere{Center: Point3{}, Radius: 1}
	if !a.Overlaps(Sphere{Center: Point3{X: 2}, Radius: 1}, 0) {
		t.Error("touching spheres should overlap")
	}
	if a.Overlaps(Sphere{Center: Point3{X: 3}, Radius: 1}, 0) {
		t.Error("separated spheres should not overlap")
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Matrix3{{2, 1, 0}, {0, 3, 1}, {1, 0, 4}}
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("invertible matrix reported singular")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += m[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(sum-want) > 1e-12 {
				t.Errorf("(m*inv)[%d][%d] = %g, want %g", i, j, sum, want)
			}
		}
	}

	if _, ok := Invert(Matrix3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}); ok {
		t.Error("singular matrix reported invertible")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	// Tilted rectangle.
	p0 := Point3{X: 1, Y: 1, Z: 1}
	p1 := Point3{X: 3, Y: 1, Z: 2}
	p3 := Point3{X: 1, Y: 2, Z: 1}
	n := Normal(p0, p1, p3)

	f, ok := NewFrame(p0, p1, p3, n)
	if !ok {
		t.Fatal("frame not invertible")
	}
	q := Midpoint(p1, p3)
	l := f.ToLocal(q)
	if math.Abs(l.Z) > 1e-12 {
		t.Errorf("in-plane point has local z = %g", l.Z)
	}
	flat := f.Flatten([]Point3{q})[0]
	back := f.FromLocal(Point3{X: flat.X, Y: flat.Y})
	if !Near(back, q, 1e-12) {
		t.Errorf("round trip = %v, want %v", back, q)
	}
	if o := f.ToLocal(p0); !Near(o, Point3{}, 1e-12) {
		t.Errorf("origin maps to %v", o)
	}
}
