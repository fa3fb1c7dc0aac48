package clip

import (
	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
)

// Touch is a point where the borders of two clipped fractures meet.
type Touch struct {
	A, B int // fracture ids
	P    geom.Point3
}

// Borders re-scans every pair of inside fractures and returns the points
// where their boundary edges meet within eps. Rectangles and polygons are
// handled alike through their boundary loops. Each point is reported once
// per pair.
func Borders(fracs []*element.Fracture, eps float64) []Touch {
	var touches []Touch
	for i, a := range fracs {
		if !a.Inside() {
			continue
		}
		sa := a.Sphere()
		for _, b := range fracs[i+1:] {
			if !b.Inside() || !sa.Overlaps(b.Sphere(), eps) {
				continue
			}
			var seen []geom.Point3
			for ea := range a.Points() {
				a0, a1 := element.Edge(a.Boundary, ea)
				for eb := range b.Points() {
					b0, b1 := element.Edge(b.Boundary, eb)
					x, ok := geom.LineLineIntersection(a0, a1, b0, b1, eps)
					if !ok {
						continue
					}
					var added bool
					if seen, added = geom.AppendUnique(seen, x, geom.LooseEps); added {
						touches = append(touches, Touch{A: a.ID, B: b.ID, P: x})
					}
				}
			}
		}
	}
	return touches
}
