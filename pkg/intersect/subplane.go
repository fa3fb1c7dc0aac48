package intersect

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/subvolume"
)

// BorderHit is an intersection trace endpoint lying on edge Edge of the
// subplane (edge k runs from corner k to corner k+1).
type BorderHit struct {
	Edge  int
	Trace int // index into SubplaneResult.Traces
	P     geom.Point3
}

// SubplaneResult holds the 2D artifacts of one subplane.
type SubplaneResult struct {
	Corners   [4]geom.Point3
	Traces    []*element.Trace // KindEdge2D
	Crossings []Crossing
	Hits      []BorderHit
	Points    []geom.Point3 // traces piercing the subplane
}

// Subplane cuts the subplane window with every inside fracture and trace
// near it. Fracture cuts and traces lying in the window become EDGE2D
// traces; traces piercing the window leave a single point. Anything
// shorter than epsLength is discarded, including input traces.
func Subplane(corners [4]geom.Point3, fracs []*element.Fracture, traces []*element.Trace, firstID int, epsLength float64) SubplaneResult {
	res := SubplaneResult{Corners: corners}
	plane := geom.QuadFacet(corners)
	sphere := geom.QuadSphere(corners)

	addTrace := func(seg [2]geom.Point3, aperture float64) {
		if geom.Dist(seg[0], seg[1]) < epsLength {
			return
		}
		t := element.NewTrace(firstID+len(res.Traces), element.KindEdge2D, seg[0], seg[1], aperture)
		res.Traces = append(res.Traces, t)
	}

	for _, f := range fracs {
		if !f.Inside() || !sphere.Overlaps(f.Sphere(), geom.LooseEps) {
			continue
		}
		if seg, ok := geom.PlanePlaneIntersection(f.Facet(), plane); ok {
			addTrace(seg, f.Aperture)
		}
	}

	for _, t := range traces {
		if !t.Inside || t.Length < epsLength || !sphere.Overlaps(t.Sphere(), geom.LooseEps) {
			continue
		}
		d0 := geom.DistanceToPlane(t.P[0], corners[0], plane.Normal)
		d1 := geom.DistanceToPlane(t.P[1], corners[0], plane.Normal)
		if math.Abs(d0) <= geom.LooseEps && math.Abs(d1) <= geom.LooseEps {
			if seg, ok := clipToWindow(t.P, plane); ok {
				addTrace(seg, t.Aperture)
			}
			continue
		}
		if x, ok := geom.LineConvexPolygonIntersection(t.P[0], t.P[1], corners[:]); ok {
			res.Points, _ = geom.AppendUnique(res.Points, x, geom.LooseEps)
		}
	}

	for i, t := range res.Traces {
		for _, p := range t.P {
			for k := 0; k < 4; k++ {
				if geom.OnSegment(p, corners[k], corners[(k+1)%4], geom.LooseEps) {
					res.Hits = append(res.Hits, BorderHit{Edge: k, Trace: i, P: p})
				}
			}
		}
	}
	res.Crossings = Crossings(res.Traces, geom.LooseEps)
	return res
}

// clipToWindow clips an in-plane segment to the convex window: kept
// endpoints plus crossings with the window edges, farthest pair wins.
func clipToWindow(p [2]geom.Point3, w geom.Facet) ([2]geom.Point3, bool) {
	var pts []geom.Point3
	for _, q := range p {
		if geom.PointInFacet(q, w) {
			pts, _ = geom.AppendUnique(pts, q, geom.LooseEps)
		}
	}
	for k := range w.Points {
		a, b := w.Edge(k)
		if x, ok := geom.LineLineIntersection(p[0], p[1], a, b, geom.LooseEps); ok {
			pts, _ = geom.AppendUnique(pts, x, geom.LooseEps)
		}
	}
	if len(pts) < 2 {
		return [2]geom.Point3{}, false
	}
	sort.Slice(pts, func(i, j int) bool {
		return geom.Dist(pts[i], p[0]) < geom.Dist(pts[j], p[0])
	})
	return [2]geom.Point3{pts[0], pts[len(pts)-1]}, true
}

// ReadSubplanes reads count subplane windows of four corners each.
func ReadSubplanes(r io.Reader, count int) ([][4]geom.Point3, error) {
	quads, err := subvolume.ReadQuads(r, count)
	if err != nil {
		return nil, fmt.Errorf("intersect: subplanes: %w", err)
	}
	return quads, nil
}
