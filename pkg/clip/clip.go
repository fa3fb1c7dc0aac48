// Package clip trims fractures and traces to a subvolume.
//
// A fracture whose four corners are all inside is left alone. Otherwise
// the points where it crosses the side faces and the caps are collected,
// together with its own inside corners, flattened into the fracture's
// local frame and hulled; the hull becomes its new boundary. A fracture
// that yields no crossing is outside. Traces are clipped the same way but
// only keep up to two crossings.
package clip

import (
	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/hull"
	"github.com/chazu/subvol/pkg/subvolume"
)

// Summary counts clipping outcomes.
type Summary struct {
	Inside   int // untouched
	Reshaped int // boundary or endpoints replaced
	Outside  int
}

func (s *Summary) add(o Summary) {
	s.Inside += o.Inside
	s.Reshaped += o.Reshaped
	s.Outside += o.Outside
}

// ---------------------------------------------------------------------------
// Fractures
// ---------------------------------------------------------------------------

// ClipFractures clips every fracture in place.
func ClipFractures(sv *subvolume.Subvolume, fracs []*element.Fracture) Summary {
	var sum Summary
	for _, f := range fracs {
		sum.add(ClipFracture(sv, f))
	}
	return sum
}

// ClipFracture clips one fracture in place and reports its outcome.
func ClipFracture(sv *subvolume.Subvolume, f *element.Fracture) Summary {
	pts := f.Points()
	allIn := true
	for _, p := range pts {
		if !sv.Contains(p) {
			allIn = false
			break
		}
	}
	if allIn {
		f.State = element.StateInside
		return Summary{Inside: 1}
	}

	cands := candidates(sv, f)
	if len(cands) == 0 {
		f.State = element.StateOutside
		return Summary{Outside: 1}
	}
	for _, p := range pts {
		if sv.Contains(p) {
			cands, _ = geom.AppendUnique(cands, p, geom.LooseEps)
		}
	}

	poly, ok := hullOf(f, cands)
	if !ok {
		f.State = element.StateOutside
		return Summary{Outside: 1}
	}
	f.Reshape(poly)
	return Summary{Reshaped: 1}
}

// candidates collects the points where f crosses the subvolume boundary:
// face intersection segments and fracture edges piercing the caps.
func candidates(sv *subvolume.Subvolume, f *element.Fracture) []geom.Point3 {
	var cands []geom.Point3
	fs := f.Sphere()
	facet := f.Facet()

	for _, face := range sv.Faces {
		if !fs.Overlaps(face.Sphere, geom.LooseEps) {
			continue
		}
		seg, ok := geom.PlanePlaneIntersection(facet, face.Facet())
		if !ok {
			continue
		}
		cands, _ = geom.AppendUnique(cands, seg[0], geom.LooseEps)
		cands, _ = geom.AppendUnique(cands, seg[1], geom.LooseEps)
	}

	for _, top := range []bool{false, true} {
		if !fs.Overlaps(sv.CapSphere(top), geom.LooseEps) {
			continue
		}
		for i := range f.Points() {
			p0, p1 := element.Edge(f.Boundary, i)
			if x, ok := sv.CapIntersection(p0, p1, top); ok {
				cands, _ = geom.AppendUnique(cands, x, geom.LooseEps)
			}
		}
	}
	return cands
}

// hullOf flattens pts into the fracture frame, hulls them and returns the
// hull vertices in 3D. Fewer than three hull points is no polygon.
func hullOf(f *element.Fracture, pts []geom.Point3) ([]geom.Point3, bool) {
	fr, ok := f.Frame()
	if !ok {
		return nil, false
	}
	idx := hull.GrahamIndexed(fr.Flatten(pts))
	if len(idx) < 3 {
		return nil, false
	}
	poly := make([]geom.Point3, len(idx))
	for i, j := range idx {
		poly[i] = pts[j]
	}
	return poly, true
}

// ---------------------------------------------------------------------------
// Traces
// ---------------------------------------------------------------------------

// ClipTraces clips every trace in place.
func ClipTraces(sv *subvolume.Subvolume, traces []*element.Trace) Summary {
	var sum Summary
	for _, t := range traces {
		sum.add(ClipTrace(sv, t))
	}
	return sum
}

// ClipTrace clips one trace in place. With two crossings both endpoints
// are replaced, the crossing nearer the old first endpoint becoming the
// new first endpoint. With one crossing the outside endpoint is replaced.
// A single crossing with both endpoints outside only touches the boundary
// and counts as outside.
func ClipTrace(sv *subvolume.Subvolume, t *element.Trace) Summary {
	in0, in1 := sv.Contains(t.P[0]), sv.Contains(t.P[1])
	if in0 && in1 {
		t.Inside = true
		return Summary{Inside: 1}
	}

	hits := crossings(sv, t)
	p0, p1 := t.P[0], t.P[1]
	switch {
	case len(hits) == 2:
		a, b := hits[0], hits[1]
		if geom.Dist(b, t.P[0]) < geom.Dist(a, t.P[0]) {
			a, b = b, a
		}
		p0, p1 = a, b
	case len(hits) == 1 && in0:
		p1 = hits[0]
	case len(hits) == 1 && in1:
		p0 = hits[0]
	default:
		t.Inside = false
		return Summary{Outside: 1}
	}

	if geom.Dist(p0, p1) <= geom.LooseEps {
		t.Inside = false
		return Summary{Outside: 1}
	}
	t.SetEndpoints(p0, p1)
	t.Inside = true
	return Summary{Reshaped: 1}
}

// crossings returns up to two distinct points where t crosses the side
// faces or the caps.
func crossings(sv *subvolume.Subvolume, t *element.Trace) []geom.Point3 {
	var hits []geom.Point3
	ts := t.Sphere()
	add := func(p geom.Point3) bool {
		hits, _ = geom.AppendUnique(hits, p, geom.LooseEps)
		return len(hits) == 2
	}

	for _, face := range sv.Faces {
		if !ts.Overlaps(face.Sphere, geom.LooseEps) {
			continue
		}
		if x, ok := geom.LineConvexPolygonIntersection(t.P[0], t.P[1], face.Corners[:]); ok && add(x) {
			return hits
		}
	}
	for _, top := range []bool{false, true} {
		if !ts.Overlaps(sv.CapSphere(top), geom.LooseEps) {
			continue
		}
		if x, ok := sv.CapIntersection(t.P[0], t.P[1], top); ok && add(x) {
			return hits
		}
	}
	return hits
}
