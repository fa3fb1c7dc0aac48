// Package intersect computes the intersection artifacts that the mesh
// assembler stitches together: fracture-fracture intersection traces in
// 3D, fracture and trace cuts through a subplane, and the crossings of
// those traces with each other.
package intersect

import (
	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/spatial"
)

// Crossing is a point where two or more intersection traces meet. Traces
// holds indices into the trace slice the crossing was computed from.
type Crossing struct {
	P      geom.Point3
	Traces []int
}

// Result holds the 3D intersection artifacts of one subvolume.
type Result struct {
	Traces []*element.Trace // KindEdge3D

	// Lines is Traces followed by the inside input traces. Crossing
	// indices refer to Lines.
	Lines     []*element.Trace
	Crossings []Crossing
}

// Fractures intersects every pair of inside fractures whose spheres
// overlap. Segments shorter than epsLength are dropped as noise. Trace
// ids count up from firstID. Crossings are found once over the new
// traces together with the inside input traces.
func Fractures(fracs []*element.Fracture, traces []*element.Trace, firstID int, epsLength float64) Result {
	idx := spatial.New()
	for i, f := range fracs {
		if f.Inside() {
			idx.InsertSphere(i, f.Sphere(), geom.LooseEps)
		}
	}

	var res Result
	for i, a := range fracs {
		if !a.Inside() {
			continue
		}
		sa := a.Sphere()
		for _, j := range idx.SearchSphere(sa, geom.LooseEps) {
			if j <= i {
				continue
			}
			b := fracs[j]
			if !sa.Overlaps(b.Sphere(), geom.LooseEps) {
				continue
			}
			seg, ok := geom.PlanePlaneIntersection(a.Facet(), b.Facet())
			if !ok || geom.Dist(seg[0], seg[1]) < epsLength {
				continue
			}
			aperture := (a.Aperture + b.Aperture) / 2
			t := element.NewTrace(firstID+len(res.Traces), element.KindEdge3D, seg[0], seg[1], aperture)
			res.Traces = append(res.Traces, t)
		}
	}
	res.Lines = append([]*element.Trace(nil), res.Traces...)
	for _, t := range traces {
		if t.Inside {
			res.Lines = append(res.Lines, t)
		}
	}
	res.Crossings = Crossings(res.Lines, geom.LooseEps)
	return res
}

// Crossings finds the points where traces meet within eps. Points closer
// than LooseEps are merged and list every trace through them.
func Crossings(traces []*element.Trace, eps float64) []Crossing {
	idx := spatial.New()
	for i, t := range traces {
		idx.InsertSegment(i, t.P[0], t.P[1], eps)
	}

	var out []Crossing
	for i, a := range traces {
		for _, j := range idx.SearchSegment(a.P[0], a.P[1], eps) {
			if j <= i {
				continue
			}
			b := traces[j]
			x, ok := geom.LineLineIntersection(a.P[0], a.P[1], b.P[0], b.P[1], eps)
			if !ok {
				continue
			}
			out = mergeCrossing(out, x, i, j)
		}
	}
	return out
}

func mergeCrossing(cs []Crossing, p geom.Point3, ids ...int) []Crossing {
	for k := range cs {
		if !geom.Near(cs[k].P, p, geom.LooseEps) {
			continue
		}
		for _, id := range ids {
			cs[k].Traces = appendID(cs[k].Traces, id)
		}
		return cs
	}
	return append(cs, Crossing{P: p, Traces: ids})
}

func appendID(ids []int, id int) []int {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
