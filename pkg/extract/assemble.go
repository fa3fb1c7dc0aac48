package extract

import (
	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/clip"
	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/intersect"
	"github.com/chazu/subvol/pkg/topology"
)

// assembleSubvolume fills the mesh. Every vertex goes in before any edge
// so that chains and loops split at points found lying on them.
func (c *Context) assembleSubvolume(lines []*element.Trace, crossings []intersect.Crossing, touches []clip.Touch) {
	m := c.Mesh
	sv := c.Subvolume

	bottom := m.InsertVertices(sv.Bottom, true)
	top := m.InsertVertices(sv.Top, true)
	fracs := c.InsideFractures()
	for _, f := range fracs {
		f.VertexIDs = m.InsertVertices(f.Points(), true)
	}
	ends := make([][2]int, len(lines))
	for i, t := range lines {
		ends[i] = [2]int{m.InsertVertex(t.P[0], false), m.InsertVertex(t.P[1], false)}
	}
	for _, x := range crossings {
		id := m.InsertVertex(x.P, false)
		for _, i := range x.Traces {
			lines[i].AddVertexOn(id)
		}
		c.Points = append(c.Points, x.P)
	}
	for _, t := range touches {
		m.InsertVertex(t.P, false)
		c.Points = append(c.Points, t.P)
	}

	n := len(bottom)
	faces := make([]int, 0, n+2)
	for i := range bottom {
		j := (i + 1) % n
		faces = append(faces, m.InsertLoop([]int{bottom[i], bottom[j], top[j], top[i]},
			topology.SubvolumeEdges, topology.SubvolumeFaces))
	}
	faces = append(faces,
		m.InsertLoop(lo.Reverse(append([]int(nil), bottom...)), topology.SubvolumeEdges, topology.SubvolumeFaces),
		m.InsertLoop(top, topology.SubvolumeEdges, topology.SubvolumeFaces))
	m.AddElement(lo.Filter(faces, func(id int, _ int) bool { return id >= 0 }))

	for _, f := range fracs {
		if m.InsertLoop(f.VertexIDs, topology.FractureEdges, topology.FractureFaces) < 0 {
			c.logf("fracture %d: boundary collapses to fewer than 3 vertices, no face", f.ID)
		}
	}
	for i, t := range lines {
		m.InsertChain(ends[i][0], ends[i][1], t.VerticesOn, topology.IntersectionEdges)
	}
}

// assembleSubplane adds one subplane window and its EDGE2D traces. Trace
// endpoints on the window border split the border edges.
func (c *Context) assembleSubplane(res intersect.SubplaneResult) {
	m := c.Mesh

	ring := m.InsertVertices(res.Corners[:], true)
	ends := make([][2]int, len(res.Traces))
	for i, t := range res.Traces {
		ends[i] = [2]int{m.InsertVertex(t.P[0], false), m.InsertVertex(t.P[1], false)}
	}
	var on [4][]int
	for _, h := range res.Hits {
		on[h.Edge] = append(on[h.Edge], m.InsertVertex(h.P, false))
	}
	for _, x := range res.Crossings {
		id := m.InsertVertex(x.P, false)
		for _, i := range x.Traces {
			res.Traces[i].AddVertexOn(id)
		}
		c.Points = append(c.Points, x.P)
	}
	for _, p := range res.Points {
		m.InsertVertex(p, false)
		c.Points = append(c.Points, p)
	}

	var border []int
	for k := range ring {
		border = append(border, m.InsertChain(ring[k], ring[(k+1)%4], on[k], topology.SubvolumeEdges)...)
	}
	if len(border) >= 3 {
		m.AddElement([]int{m.InsertFace(border, topology.SubvolumeFaces)})
	}
	for i, t := range res.Traces {
		m.InsertChain(ends[i][0], ends[i][1], t.VerticesOn, topology.IntersectionEdges)
	}
}
