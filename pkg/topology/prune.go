package topology

import "github.com/samber/lo"

// Pruned reports what a pruning pass removed and how surviving ids moved.
// Vertex, Edge and Face map old ids to new ids, -1 for removed entries.
type Pruned struct {
	DeadEdges    int
	DeadVertices int

	Vertex []int
	Edge   []int
	Face   []int
}

// Prune removes isolated short edges. An edge shorter than epsLength whose
// endpoints are referenced by no other live edge dies together with its
// non-priority endpoints. The tables are then compacted, keeping relative
// order, and faces and elements are rewritten to the new ids.
func (m *Mesh) Prune(epsLength float64) Pruned {
	refs := make([]int, len(m.Vertices))
	for _, e := range m.Edges {
		if e.Alive {
			refs[e.V[0]]++
			refs[e.V[1]]++
		}
	}

	var p Pruned
	for id, e := range m.Edges {
		if !e.Alive || m.EdgeLength(id) >= epsLength {
			continue
		}
		if refs[e.V[0]] > 1 || refs[e.V[1]] > 1 {
			continue
		}
		m.Edges[id].Alive = false
		p.DeadEdges++
		for _, v := range e.V {
			if !m.Vertices[v].Priority && m.Vertices[v].Alive {
				m.Vertices[v].Alive = false
				p.DeadVertices++
			}
		}
	}

	p.Vertex = m.compactVertices()
	p.Edge = m.compactEdges(p.Vertex)
	p.Face = m.compactFaces(p.Edge)
	m.reindex()
	return p
}

func (m *Mesh) compactVertices() []int {
	remap := make([]int, len(m.Vertices))
	kept := m.Vertices[:0]
	for id, v := range m.Vertices {
		if !v.Alive {
			remap[id] = -1
			continue
		}
		remap[id] = len(kept)
		kept = append(kept, v)
	}
	m.Vertices = kept
	return remap
}

func (m *Mesh) compactEdges(vertex []int) []int {
	remap := make([]int, len(m.Edges))
	kept := m.Edges[:0]
	for id, e := range m.Edges {
		a, b := vertex[e.V[0]], vertex[e.V[1]]
		if !e.Alive || a < 0 || b < 0 {
			remap[id] = -1
			continue
		}
		e.V = [2]int{a, b}
		remap[id] = len(kept)
		kept = append(kept, e)
	}
	m.Edges = kept
	return remap
}

func (m *Mesh) compactFaces(edge []int) []int {
	remap := make([]int, len(m.Faces))
	kept := m.Faces[:0]
	for id, f := range m.Faces {
		edges := Remap(f.Edges, edge)
		if len(edges) == 0 {
			remap[id] = -1
			continue
		}
		f.Edges = edges
		remap[id] = len(kept)
		kept = append(kept, f)
	}
	m.Faces = kept

	for i, el := range m.Elements {
		m.Elements[i].Faces = Remap(el.Faces, remap)
	}
	return remap
}

// Remap rewrites ids through an old-to-new map and drops removed ones.
func Remap(ids []int, remap []int) []int {
	return lo.FilterMap(ids, func(id int, _ int) (int, bool) {
		if id < 0 || id >= len(remap) || remap[id] < 0 {
			return 0, false
		}
		return remap[id], true
	})
}
