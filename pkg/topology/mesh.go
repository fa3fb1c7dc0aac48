// Package topology assembles the deduplicated vertex, edge, face and
// element tables handed to the mesh writers.
//
// Every insertion is idempotent: a point within TightEps of an existing
// vertex, an edge joining an already joined vertex pair, or a face over an
// already used edge set returns the existing id. Ids are table indices and
// grow in insertion order, so the same input always numbers the same way.
package topology

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/spatial"
)

// Vertex is a mesh point. Priority vertices are original corners and
// survive pruning.
type Vertex struct {
	P        geom.Point3
	Priority bool
	Alive    bool
}

// Edge joins two vertices. Control is the signed tag of its category.
type Edge struct {
	V       [2]int
	Control int
	Alive   bool
}

// Face is a loop of edges in boundary order.
type Face struct {
	Edges   []int
	Control int
}

// Element is a solid bounded by faces.
type Element struct {
	Faces []int
}

// Category selects the control-word counter of a new edge or face.
type Category int

const (
	SubvolumeEdges    Category = iota // counts up from 1
	SubvolumeFaces                    // counts up from 1
	FractureEdges                     // counts down from -1
	FractureFaces                     // counts down from -1
	IntersectionEdges                 // counts down from -1
	numCategories
)

func (c Category) String() string {
	switch c {
	case SubvolumeEdges:
		return "subvolume-edges"
	case SubvolumeFaces:
		return "subvolume-faces"
	case FractureEdges:
		return "fracture-edges"
	case FractureFaces:
		return "fracture-faces"
	case IntersectionEdges:
		return "intersection-edges"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Counter hands out control words.
type Counter struct {
	Next int
	Step int
}

// Take returns the current word and advances.
func (c *Counter) Take() int {
	v := c.Next
	c.Next += c.Step
	return v
}

type cell [3]int64

// Mesh owns the topology tables of one extraction.
type Mesh struct {
	Vertices []Vertex
	Edges    []Edge
	Faces    []Face
	Elements []Element

	eps      float64
	cellSize float64
	weld     map[cell][]int
	points   *spatial.Index
	edgeKey  map[[2]int]int
	faceKey  map[string]int
	counters [numCategories]Counter
}

// New returns an empty mesh that welds vertices closer than eps. A
// non-positive or NaN eps falls back to geom.TightEps.
func New(eps float64) *Mesh {
	if !(eps > 0) {
		eps = geom.TightEps
	}
	m := &Mesh{eps: eps, cellSize: 10 * eps}
	m.counters = [numCategories]Counter{
		SubvolumeEdges:    {Next: 1, Step: 1},
		SubvolumeFaces:    {Next: 1, Step: 1},
		FractureEdges:     {Next: -1, Step: -1},
		FractureFaces:     {Next: -1, Step: -1},
		IntersectionEdges: {Next: -1, Step: -1},
	}
	m.reindex()
	return m
}

// NextControl returns the word the next insertion of cat will take.
func (m *Mesh) NextControl(cat Category) int {
	return m.counters[cat].Next
}

func (m *Mesh) reindex() {
	m.weld = make(map[cell][]int)
	m.points = spatial.New()
	m.edgeKey = make(map[[2]int]int)
	m.faceKey = make(map[string]int)
	for id, v := range m.Vertices {
		if v.Alive {
			m.index(id, v.P)
		}
	}
	for id, e := range m.Edges {
		if e.Alive {
			m.edgeKey[pairKey(e.V[0], e.V[1])] = id
		}
	}
	for id, f := range m.Faces {
		m.faceKey[edgeSetKey(f.Edges)] = id
	}
}

func (m *Mesh) cellOf(v float64) int64 {
	return int64(math.Floor(v / m.cellSize))
}

func (m *Mesh) index(id int, p geom.Point3) {
	c := cell{m.cellOf(p.X), m.cellOf(p.Y), m.cellOf(p.Z)}
	m.weld[c] = append(m.weld[c], id)
	m.points.InsertPoint(id, p, m.eps)
}

// ---------------------------------------------------------------------------
// Vertices
// ---------------------------------------------------------------------------

// FindVertex returns the lowest live vertex id within eps of p, or -1.
func (m *Mesh) FindVertex(p geom.Point3) int {
	best := -1
	for x := m.cellOf(p.X - m.eps); x <= m.cellOf(p.X+m.eps); x++ {
		for y := m.cellOf(p.Y - m.eps); y <= m.cellOf(p.Y+m.eps); y++ {
			for z := m.cellOf(p.Z - m.eps); z <= m.cellOf(p.Z+m.eps); z++ {
				for _, id := range m.weld[cell{x, y, z}] {
					v := m.Vertices[id]
					if !v.Alive || !geom.Near(v.P, p, m.eps) {
						continue
					}
					if best < 0 || id < best {
						best = id
					}
				}
			}
		}
	}
	return best
}

// InsertVertex returns the id of the vertex at p, appending it if no live
// vertex lies within eps. A priority insertion marks the existing vertex
// as priority too.
func (m *Mesh) InsertVertex(p geom.Point3, priority bool) int {
	if id := m.FindVertex(p); id >= 0 {
		if priority {
			m.Vertices[id].Priority = true
		}
		return id
	}
	id := len(m.Vertices)
	m.Vertices = append(m.Vertices, Vertex{P: p, Priority: priority, Alive: true})
	m.index(id, p)
	return id
}

// Point returns the position of vertex id.
func (m *Mesh) Point(id int) geom.Point3 {
	return m.Vertices[id].P
}

// InsertVertices inserts pts in order and returns their ids.
func (m *Mesh) InsertVertices(pts []geom.Point3, priority bool) []int {
	ids := make([]int, len(pts))
	for i, p := range pts {
		ids[i] = m.InsertVertex(p, priority)
	}
	return ids
}

// VerticesOn returns the live vertices lying strictly between a and b,
// within eps of the segment, in ascending id order.
func (m *Mesh) VerticesOn(a, b int, eps float64) []int {
	pa, pb := m.Vertices[a].P, m.Vertices[b].P
	var on []int
	for _, id := range m.points.SearchSegment(pa, pb, eps) {
		if id == a || id == b || !m.Vertices[id].Alive {
			continue
		}
		p := m.Vertices[id].P
		if geom.Near(p, pa, eps) || geom.Near(p, pb, eps) {
			continue
		}
		if geom.OnSegment(p, pa, pb, eps) {
			on = append(on, id)
		}
	}
	return on
}

// ---------------------------------------------------------------------------
// Edges
// ---------------------------------------------------------------------------

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// FindEdge returns the live edge joining a and b in either direction, or -1.
func (m *Mesh) FindEdge(a, b int) int {
	if id, ok := m.edgeKey[pairKey(a, b)]; ok {
		return id
	}
	return -1
}

// InsertEdge returns the id of the edge a-b, appending it with the next
// control word of cat if the pair is new. A degenerate edge (a == b)
// is not stored and returns -1.
func (m *Mesh) InsertEdge(a, b int, cat Category) int {
	if a == b {
		return -1
	}
	if id := m.FindEdge(a, b); id >= 0 {
		return id
	}
	id := len(m.Edges)
	m.Edges = append(m.Edges, Edge{V: [2]int{a, b}, Control: m.counters[cat].Take(), Alive: true})
	m.edgeKey[pairKey(a, b)] = id
	return id
}

// InsertChain inserts segment a-b split at every vertex in on and every
// other vertex found lying on it. Split points are ordered by distance
// from a. The returned edge ids run from a to b.
func (m *Mesh) InsertChain(a, b int, on []int, cat Category) []int {
	if a == b {
		return nil
	}
	splits := m.VerticesOn(a, b, geom.LooseEps)
	for _, id := range on {
		if id != a && id != b && !containsID(splits, id) {
			splits = append(splits, id)
		}
	}
	pa := m.Vertices[a].P
	sort.SliceStable(splits, func(i, j int) bool {
		return geom.Dist(m.Vertices[splits[i]].P, pa) < geom.Dist(m.Vertices[splits[j]].P, pa)
	})

	chain := append(append([]int{a}, splits...), b)
	edges := make([]int, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		if id := m.InsertEdge(chain[i], chain[i+1], cat); id >= 0 {
			edges = append(edges, id)
		}
	}
	return edges
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// EdgeLength returns the length of edge id.
func (m *Mesh) EdgeLength(id int) float64 {
	e := m.Edges[id]
	return geom.Dist(m.Vertices[e.V[0]].P, m.Vertices[e.V[1]].P)
}

// ---------------------------------------------------------------------------
// Faces and elements
// ---------------------------------------------------------------------------

func edgeSetKey(edges []int) string {
	s := append([]int(nil), edges...)
	sort.Ints(s)
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

// InsertFace returns the id of the face over edges, appending it with the
// next control word of cat if the edge set is new.
func (m *Mesh) InsertFace(edges []int, cat Category) int {
	key := edgeSetKey(edges)
	if id, ok := m.faceKey[key]; ok {
		return id
	}
	id := len(m.Faces)
	m.Faces = append(m.Faces, Face{Edges: append([]int(nil), edges...), Control: m.counters[cat].Take()})
	m.faceKey[key] = id
	return id
}

// InsertLoop closes the vertex ring into split edge chains and a face.
// It returns -1 if the loop has fewer than three distinct vertices.
func (m *Mesh) InsertLoop(ring []int, edgeCat, faceCat Category) int {
	var distinct []int
	for _, id := range ring {
		if len(distinct) == 0 || distinct[len(distinct)-1] != id {
			distinct = append(distinct, id)
		}
	}
	if len(distinct) > 1 && distinct[0] == distinct[len(distinct)-1] {
		distinct = distinct[:len(distinct)-1]
	}
	if len(distinct) < 3 {
		return -1
	}
	var edges []int
	for i := range distinct {
		a, b := distinct[i], distinct[(i+1)%len(distinct)]
		edges = append(edges, m.InsertChain(a, b, nil, edgeCat)...)
	}
	return m.InsertFace(edges, faceCat)
}

// AddElement appends an element bounded by faces.
func (m *Mesh) AddElement(faces []int) int {
	m.Elements = append(m.Elements, Element{Faces: append([]int(nil), faces...)})
	return len(m.Elements) - 1
}

// FaceVertices walks the edges of face id and returns its vertices in
// boundary order.
func (m *Mesh) FaceVertices(id int) []int {
	es := m.Faces[id].Edges
	if len(es) == 0 {
		return nil
	}
	first := m.Edges[es[0]].V
	if len(es) == 1 {
		return []int{first[0], first[1]}
	}
	start, cur := first[0], first[1]
	if next := m.Edges[es[1]].V; cur != next[0] && cur != next[1] {
		start, cur = cur, start
	}
	out := []int{start}
	for _, eid := range es[1:] {
		out = append(out, cur)
		v := m.Edges[eid].V
		if v[0] == cur {
			cur = v[1]
		} else {
			cur = v[0]
		}
	}
	return out
}

// Stats counts live entries.
type Stats struct {
	Vertices, Edges, Faces, Elements int
}

// Stats returns the live table sizes.
func (m *Mesh) Stats() Stats {
	s := Stats{Faces: len(m.Faces), Elements: len(m.Elements)}
	for _, v := range m.Vertices {
		if v.Alive {
			s.Vertices++
		}
	}
	for _, e := range m.Edges {
		if e.Alive {
			s.Edges++
		}
	}
	return s
}
