package element

import (
	"fmt"

	"github.com/chazu/subvol/pkg/geom"
)

// Kind tells where a trace came from.
type Kind int

const (
	KindTrace3D Kind = iota // generator line element
	KindEdge3D              // fracture-fracture intersection
	KindEdge2D              // fracture/trace-subplane intersection
)

func (k Kind) String() string {
	switch k {
	case KindTrace3D:
		return "TRACE"
	case KindEdge3D:
		return "EDGE3D"
	case KindEdge2D:
		return "EDGE2D"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Trace is a 3D line segment.
type Trace struct {
	ID       int
	Kind     Kind
	P        [2]geom.Point3
	Aperture float64
	Length   float64
	Inside   bool

	// VerticesOn lists mesh vertices lying on the segment. The assembler
	// splits the segment at these before inserting it.
	VerticesOn []int
}

// NewTrace builds a trace between p0 and p1.
func NewTrace(id int, kind Kind, p0, p1 geom.Point3, aperture float64) *Trace {
	return &Trace{
		ID:       id,
		Kind:     kind,
		P:        [2]geom.Point3{p0, p1},
		Aperture: aperture,
		Length:   geom.Dist(p0, p1),
		Inside:   true,
	}
}

// SetEndpoints moves the trace and updates its length.
func (t *Trace) SetEndpoints(p0, p1 geom.Point3) {
	t.P = [2]geom.Point3{p0, p1}
	t.Length = geom.Dist(p0, p1)
}

// AddVertexOn records vertex id on the trace once.
func (t *Trace) AddVertexOn(id int) {
	for _, v := range t.VerticesOn {
		if v == id {
			return
		}
	}
	t.VerticesOn = append(t.VerticesOn, id)
}

// Sphere returns the broad-phase sphere of the segment.
func (t *Trace) Sphere() geom.Sphere {
	return geom.SegmentSphere(t.P[0], t.P[1])
}
