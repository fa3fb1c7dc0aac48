// Package spatial is a small R-tree index over integer ids, used for
// broad-phase pair finding and for locating vertices near a segment.
package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/subvol/pkg/geom"
)

const (
	minChildren = 8
	maxChildren = 32
)

func toPoint(v geom.Point3) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}

type entry struct {
	id   int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// box returns the rectangle spanning lo..hi grown by pad on every side.
// rtreego treats touching rectangles as disjoint, so pad must be positive.
func box(lo, hi geom.Point3, pad float64) rtreego.Rect {
	p := geom.Point3{X: pad, Y: pad, Z: pad}
	r, _ := rtreego.NewRectFromPoints(toPoint(lo.Sub(p)), toPoint(hi.Add(p)))
	return r
}

// Index maps axis-aligned boxes to ids.
type Index struct {
	tree *rtreego.Rtree
}

// New returns an empty index.
func New() *Index {
	return &Index{tree: rtreego.NewTree(3, minChildren, maxChildren)}
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return x.tree.Size()
}

// InsertBox indexes id under the box lo..hi grown by pad.
func (x *Index) InsertBox(id int, lo, hi geom.Point3, pad float64) {
	x.tree.Insert(&entry{id: id, rect: box(lo, hi, pad)})
}

// InsertPoint indexes id at p with tolerance tol.
func (x *Index) InsertPoint(id int, p geom.Point3, tol float64) {
	x.InsertBox(id, p, p, tol)
}

// InsertSphere indexes id under the bounding cube of s.
func (x *Index) InsertSphere(id int, s geom.Sphere, pad float64) {
	r := geom.Point3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	x.InsertBox(id, s.Center.Sub(r), s.Center.Add(r), pad)
}

// InsertSegment indexes id under the bounding box of segment a-b.
func (x *Index) InsertSegment(id int, a, b geom.Point3, pad float64) {
	x.InsertBox(id, a.Min(b), a.Max(b), pad)
}

// Search returns the ids whose boxes meet lo..hi grown by pad, in
// ascending order.
func (x *Index) Search(lo, hi geom.Point3, pad float64) []int {
	found := x.tree.SearchIntersect(box(lo, hi, pad))
	ids := make([]int, len(found))
	for i, s := range found {
		ids[i] = s.(*entry).id
	}
	sort.Ints(ids)
	return ids
}

// SearchSphere returns the ids whose boxes meet the bounding cube of s.
func (x *Index) SearchSphere(s geom.Sphere, pad float64) []int {
	r := geom.Point3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return x.Search(s.Center.Sub(r), s.Center.Add(r), pad)
}

// SearchSegment returns the ids whose boxes meet the bounding box of a-b.
func (x *Index) SearchSegment(a, b geom.Point3, pad float64) []int {
	return x.Search(a.Min(b), a.Max(b), pad)
}
