// Package hull computes 2D convex hulls with a Graham scan.
//
// The scan follows the classic textbook formulation: anchor on the
// lowest, rightmost point, sort by polar angle with signed-area
// comparisons, drop points that are collinear with the anchor and closer
// than a sibling, then walk an explicit stack. Tie-breaking is fixed so
// that the same input always yields the same hull.
package hull

import (
	"math"
	"sort"

	"github.com/samber/lo"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

const (
	// leftTurnEps is the signed area a triple must exceed to count as a
	// strict left turn during the scan.
	leftTurnEps = 1e-11
	// collinearEps is the signed area below which two sorted points are
	// treated as lying on the same ray from the anchor.
	collinearEps = 1e-12
)

type point struct {
	v       v2.Vec
	idx     int
	deleted bool
}

// area2 is twice the signed area of triangle a, b, c. Positive means c is
// to the left of a->b.
func area2(a, b, c v2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// Graham returns the convex hull of pts in counter-clockwise order,
// starting at the anchor. Fewer than three non-collinear points give a
// degenerate result of one or two points.
func Graham(pts []v2.Vec) []v2.Vec {
	return lo.Map(GrahamIndexed(pts), func(i int, _ int) v2.Vec {
		return pts[i]
	})
}

// GrahamIndexed is Graham but returns indices into pts.
func GrahamIndexed(pts []v2.Vec) []int {
	n := len(pts)
	if n == 0 {
		return nil
	}

	ps := make([]point, n)
	for i, v := range pts {
		ps[i] = point{v: v, idx: i}
	}

	anchor := 0
	for i := 1; i < n; i++ {
		if ps[i].v.Y < ps[anchor].v.Y ||
			(ps[i].v.Y == ps[anchor].v.Y && ps[i].v.X > ps[anchor].v.X) {
			anchor = i
		}
	}
	ps[0], ps[anchor] = ps[anchor], ps[0]
	p0 := ps[0].v

	rest := ps[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return compare(p0, rest[i], rest[j]) < 0
	})
	markCollinear(p0, rest)

	live := lo.Filter(rest, func(p point, _ int) bool { return !p.deleted })
	if len(live) == 0 {
		return []int{ps[0].idx}
	}

	stack := []point{ps[0], live[0]}
	for _, p := range live[1:] {
		for len(stack) > 1 && area2(stack[len(stack)-2].v, stack[len(stack)-1].v, p.v) <= leftTurnEps {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, p)
	}

	return lo.Map(stack, func(p point, _ int) int { return p.idx })
}

// compare orders a before b when a has the smaller polar angle about p0.
// Points on the same ray are ordered closer first; coincident points by
// original index.
func compare(p0 v2.Vec, a, b point) int {
	s := area2(p0, a.v, b.v)
	if s > 0 {
		return -1
	}
	if s < 0 {
		return 1
	}

	dx := math.Abs(a.v.X-p0.X) - math.Abs(b.v.X-p0.X)
	dy := math.Abs(a.v.Y-p0.Y) - math.Abs(b.v.Y-p0.Y)
	switch {
	case dx < 0 || dy < 0:
		return -1
	case dx > 0 || dy > 0:
		return 1
	}
	switch {
	case a.idx < b.idx:
		return -1
	case a.idx > b.idx:
		return 1
	}
	return 0
}

// markCollinear deletes points that coincide with the anchor and, of two
// neighbours on the same ray, the closer one.
func markCollinear(p0 v2.Vec, sorted []point) {
	for i := range sorted {
		d := sorted[i].v.Sub(p0)
		if math.Abs(d.X) <= collinearEps && math.Abs(d.Y) <= collinearEps {
			sorted[i].deleted = true
		}
	}
	last := -1
	for i := range sorted {
		if sorted[i].deleted {
			continue
		}
		if last < 0 || math.Abs(area2(p0, sorted[last].v, sorted[i].v)) > collinearEps {
			last = i
			continue
		}
		if sorted[last].v.Sub(p0).Length() <= sorted[i].v.Sub(p0).Length() {
			sorted[last].deleted = true
			last = i
		} else {
			sorted[i].deleted = true
		}
	}
}
