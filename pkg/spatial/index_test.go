package spatial

import (
	"testing"

	"github.com/chazu/subvol/pkg/geom"
)

func TestIndexPoints(t *testing.T) {
	x := New()
	pts := []geom.Point3{{X: 0}, {X: 1}, {X: 2}, {X: 10}, {X: 1, Y: 5}}
	for i, p := range pts {
		x.InsertPoint(i, p, geom.TightEps)
	}
	if x.Len() != len(pts) {
		t.Fatalf("Len = %d, want %d", x.Len(), len(pts))
	}

	got := x.SearchSegment(geom.Point3{X: 0.5}, geom.Point3{X: 2.5}, geom.TightEps)
	want := []int{1, 2}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("SearchSegment = %v, want %v", got, want)
	}
}

func TestIndexTouchingBoxesFound(t *testing.T) {
	x := New()
	x.InsertBox(7, geom.Point3{}, geom.Point3{X: 1, Y: 1, Z: 1}, geom.TightEps)
	// Shares only the face x = 1; the padding makes it a hit.
	got := x.Search(geom.Point3{X: 1}, geom.Point3{X: 2, Y: 1, Z: 1}, geom.TightEps)
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("Search = %v, want [7]", got)
	}
}

func TestIndexSpheresSorted(t *testing.T) {
	x := New()
	for i := 20; i >= 0; i-- {
		x.InsertSphere(i, geom.Sphere{Center: geom.Point3{X: float64(i)}, Radius: 0.4}, 0)
	}
	got := x.SearchSphere(geom.Sphere{Center: geom.Point3{X: 10}, Radius: 2}, 0)
	want := []int{8, 9, 10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("SearchSphere = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchSphere = %v, want %v", got, want)
		}
	}
	if none := x.SearchSphere(geom.Sphere{Center: geom.Point3{Y: 50}, Radius: 1}, 0); len(none) != 0 {
		t.Errorf("far search = %v, want none", none)
	}
}
