package extract_test

import (
	"bytes"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/subvol/pkg/extract"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/kernel"
	"github.com/chazu/subvol/pkg/kernel/sdfx"
	"github.com/chazu/subvol/pkg/scene"
	"github.com/chazu/subvol/pkg/subvolume"
	"github.com/chazu/subvol/pkg/topology"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func p(x, y, z float64) geom.Point3 { return geom.Point3{X: x, Y: y, Z: z} }

// cubeScene is the axis-aligned cube [-1,1]^3.
func cubeScene() *scene.Scene {
	sc := scene.New()
	sc.Subvolume = &scene.SubvolumeSpec{
		Shape:  subvolume.ShapePrism,
		Radius: math.Sqrt2,
		Sides:  4,
		Height: 2,
	}
	return sc
}

var (
	horizontal = [4]geom.Point3{p(-0.5, -0.5, 0), p(0.5, -0.5, 0), p(0.5, 0.5, 0), p(-0.5, 0.5, 0)}
	vertical   = [4]geom.Point3{p(0, -0.5, -0.5), p(0, 0.5, -0.5), p(0, 0.5, 0.5), p(0, -0.5, 0.5)}
)

func run(t *testing.T, sc *scene.Scene) (*extract.Context, *extract.Report) {
	t.Helper()
	c, err := extract.FromScene(sc, quiet())
	if err != nil {
		t.Fatalf("FromScene: %v", err)
	}
	rep, err := c.RunSubvolume()
	if err != nil {
		t.Fatalf("RunSubvolume: %v", err)
	}
	return c, rep
}

// ---------------------------------------------------------------------------
// Subvolume mode
// ---------------------------------------------------------------------------

func TestRunSubvolumeEmpty(t *testing.T) {
	c, rep := run(t, cubeScene())
	want := topology.Stats{Vertices: 8, Edges: 12, Faces: 6, Elements: 1}
	if rep.Stats != want {
		t.Errorf("stats = %+v, want %+v", rep.Stats, want)
	}
	for id, e := range c.Mesh.Edges {
		if e.Control != id+1 {
			t.Errorf("edge %d control = %d, want %d", id, e.Control, id+1)
		}
	}
	if got := len(c.Mesh.Elements[0].Faces); got != 6 {
		t.Errorf("element has %d faces, want 6", got)
	}
	if rep.RunID != c.RunID || rep.Mode != "subvolume" {
		t.Errorf("report header = %q %q", rep.RunID, rep.Mode)
	}
}

func TestRunSubvolumeSingleFracture(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture(horizontal, 1e-4)
	c, rep := run(t, sc)

	if rep.Fractures.Inside != 1 {
		t.Errorf("fractures = %+v, want 1 inside", rep.Fractures)
	}
	want := topology.Stats{Vertices: 12, Edges: 16, Faces: 7, Elements: 1}
	if rep.Stats != want {
		t.Errorf("stats = %+v, want %+v", rep.Stats, want)
	}
	f := c.Fractures[0]
	if len(f.VertexIDs) != 4 || f.VertexIDs[0] != 8 {
		t.Errorf("fracture vertex ids = %v, want 8..11", f.VertexIDs)
	}
	if got := c.Mesh.Faces[6].Control; got != -1 {
		t.Errorf("fracture face control = %d, want -1", got)
	}
	if got := c.Mesh.Edges[12].Control; got != -1 {
		t.Errorf("first fracture edge control = %d, want -1", got)
	}
}

func TestRunSubvolumeCrossingFractures(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture(horizontal, 1e-4)
	sc.AddFracture(vertical, 1e-4)
	c, rep := run(t, sc)

	if rep.Intersections != 1 {
		t.Fatalf("intersections = %d, want 1", rep.Intersections)
	}
	if rep.Touches != 2 {
		t.Errorf("touches = %d, want 2", rep.Touches)
	}
	// Both fracture loops split where the intersection line ends.
	want := topology.Stats{Vertices: 18, Edges: 25, Faces: 8, Elements: 1}
	if rep.Stats != want {
		t.Errorf("stats = %+v, want %+v", rep.Stats, want)
	}
	for i := 6; i < 8; i++ {
		if n := len(c.Mesh.FaceVertices(i)); n != 6 {
			t.Errorf("face %d has %d vertices, want 6", i, n)
		}
	}
	tr := c.Intersections[0]
	if tr.ID != 1 || tr.Aperture != 1e-4 {
		t.Errorf("intersection = id %d aperture %g", tr.ID, tr.Aperture)
	}
	if got := len(c.Points); got != 2 {
		t.Errorf("free points = %d, want 2", got)
	}
}

func TestRunSubvolumeOutsideFracture(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture([4]geom.Point3{p(5, 5, 0), p(6, 5, 0), p(6, 6, 0), p(5, 6, 0)}, 1e-4)
	_, rep := run(t, sc)
	if rep.Fractures.Outside != 1 {
		t.Errorf("fractures = %+v, want 1 outside", rep.Fractures)
	}
	if rep.Stats.Faces != 6 {
		t.Errorf("faces = %d, want 6", rep.Stats.Faces)
	}
}

func TestRunSubvolumeAuditWithSdfx(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture([4]geom.Point3{p(0.5, -0.5, 0), p(1.5, -0.5, 0), p(1.5, 0.5, 0), p(0.5, 0.5, 0)}, 1e-4)
	sc.AddTrace(p(-0.5, 0, 0.5), p(3, 0, 0.5), 1e-4)

	c, err := extract.FromScene(sc, quiet())
	if err != nil {
		t.Fatal(err)
	}
	c.Kernel = sdfx.New()
	rep, err := c.RunSubvolume()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Fractures.Reshaped != 1 || !c.Fractures[0].IsPolygon() {
		t.Errorf("fractures = %+v, want 1 reshaped polygon", rep.Fractures)
	}
	if rep.Traces.Reshaped != 1 {
		t.Errorf("traces = %+v, want 1 reshaped", rep.Traces)
	}
	if len(rep.Violations) != 0 {
		t.Errorf("violations = %v", rep.Violations)
	}
}

type outsideSolid struct{}

func (outsideSolid) BoundingBox() (min, max [3]float64) { return }
func (outsideSolid) Distance(geom.Point3) float64       { return 1 }

type outsideKernel struct{}

func (outsideKernel) Prism([]v2.Vec, float64, float64) (kernel.Solid, error) {
	return outsideSolid{}, nil
}

func TestRunSubvolumeAuditViolations(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture(horizontal, 1e-4)
	sc.AddTrace(p(-0.5, 0, 0.5), p(0.5, 0, 0.5), 1e-4)

	var buf bytes.Buffer
	c, err := extract.FromScene(sc, log.New(&buf, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	c.Kernel = outsideKernel{}
	rep, err := c.RunSubvolume()
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Violations) != 6 {
		t.Fatalf("violations = %d, want 6", len(rep.Violations))
	}
	if v := rep.Violations[4]; v.Owner != "trace" || v.ID != 1 {
		t.Errorf("violation 4 = %s", v)
	}
	if !strings.Contains(buf.String(), "audit: fracture 1") {
		t.Errorf("log missing audit line:\n%s", buf.String())
	}
}

func TestRunSubvolumeTraceCrossesIntersection(t *testing.T) {
	sc := cubeScene()
	sc.AddFracture(horizontal, 1e-4)
	sc.AddFracture(vertical, 1e-4)
	// Crosses the fracture intersection line at the origin.
	sc.AddTrace(p(-0.8, 0, 0), p(0.8, 0, 0), 1e-4)
	c, rep := run(t, sc)

	if rep.Crossings != 1 {
		t.Fatalf("crossings = %d, want 1", rep.Crossings)
	}
	origin := c.Mesh.FindVertex(p(0, 0, 0))
	if origin < 0 {
		t.Fatal("no vertex at the crossing")
	}
	if got := c.Intersections[0].VerticesOn; len(got) != 1 || got[0] != origin {
		t.Errorf("intersection vertices on = %v, want [%d]", got, origin)
	}
	if c.Intersections[0].ID != 2 {
		t.Errorf("intersection id = %d, want 2", c.Intersections[0].ID)
	}
}

// ---------------------------------------------------------------------------
// Subplane mode
// ---------------------------------------------------------------------------

func TestRunSubplanes(t *testing.T) {
	sc := scene.New()
	sc.Subplanes = [][4]geom.Point3{{p(0, -1, -1), p(0, 1, -1), p(0, 1, 1), p(0, -1, 1)}}
	sc.AddFracture([4]geom.Point3{p(-0.5, -2, 0), p(0.5, -2, 0), p(0.5, 2, 0), p(-0.5, 2, 0)}, 1e-4)
	sc.AddTrace(p(-1, 0, 0.5), p(1, 0, 0.5), 1e-4)

	c, err := extract.FromScene(sc, quiet())
	if err != nil {
		t.Fatal(err)
	}
	rep, err := c.RunSubplanes()
	if err != nil {
		t.Fatal(err)
	}
	if rep.Intersections != 1 || rep.Piercings != 1 {
		t.Errorf("intersections %d piercings %d, want 1 and 1", rep.Intersections, rep.Piercings)
	}
	// Window corners, two border hits and one piercing point.
	want := topology.Stats{Vertices: 7, Edges: 7, Faces: 1, Elements: 1}
	if rep.Stats != want {
		t.Errorf("stats = %+v, want %+v", rep.Stats, want)
	}
	if n := len(c.Mesh.FaceVertices(0)); n != 6 {
		t.Errorf("window face has %d vertices, want 6", n)
	}
	if id := c.Intersections[0].ID; id != 2 {
		t.Errorf("EDGE2D id = %d, want 2", id)
	}
	if got := c.Mesh.Edges[6].Control; got != -1 {
		t.Errorf("trace edge control = %d, want -1", got)
	}
}

// ---------------------------------------------------------------------------
// Errors and configuration
// ---------------------------------------------------------------------------

func TestRunMissingInput(t *testing.T) {
	c := extract.New(extract.DefaultConfig(), quiet())
	if _, err := c.RunSubvolume(); !errors.Is(err, extract.ErrMalformedInput) {
		t.Errorf("RunSubvolume err = %v", err)
	}
	if _, err := c.RunSubplanes(); !errors.Is(err, extract.ErrMalformedInput) {
		t.Errorf("RunSubplanes err = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := extract.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg := extract.DefaultConfig()
	cfg.EpsilonLength = 0
	if err := cfg.Validate(); !errors.Is(err, extract.ErrMalformedInput) {
		t.Errorf("err = %v", err)
	}
	sc := cubeScene()
	sc.Settings.EpsilonCheckPoints = -1
	if _, err := extract.FromScene(sc, quiet()); !errors.Is(err, extract.ErrMalformedInput) {
		t.Errorf("FromScene err = %v", err)
	}
}

func TestFromSceneLogsCorrection(t *testing.T) {
	sc := cubeScene()
	bent := horizontal
	bent[2].Z = 0.01
	sc.AddFracture(bent, 1e-4)

	var buf bytes.Buffer
	c, err := extract.FromScene(sc, log.New(&buf, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "["+c.RunID[:8]+"] ") {
		t.Errorf("log line lacks run id prefix: %q", out)
	}
	if !strings.Contains(out, "fracture 1: corner 2 projected") {
		t.Errorf("log = %q", out)
	}
	if z := c.Fractures[0].Corners[2].Z; math.Abs(z) > 1e-9 {
		t.Errorf("corner 2 z = %g, want 0", z)
	}
}

func TestFromSceneHonoursCheckPointsTolerance(t *testing.T) {
	sc := cubeScene()
	sc.Settings.EpsilonCheckPoints = 1e-2
	bent := horizontal
	bent[2].Z = 1e-3
	sc.AddFracture(bent, 1e-4)

	var buf bytes.Buffer
	c, err := extract.FromScene(sc, log.New(&buf, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "projected") {
		t.Errorf("corner within tolerance was projected: %q", buf.String())
	}
	if z := c.Fractures[0].Corners[2].Z; z != 1e-3 {
		t.Errorf("corner 2 z = %g, want 1e-3", z)
	}
}

func TestRunIDsDiffer(t *testing.T) {
	a := extract.New(extract.DefaultConfig(), quiet())
	b := extract.New(extract.DefaultConfig(), quiet())
	if a.RunID == b.RunID {
		t.Errorf("run ids collide: %s", a.RunID)
	}
}

func TestReportString(t *testing.T) {
	_, rep := run(t, cubeScene())
	s := rep.String()
	for _, want := range []string{rep.RunID, "(subvolume)", "mesh: 8 vertices, 12 edges, 6 faces, 1 elements"} {
		if !strings.Contains(s, want) {
			t.Errorf("report missing %q:\n%s", want, s)
		}
	}
}
