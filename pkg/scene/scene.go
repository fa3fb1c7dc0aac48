package scene

import (
	"fmt"

	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/subvolume"
)

// Settings holds the numeric thresholds of a run.
type Settings struct {
	EpsilonLength      float64 // shortest edge or trace kept
	Epsilon0           float64 // vertex weld distance
	EpsilonCheckPoints float64 // corner coplanarity tolerance
}

// DefaultSettings returns the thresholds used when a script sets none.
func DefaultSettings() Settings {
	return Settings{
		EpsilonLength:      1e-3,
		Epsilon0:           geom.TightEps,
		EpsilonCheckPoints: geom.CheckPointsEps,
	}
}

// SubvolumeSpec describes the subvolume before construction. Prisms use
// Center, Radius and Sides; boxes use Bottom.
type SubvolumeSpec struct {
	Shape  subvolume.Shape
	Center geom.Point3
	Radius float64
	Sides  int
	Bottom []geom.Point3
	Height float64
}

// Build constructs the subvolume.
func (s SubvolumeSpec) Build() (*subvolume.Subvolume, error) {
	switch s.Shape {
	case subvolume.ShapePrism:
		return subvolume.NewPrism(s.Center, s.Radius, s.Sides, s.Height)
	case subvolume.ShapeBox:
		return subvolume.NewBox(s.Bottom, s.Height)
	}
	return nil, fmt.Errorf("scene: subvolume: shape %v: %w", s.Shape, subvolume.ErrMalformedInput)
}

// FractureSpec is one rectangular fracture as given in the input.
type FractureSpec struct {
	ID       int
	Corners  [4]geom.Point3
	Aperture float64
}

// TraceSpec is one input trace.
type TraceSpec struct {
	ID       int
	From, To geom.Point3
	Aperture float64
}

// Scene is the full description of a run.
type Scene struct {
	Settings  Settings
	Subvolume *SubvolumeSpec
	Subplanes [][4]geom.Point3
	Fractures []FractureSpec
	Traces    []TraceSpec
}

// New returns an empty scene with default settings.
func New() *Scene {
	return &Scene{Settings: DefaultSettings()}
}

// AddFracture appends a fracture and returns its id. Ids count from 1 in
// input order.
func (s *Scene) AddFracture(corners [4]geom.Point3, aperture float64) int {
	id := len(s.Fractures) + 1
	s.Fractures = append(s.Fractures, FractureSpec{ID: id, Corners: corners, Aperture: aperture})
	return id
}

// AddTrace appends a trace and returns its id. Ids count from 1 in input
// order, independently of fractures.
func (s *Scene) AddTrace(from, to geom.Point3, aperture float64) int {
	id := len(s.Traces) + 1
	s.Traces = append(s.Traces, TraceSpec{ID: id, From: from, To: to, Aperture: aperture})
	return id
}

// Elements builds fresh fracture and trace elements. Corrected lists the
// ids of fractures whose fourth corner was projected onto their plane.
func (s *Scene) Elements() (fracs []*element.Fracture, traces []*element.Trace, corrected []int) {
	for _, fs := range s.Fractures {
		f, moved := element.NewFractureTol(fs.ID, fs.Corners, fs.Aperture, s.Settings.EpsilonCheckPoints)
		if moved {
			corrected = append(corrected, fs.ID)
		}
		fracs = append(fracs, f)
	}
	for _, ts := range s.Traces {
		traces = append(traces, element.NewTrace(ts.ID, element.KindTrace3D, ts.From, ts.To, ts.Aperture))
	}
	return fracs, traces, corrected
}
