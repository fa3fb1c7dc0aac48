// Package extract runs one extraction: it clips the elements to the
// subvolume, intersects them, and assembles the mesh topology handed to
// the writers. A Context owns every table of the run.
package extract

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/kernel"
	"github.com/chazu/subvol/pkg/scene"
	"github.com/chazu/subvol/pkg/subvolume"
	"github.com/chazu/subvol/pkg/topology"
)

// Context owns the input elements, the intermediate intersection
// artifacts and the mesh of one run. It is not safe for concurrent use.
type Context struct {
	Config Config
	RunID  string
	Logger *log.Logger

	// Kernel, when set, audits clipped geometry against an independent
	// solid model of the subvolume.
	Kernel kernel.Kernel

	Subvolume *subvolume.Subvolume
	Subplanes [][4]geom.Point3
	Fractures []*element.Fracture
	Traces    []*element.Trace

	// Intersections holds the EDGE3D or EDGE2D traces of the last run and
	// Points the free intersection vertices (crossings, touches, piercings).
	Intersections []*element.Trace
	Points        []geom.Point3

	Mesh *topology.Mesh
}

// New returns an empty context. A nil logger uses log.Default(). Every
// line the context logs is prefixed with its run id.
func New(cfg Config, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	id := uuid.NewString()
	return &Context{
		Config: cfg,
		RunID:  id,
		Logger: log.New(logger.Writer(), fmt.Sprintf("%s[%s] ", logger.Prefix(), id[:8]), logger.Flags()),
		Mesh:   topology.New(cfg.Epsilon0),
	}
}

// FromScene builds a context from a validated scene.
func FromScene(sc *scene.Scene, logger *log.Logger) (*Context, error) {
	c := New(ConfigFrom(sc.Settings), logger)
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}
	if sc.Subvolume != nil {
		sv, err := sc.Subvolume.Build()
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		c.Subvolume = sv
	}
	c.Subplanes = append(c.Subplanes, sc.Subplanes...)

	var corrected []int
	c.Fractures, c.Traces, corrected = sc.Elements()
	for _, id := range corrected {
		c.logf("fracture %d: corner 2 projected onto the plane of corners 0, 1, 3", id)
	}
	return c, nil
}

func (c *Context) logf(format string, args ...any) {
	c.Logger.Printf(format, args...)
}

// InsideFractures returns the fractures still taking part in the run.
func (c *Context) InsideFractures() []*element.Fracture {
	return lo.Filter(c.Fractures, func(f *element.Fracture, _ int) bool { return f.Inside() })
}

// InsideTraces returns the input traces still taking part in the run.
func (c *Context) InsideTraces() []*element.Trace {
	return lo.Filter(c.Traces, func(t *element.Trace, _ int) bool { return t.Inside })
}
