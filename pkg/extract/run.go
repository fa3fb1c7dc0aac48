package extract

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/clip"
	"github.com/chazu/subvol/pkg/element"
	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/intersect"
	"github.com/chazu/subvol/pkg/kernel"
	"github.com/chazu/subvol/pkg/topology"
)

// RunSubvolume extracts the fracture network inside the subvolume. The
// mesh is rebuilt from scratch: subvolume boundary, fracture faces, 3D
// intersection edges, then the free intersection vertices.
func (c *Context) RunSubvolume() (*Report, error) {
	if c.Subvolume == nil {
		return nil, fmt.Errorf("extract: no subvolume defined: %w", ErrMalformedInput)
	}
	rep := &Report{RunID: c.RunID, Mode: "subvolume"}
	c.clip(rep)

	touches := clip.Borders(c.Fractures, geom.LooseEps)
	res := intersect.Fractures(c.Fractures, c.Traces, c.nextTraceID(), c.Config.EpsilonLength)
	c.Intersections = res.Traces
	lines, crossings := res.Lines, res.Crossings
	rep.Touches = len(touches)
	rep.Intersections = len(c.Intersections)
	rep.Crossings = len(crossings)

	if c.Kernel != nil {
		vs, err := c.audit()
		if err != nil {
			return nil, err
		}
		rep.Violations = vs
	}

	c.Mesh = topology.New(c.Config.Epsilon0)
	c.Points = nil
	c.assembleSubvolume(lines, crossings, touches)
	return c.finish(rep)
}

// RunSubplanes extracts the cut of the fracture network through every
// subplane window. Fractures and traces are clipped first when a
// subvolume is defined.
func (c *Context) RunSubplanes() (*Report, error) {
	if len(c.Subplanes) == 0 {
		return nil, fmt.Errorf("extract: no subplanes defined: %w", ErrMalformedInput)
	}
	rep := &Report{RunID: c.RunID, Mode: "subplane"}
	if c.Subvolume != nil {
		c.clip(rep)
	}

	c.Mesh = topology.New(c.Config.Epsilon0)
	c.Intersections = nil
	c.Points = nil
	next := c.nextTraceID()
	for _, corners := range c.Subplanes {
		res := intersect.Subplane(corners, c.Fractures, c.Traces, next, c.Config.EpsilonLength)
		next += len(res.Traces)
		c.Intersections = append(c.Intersections, res.Traces...)
		rep.Crossings += len(res.Crossings)
		rep.Piercings += len(res.Points)
		c.assembleSubplane(res)
	}
	rep.Intersections = len(c.Intersections)
	return c.finish(rep)
}

func (c *Context) clip(rep *Report) {
	rep.Fractures = clip.ClipFractures(c.Subvolume, c.Fractures)
	rep.Traces = clip.ClipTraces(c.Subvolume, c.Traces)
	c.logf("clip: fractures %d inside, %d reshaped, %d outside",
		rep.Fractures.Inside, rep.Fractures.Reshaped, rep.Fractures.Outside)
	c.logf("clip: traces %d inside, %d reshaped, %d outside",
		rep.Traces.Inside, rep.Traces.Reshaped, rep.Traces.Outside)
}

// nextTraceID returns the first id free for intersection traces.
func (c *Context) nextTraceID() int {
	return lo.Max(lo.Map(c.Traces, func(t *element.Trace, _ int) int { return t.ID })) + 1
}

// audit checks every clipped fracture corner and trace endpoint against
// the kernel's model of the subvolume.
func (c *Context) audit() ([]kernel.Violation, error) {
	zmin, zmax := c.Subvolume.ZRange()
	solid, err := c.Kernel.Prism(c.Subvolume.Footprint, zmin, zmax)
	if err != nil {
		return nil, fmt.Errorf("extract: audit solid: %w", err)
	}
	var probes []kernel.Probe
	for _, f := range c.InsideFractures() {
		for _, p := range f.Points() {
			probes = append(probes, kernel.Probe{Owner: "fracture", ID: f.ID, P: p})
		}
	}
	for _, t := range c.InsideTraces() {
		for _, p := range t.P {
			probes = append(probes, kernel.Probe{Owner: "trace", ID: t.ID, P: p})
		}
	}
	vs := kernel.Audit(solid, probes, geom.LooseEps)
	for _, v := range vs {
		c.logf("audit: %s", v)
	}
	return vs, nil
}

// finish prunes the mesh, carries the id remap into the elements and
// validates the result. Validation errors fail the run; warnings are
// logged and reported.
func (c *Context) finish(rep *Report) (*Report, error) {
	p := c.Mesh.Prune(c.Config.EpsilonLength)
	for _, f := range c.Fractures {
		f.VertexIDs = topology.Remap(f.VertexIDs, p.Vertex)
	}
	for _, t := range append(append([]*element.Trace(nil), c.Traces...), c.Intersections...) {
		t.VerticesOn = topology.Remap(t.VerticesOn, p.Vertex)
	}
	rep.DeadEdges, rep.DeadVertices = p.DeadEdges, p.DeadVertices
	if p.DeadEdges > 0 {
		c.logf("prune: removed %d edges, %d vertices", p.DeadEdges, p.DeadVertices)
	}

	v := topology.Validate(c.Mesh, c.Config.EpsilonLength)
	for _, w := range v.Warnings {
		c.logf("topology: %s", w)
	}
	rep.Warnings = v.Warnings
	rep.Stats = c.Mesh.Stats()
	if !v.OK() {
		return rep, fmt.Errorf("extract: mesh has %d errors, first: %w", len(v.Errors), v.Errors[0])
	}
	return rep, nil
}
