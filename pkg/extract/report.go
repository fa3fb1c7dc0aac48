package extract

import (
	"fmt"
	"strings"

	"github.com/chazu/subvol/pkg/clip"
	"github.com/chazu/subvol/pkg/kernel"
	"github.com/chazu/subvol/pkg/topology"
)

// Report summarises one run.
type Report struct {
	RunID string
	Mode  string // "subvolume" or "subplane"

	Fractures clip.Summary
	Traces    clip.Summary

	Touches       int // fracture border contacts
	Intersections int // EDGE3D or EDGE2D traces
	Crossings     int
	Piercings     int // traces piercing a subplane

	Violations []kernel.Violation

	DeadEdges    int
	DeadVertices int
	Stats        topology.Stats
	Warnings     []topology.ValidationError
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s)\n", r.RunID, r.Mode)
	fmt.Fprintf(&b, "  fractures: %d inside, %d reshaped, %d outside\n",
		r.Fractures.Inside, r.Fractures.Reshaped, r.Fractures.Outside)
	fmt.Fprintf(&b, "  traces:    %d inside, %d reshaped, %d outside\n",
		r.Traces.Inside, r.Traces.Reshaped, r.Traces.Outside)
	fmt.Fprintf(&b, "  intersections %d, crossings %d, touches %d, piercings %d\n",
		r.Intersections, r.Crossings, r.Touches, r.Piercings)
	fmt.Fprintf(&b, "  pruned %d edges, %d vertices\n", r.DeadEdges, r.DeadVertices)
	fmt.Fprintf(&b, "  mesh: %d vertices, %d edges, %d faces, %d elements\n",
		r.Stats.Vertices, r.Stats.Edges, r.Stats.Faces, r.Stats.Elements)
	if len(r.Violations) > 0 || len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "  %d audit violations, %d warnings\n", len(r.Violations), len(r.Warnings))
	}
	return b.String()
}
