// Package export writes finished mesh tables. The plot listing is the
// coordinate and incidence file read by the plotting tools; the tables
// dump carries every vertex, edge and face with its control word for the
// mesh-generator writer.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/topology"
)

// MeshWriter consumes the final tables of one extraction.
type MeshWriter interface {
	WriteMesh(m *topology.Mesh) error
}

var (
	_ MeshWriter = (*PlotWriter)(nil)
	_ MeshWriter = (*TablesWriter)(nil)
)

// PlotWriter writes the plot listing to W.
type PlotWriter struct {
	W io.Writer
}

// WriteMesh implements MeshWriter.
func (p *PlotWriter) WriteMesh(m *topology.Mesh) error {
	return WritePlot(p.W, m)
}

// WritePlot writes the header "<vertices> <elements>", one "x y z" line
// per live vertex and one line per face listing its 1-based vertex
// numbers in boundary order. Dead vertices are skipped and the numbering
// closes over the gaps.
func WritePlot(w io.Writer, m *topology.Mesh) error {
	number := make([]int, len(m.Vertices))
	n := 0
	for id, v := range m.Vertices {
		if v.Alive {
			n++
			number[id] = n
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", n, len(m.Faces))
	for _, v := range m.Vertices {
		if v.Alive {
			fmt.Fprintf(bw, "%.10g %.10g %.10g\n", v.P.X, v.P.Y, v.P.Z)
		}
	}
	for id := range m.Faces {
		ids := lo.FilterMap(m.FaceVertices(id), func(v int, _ int) (int, bool) {
			return number[v], number[v] > 0
		})
		for i, v := range ids {
			if i > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%d", v)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: plot: %w", err)
	}
	return nil
}

// TablesWriter dumps the raw topology tables to W, one section per table.
// Ids are 1-based; edge and face lines end with their control word.
type TablesWriter struct {
	W io.Writer
}

// WriteMesh implements MeshWriter.
func (t *TablesWriter) WriteMesh(m *topology.Mesh) error {
	bw := bufio.NewWriter(t.W)

	fmt.Fprintf(bw, "VERTICES %d\n", len(m.Vertices))
	for id, v := range m.Vertices {
		fmt.Fprintf(bw, "%d %.10g %.10g %.10g\n", id+1, v.P.X, v.P.Y, v.P.Z)
	}
	fmt.Fprintf(bw, "EDGES %d\n", len(m.Edges))
	for id, e := range m.Edges {
		fmt.Fprintf(bw, "%d %d %d %d\n", id+1, e.V[0]+1, e.V[1]+1, e.Control)
	}
	fmt.Fprintf(bw, "FACES %d\n", len(m.Faces))
	for id, f := range m.Faces {
		fmt.Fprintf(bw, "%d %d", id+1, len(f.Edges))
		for _, e := range f.Edges {
			fmt.Fprintf(bw, " %d", e+1)
		}
		fmt.Fprintf(bw, " %d\n", f.Control)
	}
	fmt.Fprintf(bw, "ELEMENTS %d\n", len(m.Elements))
	for id, el := range m.Elements {
		fmt.Fprintf(bw, "%d %d", id+1, len(el.Faces))
		for _, f := range el.Faces {
			fmt.Fprintf(bw, " %d", f+1)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: tables: %w", err)
	}
	return nil
}
