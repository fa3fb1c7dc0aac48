package subvolume

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/subvol/pkg/geom"
)

// ReadPoints reads one "x y z" point per line. A '#' starts a comment
// running to the end of the line and blank lines are skipped.
func ReadPoints(r io.Reader) ([]geom.Point3, error) {
	var pts []geom.Point3
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("subvolume: line %d: want 3 coordinates, got %d: %w", line, len(fields), ErrMalformedInput)
		}
		var xyz [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("subvolume: line %d: %v: %w", line, err, ErrMalformedInput)
			}
			xyz[i] = v
		}
		pts = append(pts, geom.Point3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("subvolume: reading points: %w", err)
	}
	return pts, nil
}

// ReadQuads reads exactly want quadrilaterals of four points each.
func ReadQuads(r io.Reader, want int) ([][4]geom.Point3, error) {
	pts, err := ReadPoints(r)
	if err != nil {
		return nil, err
	}
	if want < 0 || len(pts) != 4*want {
		return nil, fmt.Errorf("subvolume: want %d quadrilaterals (%d points), read %d points: %w",
			want, 4*want, len(pts), ErrMalformedInput)
	}
	quads := make([][4]geom.Point3, want)
	for i := range quads {
		copy(quads[i][:], pts[4*i:4*i+4])
	}
	return quads, nil
}
