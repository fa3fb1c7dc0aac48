package topology

import "fmt"

// ValidationSeverity tells whether a finding makes the mesh unusable.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // mesh invariant broken
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Table    string // "vertex", "edge", "face" or "element"
	ID       int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Table, e.ID, e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the table invariants: no two live vertices within the
// weld tolerance, no two live edges over the same vertex pair, no
// degenerate edges and no dangling references. Live edges shorter than
// epsLength are reported as warnings. Validate never mutates the mesh.
func Validate(m *Mesh, epsLength float64) ValidationResult {
	var r ValidationResult
	r.Errors = append(r.Errors, validateVertices(m)...)
	r.Errors = append(r.Errors, validateEdges(m)...)
	r.Errors = append(r.Errors, validateFaces(m)...)
	r.Errors = append(r.Errors, validateElements(m)...)
	r.Warnings = append(r.Warnings, validateLengths(m, epsLength)...)
	return r
}

func validateVertices(m *Mesh) []ValidationError {
	var errs []ValidationError
	for id, v := range m.Vertices {
		if !v.Alive {
			continue
		}
		if first := m.FindVertex(v.P); first >= 0 && first != id {
			errs = append(errs, ValidationError{
				Table:   "vertex",
				ID:      id,
				Message: fmt.Sprintf("duplicates vertex %d within %g", first, m.eps),
			})
		}
	}
	return errs
}

func validateEdges(m *Mesh) []ValidationError {
	var errs []ValidationError
	seen := make(map[[2]int]int)
	for id, e := range m.Edges {
		if !e.Alive {
			continue
		}
		if !m.liveVertex(e.V[0]) || !m.liveVertex(e.V[1]) {
			errs = append(errs, ValidationError{
				Table:   "edge",
				ID:      id,
				Message: fmt.Sprintf("references missing vertex in %v", e.V),
			})
			continue
		}
		if e.V[0] == e.V[1] {
			errs = append(errs, ValidationError{Table: "edge", ID: id, Message: "joins a vertex to itself"})
			continue
		}
		key := pairKey(e.V[0], e.V[1])
		if first, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Table:   "edge",
				ID:      id,
				Message: fmt.Sprintf("duplicates edge %d", first),
			})
			continue
		}
		seen[key] = id
	}
	return errs
}

func validateFaces(m *Mesh) []ValidationError {
	var errs []ValidationError
	for id, f := range m.Faces {
		if len(f.Edges) == 0 {
			errs = append(errs, ValidationError{Table: "face", ID: id, Message: "has no edges"})
		}
		for _, e := range f.Edges {
			if e < 0 || e >= len(m.Edges) || !m.Edges[e].Alive {
				errs = append(errs, ValidationError{
					Table:   "face",
					ID:      id,
					Message: fmt.Sprintf("references missing edge %d", e),
				})
			}
		}
	}
	return errs
}

func validateElements(m *Mesh) []ValidationError {
	var errs []ValidationError
	for id, el := range m.Elements {
		for _, f := range el.Faces {
			if f < 0 || f >= len(m.Faces) {
				errs = append(errs, ValidationError{
					Table:   "element",
					ID:      id,
					Message: fmt.Sprintf("references missing face %d", f),
				})
			}
		}
	}
	return errs
}

func validateLengths(m *Mesh, epsLength float64) []ValidationError {
	var warns []ValidationError
	for id, e := range m.Edges {
		if !e.Alive || !m.liveVertex(e.V[0]) || !m.liveVertex(e.V[1]) {
			continue
		}
		if l := m.EdgeLength(id); l < epsLength {
			warns = append(warns, ValidationError{
				Table:    "edge",
				ID:       id,
				Message:  fmt.Sprintf("length %g below %g", l, epsLength),
				Severity: SeverityWarning,
			})
		}
	}
	return warns
}

func (m *Mesh) liveVertex(id int) bool {
	return id >= 0 && id < len(m.Vertices) && m.Vertices[id].Alive
}
