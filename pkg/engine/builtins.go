package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/subvol/pkg/geom"
	"github.com/chazu/subvol/pkg/intersect"
	"github.com/chazu/subvol/pkg/scene"
	"github.com/chazu/subvol/pkg/subvolume"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites run-script source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: epsilon-length -> epsilon_length
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point so it can be passed between builtins.
type sexpVec3 struct {
	vec geom.Point3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW returns the keyword name of a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword k as a number, def if absent.
func (a kwArgs) float(k string, def float64) (float64, error) {
	v, ok := a.kw[k]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

// required returns keyword k as a number and fails if it is absent.
func (a kwArgs) required(k string) (float64, error) {
	if _, ok := a.kw[k]; !ok {
		return 0, fmt.Errorf("missing :%s", k)
	}
	return a.float(k, 0)
}

// vec returns keyword k as a point, def if absent.
func (a kwArgs) vec(k string, def geom.Point3) (geom.Point3, error) {
	v, ok := a.kw[k]
	if !ok {
		return def, nil
	}
	p, err := toVec3(v)
	if err != nil {
		return geom.Point3{}, fmt.Errorf("%s: %w", k, err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected whole number, got %g", f)
	}
	return int(f), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Point3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Point3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec3List extracts a list of points.
func toVec3List(s zygo.Sexp) ([]geom.Point3, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Point3, len(items))
	for i, item := range items {
		if pts[i], err = toVec3(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return pts, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// openInput opens a :file argument relative to baseDir.
func openInput(baseDir, name string) (*os.File, error) {
	if baseDir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(baseDir, name)
	}
	return os.Open(name)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the run-script builtins into a zygomys
// environment. The builtins fill sc during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene, baseDir string) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: geom.Point3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (settings :epsilon-length 0.001 :epsilon-zero 1e-10
	//           :epsilon-check-points 1e-6)
	// -----------------------------------------------------------------------
	env.AddFunction("settings", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		st := &sc.Settings
		fields := []struct {
			kw  string
			dst *float64
		}{
			{"epsilon-length", &st.EpsilonLength},
			{"epsilon-zero", &st.Epsilon0},
			{"epsilon-check-points", &st.EpsilonCheckPoints},
		}
		known := make(map[string]bool, len(fields))
		for _, f := range fields {
			known[f.kw] = true
			v, err := pa.float(f.kw, *f.dst)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("settings: %w", err)
			}
			*f.dst = v
		}
		for k := range pa.kw {
			if !known[k] {
				return zygo.SexpNull, fmt.Errorf("settings: unknown setting :%s", k)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (prism :center (vec3 0 0 0) :radius 5 :sides 6 :height 10)
	// (box :bottom (list (vec3 ...) ...) :height 10)
	// (box :file "ring.dat" :height 10)
	// (subvolume :shape "prism" ...) with the keywords of prism or box
	// -----------------------------------------------------------------------
	addShape := func(fn string, shape func(pa kwArgs) (subvolume.Shape, error)) {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if sc.Subvolume != nil {
				return zygo.SexpNull, fmt.Errorf("%s: subvolume already defined", fn)
			}
			pa := parseArgs(args)
			sh, err := shape(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			var spec *scene.SubvolumeSpec
			switch sh {
			case subvolume.ShapePrism:
				spec, err = prismSpec(pa)
			default:
				spec, err = boxSpec(pa, baseDir)
			}
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			sc.Subvolume = spec
			return zygo.SexpNull, nil
		})
	}
	addShape("prism", func(kwArgs) (subvolume.Shape, error) { return subvolume.ShapePrism, nil })
	addShape("box", func(kwArgs) (subvolume.Shape, error) { return subvolume.ShapeBox, nil })
	addShape("subvolume", func(pa kwArgs) (subvolume.Shape, error) {
		v, ok := pa.kw["shape"]
		if !ok {
			return 0, fmt.Errorf("missing :shape")
		}
		code, err := toString(v)
		if err != nil {
			return 0, fmt.Errorf("shape: %w", err)
		}
		return subvolume.ParseShape(code)
	})

	// -----------------------------------------------------------------------
	// (subplane (vec3 ...) (vec3 ...) (vec3 ...) (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("subplane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("subplane requires exactly 4 corners, got %d", len(args))
		}
		var c [4]geom.Point3
		for i, a := range args {
			p, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subplane: corner %d: %w", i, err)
			}
			c[i] = p
		}
		sc.Subplanes = append(sc.Subplanes, c)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (subplanes :file "planes.dat" :count 3)
	// -----------------------------------------------------------------------
	env.AddFunction("subplanes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		fv, ok := pa.kw["file"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("subplanes: missing :file")
		}
		path, err := toString(fv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subplanes: file: %w", err)
		}
		cv, ok := pa.kw["count"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("subplanes: missing :count")
		}
		count, err := toInt(cv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subplanes: count: %w", err)
		}

		f, err := openInput(baseDir, path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subplanes: %w", err)
		}
		defer f.Close()
		planes, err := intersect.ReadSubplanes(f, count)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subplanes: %s: %w", path, err)
		}
		sc.Subplanes = append(sc.Subplanes, planes...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (fracture :corners (list c0 c1 c2 c3) :aperture 0.001) -> id
	// -----------------------------------------------------------------------
	env.AddFunction("fracture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cv, ok := pa.kw["corners"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("fracture: missing :corners")
		}
		pts, err := toVec3List(cv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fracture: corners: %w", err)
		}
		if len(pts) != 4 {
			return zygo.SexpNull, fmt.Errorf("fracture: corners: need 4, got %d", len(pts))
		}
		aperture, err := pa.float("aperture", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fracture: %w", err)
		}

		id := sc.AddFracture([4]geom.Point3{pts[0], pts[1], pts[2], pts[3]}, aperture)
		return &zygo.SexpInt{Val: int64(id)}, nil
	})

	// -----------------------------------------------------------------------
	// (trace :from (vec3 ...) :to (vec3 ...) :aperture 0.01) -> id
	// -----------------------------------------------------------------------
	env.AddFunction("trace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if _, ok := pa.kw["from"]; !ok {
			return zygo.SexpNull, fmt.Errorf("trace: missing :from")
		}
		if _, ok := pa.kw["to"]; !ok {
			return zygo.SexpNull, fmt.Errorf("trace: missing :to")
		}
		from, err := pa.vec("from", geom.Point3{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trace: %w", err)
		}
		to, err := pa.vec("to", geom.Point3{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trace: %w", err)
		}
		aperture, err := pa.float("aperture", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("trace: %w", err)
		}

		id := sc.AddTrace(from, to, aperture)
		return &zygo.SexpInt{Val: int64(id)}, nil
	})
}

func prismSpec(pa kwArgs) (*scene.SubvolumeSpec, error) {
	spec := &scene.SubvolumeSpec{Shape: subvolume.ShapePrism}
	var err error
	if spec.Center, err = pa.vec("center", geom.Point3{}); err != nil {
		return nil, err
	}
	if spec.Radius, err = pa.required("radius"); err != nil {
		return nil, err
	}
	if spec.Height, err = pa.required("height"); err != nil {
		return nil, err
	}
	v, ok := pa.kw["sides"]
	if !ok {
		return nil, fmt.Errorf("missing :sides")
	}
	if spec.Sides, err = toInt(v); err != nil {
		return nil, fmt.Errorf("sides: %w", err)
	}
	return spec, nil
}

func boxSpec(pa kwArgs, baseDir string) (*scene.SubvolumeSpec, error) {
	spec := &scene.SubvolumeSpec{Shape: subvolume.ShapeBox}
	var err error
	if spec.Height, err = pa.required("height"); err != nil {
		return nil, err
	}
	bottom, hasBottom := pa.kw["bottom"]
	file, hasFile := pa.kw["file"]
	switch {
	case hasBottom && hasFile:
		return nil, fmt.Errorf(":bottom and :file are exclusive")
	case hasBottom:
		if spec.Bottom, err = toVec3List(bottom); err != nil {
			return nil, fmt.Errorf("bottom: %w", err)
		}
	case hasFile:
		path, err := toString(file)
		if err != nil {
			return nil, fmt.Errorf("file: %w", err)
		}
		f, err := openInput(baseDir, path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if spec.Bottom, err = subvolume.ReadPoints(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("missing :bottom or :file")
	}
	return spec, nil
}
