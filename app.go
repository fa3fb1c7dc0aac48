package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/chazu/subvol/pkg/engine"
	"github.com/chazu/subvol/pkg/export"
	"github.com/chazu/subvol/pkg/extract"
	"github.com/chazu/subvol/pkg/kernel"
	"github.com/chazu/subvol/pkg/kernel/sdfx"
	"github.com/chazu/subvol/pkg/scene"
)

// Modes accepted by Options.Mode.
const (
	ModeSubvolume = "subvolume"
	ModeSubplane  = "subplane"
)

// Options selects the script, the extraction mode and the output files.
// Empty output paths are skipped.
type Options struct {
	Script string
	Mode   string
	Plot   string
	Tables string
}

// App wires the pipeline: script evaluation, scene validation,
// extraction and export.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger
}

// NewApp creates an App with an engine and the sdfx audit kernel. A nil
// logger uses log.Default().
func NewApp(logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		logger: logger,
	}
}

// DisableAudit drops the containment audit.
func (a *App) DisableAudit() { a.kernel = nil }

// Load evaluates a run script into a validated scene. Relative :file
// arguments resolve against the script's directory.
func (a *App) Load(path string) (*scene.Scene, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	// Step 1: evaluate the script.
	a.engine.BaseDir = filepath.Dir(path)
	sc, evalErrs, err := a.engine.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := lo.Map(evalErrs, func(e engine.EvalError, _ int) error { return e })
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}

	// Step 2: validate the scene.
	vr := scene.ValidateAll(sc)
	for _, w := range vr.Warnings {
		a.logger.Printf("%s: %s", path, w)
	}
	if !vr.OK() {
		errs := lo.Map(vr.Errors, func(e scene.ValidationError, _ int) error { return e })
		return nil, fmt.Errorf("%s: invalid scene: %w", path, errors.Join(errs...))
	}
	return sc, nil
}

// Extract runs one extraction over sc.
func (a *App) Extract(sc *scene.Scene, mode string) (*extract.Context, *extract.Report, error) {
	c, err := extract.FromScene(sc, a.logger)
	if err != nil {
		return nil, nil, err
	}
	c.Kernel = a.kernel

	var rep *extract.Report
	switch mode {
	case ModeSubvolume, "":
		rep, err = c.RunSubvolume()
	case ModeSubplane:
		rep, err = c.RunSubplanes()
	default:
		return nil, nil, fmt.Errorf("unknown mode %q: %w", mode, extract.ErrMalformedInput)
	}
	if err != nil {
		return nil, nil, err
	}
	return c, rep, nil
}

// Run loads the script, extracts and writes the requested outputs.
func (a *App) Run(opts Options) (*extract.Report, error) {
	sc, err := a.Load(opts.Script)
	if err != nil {
		return nil, err
	}
	c, rep, err := a.Extract(sc, opts.Mode)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		path string
		w    func(f *os.File) export.MeshWriter
	}{
		{opts.Plot, func(f *os.File) export.MeshWriter { return &export.PlotWriter{W: f} }},
		{opts.Tables, func(f *os.File) export.MeshWriter { return &export.TablesWriter{W: f} }},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := writeFile(o.path, c, o.w); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func writeFile(path string, c *extract.Context, mk func(*os.File) export.MeshWriter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mk(f).WriteMesh(c.Mesh); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
