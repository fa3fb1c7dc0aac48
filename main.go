// Command subvol extracts the fracture network inside a subvolume, or its
// cut through a set of subplanes, and writes the mesh topology.
//
// Usage:
//
//	subvol -script run.subvol -plot out.plot [-tables out.tables] [-mode subvolume|subplane]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	var opts Options
	flag.StringVar(&opts.Script, "script", "", "run script (required)")
	flag.StringVar(&opts.Mode, "mode", ModeSubvolume, "extraction mode: subvolume or subplane")
	flag.StringVar(&opts.Plot, "plot", "", "plot listing output")
	flag.StringVar(&opts.Tables, "tables", "", "topology tables output")
	noAudit := flag.Bool("no-audit", false, "skip the containment audit")
	flag.Parse()

	if opts.Script == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "subvol: ", log.LstdFlags)
	app := NewApp(logger)
	if *noAudit {
		app.DisableAudit()
	}
	rep, err := app.Run(opts)
	if err != nil {
		logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
	fmt.Print(rep)
}
