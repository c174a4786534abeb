// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command etw2ctf translates one or more trace files into a CTF-style
// output folder of self-describing event streams plus a metadata schema
// stream.
package main

import (
	"context"
	"os"

	"github.com/eti-p-doray/ETW2CTF/dissect"
	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/streamio"
	"github.com/eti-p-doray/ETW2CTF/trace"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var (
	output  = pflag.String("output", "ctf", "Output folder the CTF stream files are written into.")
	verbose = pflag.Bool("verbose", false, "Enable debug-level logging.")
)

func main() {
	pflag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	traceFiles := pflag.Args()
	if len(traceFiles) == 0 {
		// No trace files to consume: still nothing to do, but this is not
		// an error (mirrors the original tool's "Empty()" early return).
		return
	}

	if err := run(log, *output, traceFiles); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger, output string, traceFiles []string) error {
	writer := streamio.New()
	if err := writer.OpenFolder(output); err != nil {
		return err
	}

	meta := metadata.New()
	// No concrete per-manifest decoders are registered here: recognizing
	// specific ETW providers' payload layouts is out of scope (spec.md's
	// Non-goals). Every record falls back to the generic opaque encoding
	// unless a caller wires in its own dissect.Decoder.
	registry := dissect.NewRegistry()

	driver := dissect.NewDriver(meta, registry, writer, log)

	// The stream header must always be written here, even for a trace
	// with zero events, since the default stream is opened unconditionally
	// before any file is consumed.
	if err := driver.Start(); err != nil {
		return err
	}

	for _, path := range traceFiles {
		src := trace.JSONFileSource{Path: path}
		if err := driver.Run(context.Background(), src); err != nil {
			return err
		}
	}

	return driver.Finish()
}
