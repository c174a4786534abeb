// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package streamio implements the output-side file state machine: a single
// output folder containing any number of named stream files, opened and
// closed one at a time.
package streamio

import (
	"os"
	"path/filepath"

	"github.com/eti-p-doray/ETW2CTF/support/dataio"

	"github.com/pkg/errors"
)

// state enumerates Writer's three reachable states: NoFolder ->
// FolderOpen -> (StreamOpen <-> FolderOpen)*.
type state int

const (
	stateNoFolder state = iota
	stateFolderOpen
	stateStreamOpen
)

// Writer creates an output folder and writes any number of named streams
// into it, one at a time, each as its own plain file.
//
// Writer is not safe for concurrent use (spec.md §5).
type Writer struct {
	folder string
	state  state

	current *os.File
	writer  dataio.Writer

	written int64 // bytes written to the currently open stream.
}

// New constructs an unopened Writer.
func New() *Writer { return &Writer{} }

// OpenFolder creates folder (which must not already exist) and transitions
// from NoFolder to FolderOpen. It may be called exactly once.
func (w *Writer) OpenFolder(folder string) error {
	if w.state != stateNoFolder {
		return errors.New("a folder is already open")
	}
	if folder == "" {
		return errors.New("folder must not be empty")
	}
	if err := os.Mkdir(folder, 0o755); err != nil {
		return errors.Wrapf(err, "creating folder %q", folder)
	}
	w.folder = folder
	w.state = stateFolderOpen
	return nil
}

// OpenStream creates name as a new file within the open folder and
// transitions from FolderOpen to StreamOpen. OpenStream fails unless the
// Writer is currently in FolderOpen (i.e. no stream is already open).
func (w *Writer) OpenStream(name string) error {
	if w.state != stateFolderOpen {
		return errors.New("OpenStream called without an open folder, or while a stream is already open")
	}

	path := filepath.Join(w.folder, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating stream file %q", path)
	}

	w.current = f
	w.writer = dataio.MakeWriter(f)
	w.written = 0
	w.state = stateStreamOpen
	streamsOpenGauge.Inc()
	return nil
}

// Write appends p to the currently open stream. Write fails if no stream
// is open.
func (w *Writer) Write(p []byte) (int, error) {
	if w.state != stateStreamOpen {
		return 0, errors.New("Write called with no stream open")
	}
	n, err := w.writer.Write(p)
	w.written += int64(n)
	streamBytesWritten.Add(float64(n))
	if err != nil {
		return n, errors.Wrap(err, "writing stream data")
	}
	return n, nil
}

// CloseStream flushes and closes the currently open stream, returning to
// FolderOpen. CloseStream fails if no stream is open.
func (w *Writer) CloseStream() error {
	if w.state != stateStreamOpen {
		return errors.New("CloseStream called with no stream open")
	}
	err := w.current.Close()
	w.current = nil
	w.writer = nil
	w.state = stateFolderOpen
	streamsOpenGauge.Dec()
	return errors.Wrap(err, "closing stream file")
}

// BytesWritten returns the number of bytes written to the currently open
// stream (reset to 0 by each OpenStream).
func (w *Writer) BytesWritten() int64 { return w.written }
