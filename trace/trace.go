// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package trace defines the narrow interface a trace source must satisfy
// to be consumed by the dissect Driver, plus a JSON-backed fixture source
// for tests and local CLI use. A real ETW host API is explicitly out of
// scope; this package only specifies the contract a future adapter must
// implement.
package trace

import (
	"context"

	"github.com/eti-p-doray/ETW2CTF/metadata"
)

// Record is a single decoded-envelope event: the fixed ETW descriptor plus
// its still-opaque payload, ready to be handed to a dissect.Registry.
type Record struct {
	GUID      metadata.GUID
	Opcode    uint8
	Version   uint8
	EventID   uint16
	Timestamp uint64
	Payload   []byte
}

// BufferInfo describes one trace buffer boundary, the unit a Source splits
// a trace into for streaming.
type BufferInfo interface {
	// StreamName derives a stream file name for this buffer.
	StreamName() string
}

// Source produces a sequence of trace buffers and the records within them.
// Run must call onBufferBegin once before the first record of each buffer,
// and onEvent once per record, in the trace's original order, until the
// trace is exhausted or ctx is canceled. If either callback returns an
// error, Run must stop and return that error.
type Source interface {
	Run(ctx context.Context, onBufferBegin func(BufferInfo) error, onEvent func(Record) error) error
}
