// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"context"

	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"
	"github.com/eti-p-doray/ETW2CTF/support/fmtutil"
	"github.com/eti-p-doray/ETW2CTF/support/logging"
	"github.com/eti-p-doray/ETW2CTF/trace"

	"github.com/pkg/errors"
)

// Stream is the subset of streamio.Writer's state machine the Driver drives
// directly: opening/closing named streams within an already-open folder,
// and appending raw bytes to whichever stream is currently open.
type Stream interface {
	OpenStream(name string) error
	CloseStream() error
	Write(p []byte) (int, error)
}

// HeaderEncoder writes a stream's header packet contents into pkt. The
// exact header bytes are the driver's concern (spec.md §6); see
// DefaultHeaderEncoder.
type HeaderEncoder func(pkt *packet.Packet, streamName string)

// streamMagic identifies the start of a stream file: ASCII "CTF" plus a
// format version byte, little-endian.
const streamMagic = 0x01465443

// DefaultHeaderEncoder writes a 4-byte magic value followed by the
// zero-terminated stream name.
func DefaultHeaderEncoder(pkt *packet.Packet, streamName string) {
	pkt.EncodeU32(streamMagic)
	_ = pkt.EncodeString(streamName)
}

// Driver is the per-record and per-buffer entry point wiring a Registry, a
// Metadata dictionary, and a Stream writer together (spec.md §4.F).
//
// Driver is not safe for concurrent use (spec.md §5): it owns scratch
// Packet/Event instances reused across calls.
type Driver struct {
	Meta          *metadata.Metadata
	Registry      *Registry
	Stream        Stream
	Logger        logging.L
	HeaderEncoder HeaderEncoder

	// SkipUnclaimed, if true, drops records no dissector claims instead of
	// falling back to the generic opaque encoding (spec.md §4.F point 6).
	SkipUnclaimed bool

	pkt packet.Packet
	evt metadata.Event
}

// NewDriver constructs a Driver with the default header encoder.
func NewDriver(meta *metadata.Metadata, registry *Registry, stream Stream, logger logging.L) *Driver {
	return &Driver{
		Meta:          meta,
		Registry:      registry,
		Stream:        stream,
		Logger:        logging.Must(logger),
		HeaderEncoder: DefaultHeaderEncoder,
	}
}

// Start opens the default stream and writes its header packet. It must be
// called exactly once, before any ProcessRecord/ProcessBufferBegin call,
// even for a trace that turns out to have zero records — a header is
// always emitted (spec.md's own `main.cpp` unconditionally opens a default
// stream before consuming any events).
func (d *Driver) Start() error {
	return d.openNamedStream("stream")
}

// ProcessBufferBegin closes the current stream, opens a new one derived
// from buf, and writes its header packet (spec.md §4.F "per-buffer
// sequence").
func (d *Driver) ProcessBufferBegin(buf trace.BufferInfo) error {
	if err := d.Stream.CloseStream(); err != nil {
		return errors.Wrap(err, "closing previous stream")
	}
	return d.openNamedStream(buf.StreamName())
}

func (d *Driver) openNamedStream(name string) error {
	if err := d.Stream.OpenStream(name); err != nil {
		return errors.Wrapf(err, "opening stream %q", name)
	}

	var header packet.Packet
	d.HeaderEncoder(&header, name)
	if _, err := d.Stream.Write(header.RawBytes()); err != nil {
		return errors.Wrapf(err, "writing header for stream %q", name)
	}
	return nil
}

// ProcessRecord decodes one source record and, on success, appends its
// encoded bytes to the current stream (spec.md §4.F "per-record
// sequence"). A record no dissector claims is not itself an error: it is
// either dropped (SkipUnclaimed) or opaquely encoded, per policy.
func (d *Driver) ProcessRecord(rec trace.Record) error {
	d.pkt = packet.Packet{Timestamp: rec.Timestamp}
	d.evt = metadata.Event{}
	d.evt.SetInfo(rec.GUID, rec.Opcode, rec.Version, rec.EventID)

	// Reserve a 4-byte slot for the event id (patched in once dissection
	// determines the event's final shape), then the record's timestamp.
	d.pkt.EventIDOffset = d.pkt.Size()
	d.pkt.EncodeU32(0)
	d.pkt.EncodeU64(rec.Timestamp)

	if !d.Registry.TryDecode(rec.GUID, rec.Opcode, rec.Payload, &d.pkt, &d.evt) {
		dissectorMisses.Inc()
		if d.SkipUnclaimed {
			d.Logger.Debugf("dropping unclaimed record: guid=%s opcode=%d payload=%s", rec.GUID, rec.Opcode, fmtutil.HexSlice(rec.Payload))
			return nil
		}
		d.Logger.Debugf("no dissector claimed record, using opaque fallback: guid=%s opcode=%d", rec.GUID, rec.Opcode)
		if err := EncodeOpaqueFallback(rec.Payload, &d.pkt, &d.evt); err != nil {
			return errors.Wrap(err, "encoding opaque fallback")
		}
	}

	id := d.Meta.GetIDForEvent(d.evt)
	if err := d.pkt.UpdateU32(d.pkt.EventIDOffset, uint32(id)); err != nil {
		return errors.Wrap(err, "patching event id")
	}

	n, err := d.Stream.Write(d.pkt.RawBytes())
	if err != nil {
		return errors.Wrap(err, "writing event packet")
	}
	eventsWritten.Inc()
	bytesWritten.Add(float64(n))
	return nil
}

// Finish closes the current stream, then writes the accumulated Metadata's
// textual schema to a dedicated "metadata" stream. A failure here is
// fatal: the resulting trace is unreadable without its schema (spec.md
// §6, §7).
func (d *Driver) Finish() error {
	if err := d.Stream.CloseStream(); err != nil {
		return errors.Wrap(err, "closing final stream")
	}

	if err := d.Stream.OpenStream("metadata"); err != nil {
		return errors.Wrap(err, "opening metadata stream")
	}
	text, err := d.Meta.Serialize()
	if err != nil {
		return errors.Wrap(err, "serializing metadata")
	}
	if _, err := d.Stream.Write([]byte(text)); err != nil {
		return errors.Wrap(err, "writing metadata")
	}
	return errors.Wrap(d.Stream.CloseStream(), "closing metadata stream")
}

// Run drives src to completion, wiring its callbacks directly to
// ProcessBufferBegin/ProcessRecord. Start must be called before Run, and
// Finish after it returns successfully.
func (d *Driver) Run(ctx context.Context, src trace.Source) error {
	return src.Run(ctx, d.ProcessBufferBegin, d.ProcessRecord)
}
