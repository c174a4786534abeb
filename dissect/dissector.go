// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dissect implements the dissector registry and decoding driver:
// the ordered chain of decoders that translate a raw payload into schema
// (Event fields) plus data (Packet bytes), and the per-record/per-buffer
// driver that wires that chain to a Metadata dictionary and a Stream
// writer.
package dissect

import (
	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"

	"github.com/pkg/errors"
)

// Decoder recognizes a specific (guid, opcode) family and translates a
// payload into schema (Event fields) and data (Packet bytes) in lockstep.
//
// On true, the decoder has appended some descriptor fields to evt and the
// corresponding bytes to pkt; the two extensions must agree (spec.md
// §4.E). On false, the decoder should leave its outputs unchanged, though
// the Registry does not rely on that and performs explicit rollback.
type Decoder interface {
	Decode(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool

// Decode implements Decoder.
func (f DecoderFunc) Decode(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool {
	return f(guid, opcode, payload, pkt, evt)
}

// Registry is an ordered chain of Decoders, tried in order until one claims
// a payload, with atomic rollback of pkt and evt between attempts so the
// next Decoder sees a clean slate.
//
// Registry mutation (Register) must be confined to a pre-driver
// initialization phase; after that, Registry is read-only (spec.md §5).
type Registry struct {
	decoders []Decoder
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds d to the chain. Newly registered decoders are tried first:
// Register prepends to the head, so later registrations take priority
// (spec.md §4.E's LIFO ordering option), mirroring
// _examples/original_source/dissector/dissectors.cc's global linked list
// (`this->next_ = dissectors; dissectors = this;`).
func (r *Registry) Register(d Decoder) {
	r.decoders = append([]Decoder{d}, r.decoders...)
}

// TryDecode attempts each registered Decoder in turn. If one returns true,
// TryDecode stops and returns true, leaving pkt/evt holding that decoder's
// output. Otherwise every attempt is rolled back and TryDecode returns
// false with pkt/evt restored to their pre-call state.
func (r *Registry) TryDecode(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool {
	packetPos := pkt.Size()
	fieldPos := len(evt.Fields)

	for _, d := range r.decoders {
		if d.Decode(guid, opcode, payload, pkt, evt) {
			return true
		}

		evt.ResetTo(fieldPos)
		if err := pkt.Reset(packetPos); err != nil {
			// A decoder that returns false but leaves the packet shorter
			// than it found it violates the dissector contract (spec.md
			// §7: "undefined behavior at this layer; dissectors are
			// trusted").
			panic(errors.Wrap(err, "dissector left packet in an inconsistent state"))
		}
	}
	return false
}
