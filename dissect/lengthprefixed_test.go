// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LengthPrefixedDecoder", func() {
	var (
		guid    = metadata.GUID{1, 2, 3}
		decoder = LengthPrefixedDecoder{GUID: guid, Opcode: 9, FieldName: "message"}
	)

	It("claims a matching guid/opcode with a well-formed length prefix", func() {
		var pkt packet.Packet
		var evt metadata.Event

		payload := []byte{3, 0, 0, 0, 'h', 'i', '!'}
		Expect(decoder.Decode(guid, 9, payload, &pkt, &evt)).To(BeTrue())

		Expect(pkt.RawBytes()).To(Equal([]byte{3, 0, 0, 0, 'h', 'i', '!'}))
		Expect(evt.Fields).To(HaveLen(2))
		Expect(evt.Fields[0].Name).To(Equal("message_length"))
		Expect(evt.Fields[1].Name).To(Equal("message"))
		Expect(evt.Fields[1].FieldSize).To(Equal("message_length"))
	})

	It("refuses a mismatched guid", func() {
		var pkt packet.Packet
		var evt metadata.Event
		Expect(decoder.Decode(metadata.GUID{9, 9}, 9, []byte{0, 0, 0, 0}, &pkt, &evt)).To(BeFalse())
	})

	It("refuses a mismatched opcode", func() {
		var pkt packet.Packet
		var evt metadata.Event
		Expect(decoder.Decode(guid, 1, []byte{0, 0, 0, 0}, &pkt, &evt)).To(BeFalse())
	})

	It("refuses a payload shorter than its declared length", func() {
		var pkt packet.Packet
		var evt metadata.Event
		payload := []byte{10, 0, 0, 0, 'x'} // claims 10 bytes, only has 1.
		Expect(decoder.Decode(guid, 9, payload, &pkt, &evt)).To(BeFalse())
	})

	It("refuses a payload too short to even hold the length prefix", func() {
		var pkt packet.Packet
		var evt metadata.Event
		Expect(decoder.Decode(guid, 9, []byte{1, 2}, &pkt, &evt)).To(BeFalse())
	})

	It("works through the Registry, including rollback on a shorter-than-declared payload", func() {
		r := NewRegistry()
		r.Register(decoder)

		var pkt packet.Packet
		var evt metadata.Event
		claimed := r.TryDecode(guid, 9, []byte{99, 0, 0, 0}, &pkt, &evt)
		Expect(claimed).To(BeFalse())
		Expect(pkt.Size()).To(Equal(0))
		Expect(evt.Fields).To(HaveLen(0))
	})
})
