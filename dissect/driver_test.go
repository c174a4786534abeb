// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"strings"

	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"
	"github.com/eti-p-doray/ETW2CTF/trace"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeStream records the sequence of stream lifecycle calls and the bytes
// written to whichever stream is currently open, without touching disk.
type fakeStream struct {
	open    bool
	current string
	events  []string // e.g. "open:stream0", "close:stream0"; writes are not recorded here
	written map[string][]byte
}

func newFakeStream() *fakeStream {
	return &fakeStream{written: make(map[string][]byte)}
}

func (s *fakeStream) OpenStream(name string) error {
	if s.open {
		return errStreamAlreadyOpen
	}
	s.open = true
	s.current = name
	s.events = append(s.events, "open:"+name)
	return nil
}

func (s *fakeStream) CloseStream() error {
	if !s.open {
		return errStreamNotOpen
	}
	s.events = append(s.events, "close:"+s.current)
	s.open = false
	s.current = ""
	return nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	if !s.open {
		return 0, errStreamNotOpen
	}
	s.written[s.current] = append(s.written[s.current], p...)
	return len(p), nil
}

type streamError string

func (e streamError) Error() string { return string(e) }

const (
	errStreamAlreadyOpen = streamError("stream already open")
	errStreamNotOpen     = streamError("no stream open")
)

type fakeBufferInfo string

func (f fakeBufferInfo) StreamName() string { return string(f) }

var _ = Describe("Driver", func() {
	var (
		meta     *metadata.Metadata
		registry *Registry
		stream   *fakeStream
		driver   *Driver
	)

	BeforeEach(func() {
		meta = metadata.New()
		registry = NewRegistry()
		stream = newFakeStream()
		driver = NewDriver(meta, registry, stream, nil)
	})

	It("opens the default stream and writes a header on Start", func() {
		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(stream.events).To(Equal([]string{"open:stream"}))
		Expect(stream.written["stream"]).NotTo(BeEmpty())
	})

	It("closes and reopens on ProcessBufferBegin", func() {
		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(driver.ProcessBufferBegin(fakeBufferInfo("buffer1"))).NotTo(HaveOccurred())
		Expect(stream.events).To(Equal([]string{"open:stream", "close:stream", "open:buffer1"}))
	})

	It("writes every claimed record and registers their shared shape once", func() {
		registry.Register(DecoderFunc(func(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool {
			pkt.EncodeU8(payload[0])
			evt.AddField(metadata.Int(metadata.FieldType_UINT8, "byte0", metadata.RootScope))
			return true
		}))

		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(driver.ProcessRecord(trace.Record{Payload: []byte{0x11}, Timestamp: 42})).NotTo(HaveOccurred())
		Expect(driver.ProcessRecord(trace.Record{Payload: []byte{0x22}, Timestamp: 43})).NotTo(HaveOccurred())

		written := stream.written["stream"]
		// header bytes, then two packets: [4-byte id][8-byte timestamp][1 payload byte] each.
		Expect(len(written)).To(BeNumerically(">", 0))
		Expect(meta.Size()).To(Equal(1)) // both records share the same event shape -> one registered Event.
	})

	It("opaquely encodes a record no dissector claims", func() {
		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(driver.ProcessRecord(trace.Record{Payload: []byte{0xDE, 0xAD}})).NotTo(HaveOccurred())
		Expect(meta.Size()).To(Equal(1))

		evt, err := meta.EventWithID(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(evt.Fields).To(HaveLen(2))
		Expect(evt.Fields[0].Name).To(Equal("opaque_length"))
		Expect(evt.Fields[1].Name).To(Equal("opaque_payload"))
	})

	It("drops unclaimed records when SkipUnclaimed is set", func() {
		driver.SkipUnclaimed = true
		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(driver.ProcessRecord(trace.Record{Payload: []byte{0xDE, 0xAD}})).NotTo(HaveOccurred())
		Expect(meta.Size()).To(Equal(0))
	})

	It("writes metadata to a dedicated stream on Finish", func() {
		registry.Register(DecoderFunc(func(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool {
			evt.AddField(metadata.Int(metadata.FieldType_UINT8, "x", metadata.RootScope))
			pkt.EncodeU8(0)
			return true
		}))

		Expect(driver.Start()).NotTo(HaveOccurred())
		Expect(driver.ProcessRecord(trace.Record{Payload: []byte{0}})).NotTo(HaveOccurred())
		Expect(driver.Finish()).NotTo(HaveOccurred())

		Expect(stream.events).To(Equal([]string{"open:stream", "close:stream", "open:metadata", "close:metadata"}))
		Expect(string(stream.written["metadata"])).To(ContainSubstring("event {"))
		Expect(strings.Contains(string(stream.written["metadata"]), "id = 0;")).To(BeTrue())
	})
})
