// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package packet implements Packet, the length-prefixed, back-patchable
// little-endian byte buffer that the schema-guided binary layout is built
// on top of.
package packet

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Packet is an appendable little-endian byte buffer with in-place
// back-patching, plus the side-channel offsets a Driver stamps once a
// packet's event id or context size is known.
//
// Packet is not safe for concurrent use (see spec.md §5).
type Packet struct {
	buf bytes.Buffer

	// Timestamp is this packet's associated event timestamp.
	Timestamp uint64

	// EventIDOffset is the byte offset within buf reserved for a u32 event
	// id, patched in once dissection succeeds. Zero until set by a caller.
	EventIDOffset int

	// PacketContextOffset is the byte offset within buf reserved for
	// per-stream context whose size is only known once written.
	PacketContextOffset int
}

// Size returns the number of bytes currently buffered.
func (p *Packet) Size() int { return p.buf.Len() }

// RawBytes returns a borrowed view of the buffered bytes, valid until the
// next mutating call.
func (p *Packet) RawBytes() []byte { return p.buf.Bytes() }

// Reset truncates the buffer to exactly offset bytes. offset must not
// exceed Size().
func (p *Packet) Reset(offset int) error {
	if offset < 0 || offset > p.buf.Len() {
		return errors.Errorf("reset offset %d out of range [0, %d]", offset, p.buf.Len())
	}
	p.buf.Truncate(offset)
	return nil
}

// EncodeU8 appends v as a single byte.
func (p *Packet) EncodeU8(v uint8) { p.buf.WriteByte(v) }

// EncodeU16 appends v as 2 little-endian bytes.
func (p *Packet) EncodeU16(v uint16) {
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], v)
	p.buf.Write(scratch[:])
}

// EncodeU32 appends v as 4 little-endian bytes.
func (p *Packet) EncodeU32(v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	p.buf.Write(scratch[:])
}

// EncodeU64 appends v as 8 little-endian bytes.
func (p *Packet) EncodeU64(v uint64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], v)
	p.buf.Write(scratch[:])
}

// EncodeBytes appends b verbatim.
func (p *Packet) EncodeBytes(b []byte) { p.buf.Write(b) }

// EncodeString appends the bytes of s followed by a single zero byte.
//
// s must not contain an interior zero byte; EncodeString returns an error
// rather than silently truncating, per spec.md §7's requirement that the
// choice be documented and consistent.
func (p *Packet) EncodeString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return errors.Errorf("string contains interior zero byte at offset %d", i)
		}
	}
	p.buf.WriteString(s)
	p.buf.WriteByte(0)
	return nil
}

// UpdateU32 overwrites 4 bytes at pos with the little-endian encoding of v.
func (p *Packet) UpdateU32(pos int, v uint32) error {
	if pos < 0 || pos+4 > p.buf.Len() {
		return errors.Errorf("update at %d..%d out of range [0, %d]", pos, pos+4, p.buf.Len())
	}
	binary.LittleEndian.PutUint32(p.buf.Bytes()[pos:pos+4], v)
	return nil
}

// UpdateU64 overwrites 8 bytes at pos with the little-endian encoding of v.
func (p *Packet) UpdateU64(pos int, v uint64) error {
	if pos < 0 || pos+8 > p.buf.Len() {
		return errors.Errorf("update at %d..%d out of range [0, %d]", pos, pos+8, p.buf.Len())
	}
	binary.LittleEndian.PutUint64(p.buf.Bytes()[pos:pos+8], v)
	return nil
}
