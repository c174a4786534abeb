// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"encoding/binary"

	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"
	"github.com/eti-p-doray/ETW2CTF/support/byteslicereader"
)

// LengthPrefixedDecoder claims payloads for a single (GUID, Opcode) pair
// whose wire layout is a little-endian u32 length followed by exactly that
// many bytes of data, declaring them as a UINT32 length field plus a
// BINARY_VAR data field sized by it.
//
// This is the common shape of a manifest-described "counted binary blob"
// property; a real ETW provider dissector would register one
// LengthPrefixedDecoder per (GUID, Opcode) pair whose layout matches.
type LengthPrefixedDecoder struct {
	GUID      metadata.GUID
	Opcode    uint8
	FieldName string
}

// Decode implements Decoder.
func (d LengthPrefixedDecoder) Decode(guid metadata.GUID, opcode uint8, payload []byte, pkt *packet.Packet, evt *metadata.Event) bool {
	if guid != d.GUID || opcode != d.Opcode {
		return false
	}

	r := byteslicereader.R{Buffer: payload}
	// Next reports io.EOF when the header is the whole payload, which is
	// valid for a zero length; only the byte count matters here.
	header, _ := r.Next(4)
	if len(header) < 4 {
		return false
	}
	length := binary.LittleEndian.Uint32(header)

	body := r.Peek(int(length))
	if uint32(len(body)) != length || r.Remaining() != len(body) {
		return false
	}
	r.Next(len(body))

	pkt.EncodeU32(length)
	pkt.EncodeBytes(body)

	lengthField := d.FieldName + "_length"
	evt.AddField(metadata.Int(metadata.FieldType_UINT32, lengthField, metadata.RootScope))
	evt.AddField(metadata.VarArray(metadata.FieldType_BINARY_VAR, d.FieldName, lengthField, metadata.RootScope))
	return true
}
