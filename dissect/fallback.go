// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dissect

import (
	"bytes"

	"github.com/eti-p-doray/ETW2CTF/metadata"
	"github.com/eti-p-doray/ETW2CTF/packet"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// opaquePayload is the struc-tagged wire shape for a payload no dissector
// claimed: a little-endian length prefix followed by the raw bytes
// themselves (struc.Pack computes Length from len(Payload) via the sizeof
// tag).
type opaquePayload struct {
	Length  uint32 `struc:"sizeof=Payload,little"`
	Payload []byte
}

// EncodeOpaqueFallback appends a generic "opaque_length"/"opaque_payload"
// field pair to evt and the struc-packed bytes backing them to pkt. It is
// the driver's policy of last resort for a payload no registered Decoder
// claimed (spec.md §4.F point 6).
func EncodeOpaqueFallback(payload []byte, pkt *packet.Packet, evt *metadata.Event) error {
	var wire bytes.Buffer
	if err := struc.Pack(&wire, &opaquePayload{Payload: payload}); err != nil {
		return errors.Wrap(err, "packing opaque fallback payload")
	}
	pkt.EncodeBytes(wire.Bytes())

	evt.AddField(metadata.Int(metadata.FieldType_UINT32, "opaque_length", metadata.RootScope))
	evt.AddField(metadata.VarArray(metadata.FieldType_BINARY_VAR, "opaque_payload", "opaque_length", metadata.RootScope))
	return nil
}
