// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"context"
	"encoding/json"
	"os"

	"github.com/eti-p-doray/ETW2CTF/metadata"

	"github.com/pkg/errors"
)

// JSONFileSource is a fixture Source that reads a statically described
// trace from a JSON file. It exists purely so the CLI and integration
// tests have something concrete to drive in the absence of a real ETW
// reader; it is scaffolding, not a substitute for one.
//
// JSON shape:
//
//	{
//	  "buffers": [
//	    {
//	      "name": "buffer0",
//	      "records": [
//	        {"guid": "...", "opcode": 1, "version": 0, "eventId": 5,
//	         "timestamp": 1000, "payload": "base64..."}
//	      ]
//	    }
//	  ]
//	}
type JSONFileSource struct {
	Path string
}

type jsonTrace struct {
	Buffers []jsonBuffer `json:"buffers"`
}

type jsonBuffer struct {
	Name    string       `json:"name"`
	Records []jsonRecord `json:"records"`
}

// StreamName implements BufferInfo.
func (b jsonBuffer) StreamName() string { return b.Name }

type jsonRecord struct {
	GUID      string `json:"guid"`
	Opcode    uint8  `json:"opcode"`
	Version   uint8  `json:"version"`
	EventID   uint16 `json:"eventId"`
	Timestamp uint64 `json:"timestamp"`
	Payload   []byte `json:"payload"` // json unmarshals a base64 string directly into []byte.
}

// Run implements Source.
func (s JSONFileSource) Run(ctx context.Context, onBufferBegin func(BufferInfo) error, onEvent func(Record) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return errors.Wrapf(err, "opening trace file %q", s.Path)
	}
	defer f.Close()

	var t jsonTrace
	if err := json.NewDecoder(f).Decode(&t); err != nil {
		return errors.Wrapf(err, "decoding trace file %q", s.Path)
	}

	for _, buf := range t.Buffers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onBufferBegin(buf); err != nil {
			return errors.Wrapf(err, "onBufferBegin(%q)", buf.Name)
		}

		for _, r := range buf.Records {
			if err := ctx.Err(); err != nil {
				return err
			}

			guid, err := metadata.ParseGUID(r.GUID)
			if err != nil {
				return errors.Wrapf(err, "parsing guid %q", r.GUID)
			}

			rec := Record{
				GUID:      guid,
				Opcode:    r.Opcode,
				Version:   r.Version,
				EventID:   r.EventID,
				Timestamp: r.Timestamp,
				Payload:   r.Payload,
			}
			if err := onEvent(rec); err != nil {
				return errors.Wrap(err, "onEvent")
			}
		}
	}
	return nil
}
