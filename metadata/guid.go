// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// GUID is a 16-byte provider/event descriptor identifier, matching ETW's
// wire representation.
type GUID [16]byte

// String renders g in the canonical
// "XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX" form.
func (g GUID) String() string {
	buf := make([]byte, 36)
	hex.Encode(buf[0:8], g[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], g[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], g[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], g[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], g[10:16])
	return string(buf)
}

// ParseGUID parses the canonical textual GUID form produced by String.
func ParseGUID(s string) (GUID, error) {
	var g GUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return g, errors.Errorf("malformed GUID: %q", s)
	}

	segments := [][2]int{{0, 8}, {9, 13}, {14, 18}, {19, 23}, {24, 36}}
	dst := [][]byte{g[0:4], g[4:6], g[6:8], g[8:10], g[10:16]}
	for i, seg := range segments {
		if _, err := hex.Decode(dst[i], []byte(s[seg[0]:seg[1]])); err != nil {
			return GUID{}, errors.Wrapf(err, "malformed GUID: %q", s)
		}
	}
	return g, nil
}
