// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

// Event is the mutable aggregate describing one distinct event layout: its
// identifying descriptor (name, guid, opcode, version, event id) plus the
// ordered sequence of Fields a dissector appended while decoding a payload
// of this shape.
//
// Within an Event, field names must be unique; AddField assumes the caller
// (a dissector) already enforces this.
type Event struct {
	Name    string
	GUID    GUID
	Opcode  uint8
	Version uint8
	EventID uint16

	Fields []Field
}

// SetInfo populates the event's identifying descriptor.
func (e *Event) SetInfo(guid GUID, opcode, version uint8, eventID uint16) {
	e.GUID = guid
	e.Opcode = opcode
	e.Version = version
	e.EventID = eventID
}

// SetName sets the event's display name.
func (e *Event) SetName(name string) { e.Name = name }

// AddField appends f to the event's layout.
func (e *Event) AddField(f Field) { e.Fields = append(e.Fields, f) }

// Reset empties the event's field list, leaving the descriptor untouched.
func (e *Event) Reset() { e.Fields = e.Fields[:0] }

// ResetTo truncates the field list to its first offset entries. Used by
// dissector rollback and nested-scope unwinding.
func (e *Event) ResetTo(offset int) { e.Fields = e.Fields[:offset] }

// Equal reports whether e and o have identical descriptors and an
// identical, ordered field sequence. Equal is the sole basis for
// deduplication in Metadata.
func (e Event) Equal(o Event) bool {
	if e.GUID != o.GUID || e.Opcode != o.Opcode || e.Version != o.Version || e.EventID != o.EventID {
		return false
	}
	if e.Name != o.Name {
		return false
	}
	if len(e.Fields) != len(o.Fields) {
		return false
	}
	for i := range e.Fields {
		if !e.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e, independent of e's backing Fields array.
// Metadata clones events it takes ownership of so later mutation of the
// caller's reused Event (e.g. via Reset) cannot corrupt the registry.
func (e Event) Clone() Event {
	clone := e
	clone.Fields = append([]Field(nil), e.Fields...)
	return clone
}
