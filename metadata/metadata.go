// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/pkg/errors"
)

// ValidateOnRegister, when true, causes GetIDForEvent to assert that the
// event's STRUCT_BEGIN/STRUCT_END fields are balanced before assigning it
// an id. It defaults to true; production call sites that have already
// vetted their dissectors exhaustively in tests may set it to false to
// avoid paying the validation cost per event.
var ValidateOnRegister = true

// Metadata is a deduplicating registry mapping each distinct Event layout
// observed in a trace to a stable, dense integer id, assigned in order of
// first appearance.
//
// Metadata exclusively owns the Events it holds; events passed to
// GetIDForEvent are only borrowed for comparison/insertion.
//
// Metadata is not safe for concurrent use (see spec.md §5).
type Metadata struct {
	events []Event
	index  map[uint64][]int // fingerprint -> candidate event indexes (collision chain)
}

// New constructs an empty Metadata registry.
func New() *Metadata {
	return &Metadata{
		index: make(map[uint64][]int),
	}
}

// Size returns the number of distinct events registered so far.
func (m *Metadata) Size() int { return len(m.events) }

// EventWithID returns the event registered with the given id.
func (m *Metadata) EventWithID(id int) (Event, error) {
	if id < 0 || id >= len(m.events) {
		return Event{}, errors.Errorf("event id %d out of range [0, %d)", id, len(m.events))
	}
	return m.events[id], nil
}

// GetIDForEvent returns the dense id for e, registering it as a new event
// if it has not been seen before.
//
// If ValidateOnRegister is set, e's STRUCT_BEGIN/STRUCT_END nesting is
// checked for balance; an unbalanced event indicates a dissector bug (the
// contract in spec.md §4.E requires balance be established by the time
// GetIDForEvent is called).
func (m *Metadata) GetIDForEvent(e Event) int {
	if ValidateOnRegister {
		if err := validateBalanced(e); err != nil {
			panic(errors.Wrap(err, "unbalanced event passed to GetIDForEvent"))
		}
	}

	fp := fingerprint(e)
	for _, idx := range m.index[fp] {
		if m.events[idx].Equal(e) {
			return idx
		}
	}

	id := len(m.events)
	m.events = append(m.events, e.Clone())
	m.index[fp] = append(m.index[fp], id)
	return id
}

// fingerprint computes a canonical hash of e's descriptor and field
// sequence, used only to accelerate GetIDForEvent's lookup; it never
// replaces the authoritative Equal comparison (hash collisions fall back to
// a linear scan of the bucket), so first-seen id-assignment order is
// preserved regardless of hash quality.
func fingerprint(e Event) uint64 {
	h := fnv.New64a()

	var scratch [8]byte
	writeUint64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:], v)
		_, _ = h.Write(scratch[:])
	}
	writeString := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	_, _ = h.Write(e.GUID[:])
	_, _ = h.Write([]byte{e.Opcode, e.Version})
	writeUint64(uint64(e.EventID))
	writeString(e.Name)
	for _, f := range e.Fields {
		writeUint64(uint64(f.Type))
		writeString(f.Name)
		writeUint64(f.Size)
		writeString(f.FieldSize)
		writeUint64(f.Parent)
	}
	return h.Sum64()
}

// validateBalanced checks that e.Fields forms a well-balanced
// STRUCT_BEGIN/STRUCT_END bracket sequence with consistent Parent linkage.
// A STRUCT_END carries the same Parent as its matching STRUCT_BEGIN: the
// scope enclosing the struct.
func validateBalanced(e Event) error {
	var stack []uint64 // stack of open STRUCT_BEGIN ids (index into e.Fields)
	top := func() uint64 {
		if len(stack) == 0 {
			return RootScope
		}
		return stack[len(stack)-1]
	}

	for i, f := range e.Fields {
		if f.Type == FieldType_STRUCT_END {
			if len(stack) == 0 {
				return errors.Errorf("field %d (%s) closes a scope that was never opened", i, f.Name)
			}
			stack = stack[:len(stack)-1]
		}
		if f.Parent != top() {
			return errors.Errorf("field %d (%s) has parent %d, expected %d", i, f.Name, f.Parent, top())
		}
		if f.Type == FieldType_STRUCT_BEGIN {
			stack = append(stack, uint64(i))
		}
	}
	if len(stack) != 0 {
		return errors.Errorf("event has %d unclosed struct scope(s)", len(stack))
	}
	return nil
}
