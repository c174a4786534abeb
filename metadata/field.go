// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

// FieldType is the closed enumeration of layout primitives a Field can
// describe.
type FieldType int32

// The full set of supported field types. Ordering matches
// _examples/original_source/converter/metadata.h.
const (
	FieldType_INVALID FieldType = iota
	FieldType_ARRAY_FIXED
	FieldType_ARRAY_VAR
	FieldType_STRUCT_BEGIN
	FieldType_STRUCT_END
	FieldType_BINARY_FIXED
	FieldType_BINARY_VAR
	FieldType_INT8
	FieldType_INT16
	FieldType_INT32
	FieldType_INT64
	FieldType_UINT8
	FieldType_UINT16
	FieldType_UINT32
	FieldType_UINT64
	FieldType_XINT8
	FieldType_XINT16
	FieldType_XINT32
	FieldType_XINT64
	FieldType_STRING
	FieldType_GUID
)

// FieldType_name maps enum values to their textual names, matching the
// teacher's generated-enum idiom (replay/streamfile's Compression_name).
var FieldType_name = map[int32]string{
	0:  "INVALID",
	1:  "ARRAY_FIXED",
	2:  "ARRAY_VAR",
	3:  "STRUCT_BEGIN",
	4:  "STRUCT_END",
	5:  "BINARY_FIXED",
	6:  "BINARY_VAR",
	7:  "INT8",
	8:  "INT16",
	9:  "INT32",
	10: "INT64",
	11: "UINT8",
	12: "UINT16",
	13: "UINT32",
	14: "UINT64",
	15: "XINT8",
	16: "XINT16",
	17: "XINT32",
	18: "XINT64",
	19: "STRING",
	20: "GUID",
}

// FieldType_value is the inverse of FieldType_name.
var FieldType_value = map[string]int32{}

func init() {
	for v, name := range FieldType_name {
		FieldType_value[name] = v
	}
}

// String implements fmt.Stringer.
func (ft FieldType) String() string {
	if name, ok := FieldType_name[int32(ft)]; ok {
		return name
	}
	return "INVALID"
}

// RootScope is the sentinel Field.Parent value denoting the top-level field
// container of an Event (spec's kRootScope).
const RootScope = ^uint64(0)

// Field is an immutable, value-equal descriptor of one logical field within
// an Event's layout.
type Field struct {
	// Type is this field's layout primitive.
	Type FieldType

	// Name is this field's name. Names are unique within an Event.
	Name string

	// Size carries the element count for *_FIXED types.
	Size uint64

	// FieldSize names a previously declared integer field holding the
	// runtime length, for *_VAR types.
	FieldSize string

	// Parent is the id of the enclosing STRUCT_BEGIN field within the same
	// Event, or RootScope.
	Parent uint64
}

// Equal reports whether f and o are structurally identical.
func (f Field) Equal(o Field) bool {
	return f.Type == o.Type &&
		f.Name == o.Name &&
		f.Size == o.Size &&
		f.FieldSize == o.FieldSize &&
		f.Parent == o.Parent
}

// Int constructs a signed or unsigned scalar field (INT8..INT64, UINT8..
// UINT64, XINT8..XINT64, or GUID/STRING when width-less).
func Int(t FieldType, name string, parent uint64) Field {
	return Field{Type: t, Name: name, Parent: parent}
}

// FixedArray constructs an ARRAY_FIXED or BINARY_FIXED field with a literal
// element count.
func FixedArray(t FieldType, name string, size uint64, parent uint64) Field {
	return Field{Type: t, Name: name, Size: size, Parent: parent}
}

// VarArray constructs an ARRAY_VAR or BINARY_VAR field naming the sibling
// field that carries the runtime element count.
func VarArray(t FieldType, name, fieldSize string, parent uint64) Field {
	return Field{Type: t, Name: name, FieldSize: fieldSize, Parent: parent}
}

// StructBegin opens a nested scope; its own id (position within the Event's
// Fields slice) becomes the Parent value for fields declared inside it.
func StructBegin(name string, parent uint64) Field {
	return Field{Type: FieldType_STRUCT_BEGIN, Name: name, Parent: parent}
}

// StructEnd closes the most recently opened scope. Its parent is the scope
// enclosing the struct, the same value passed to the matching StructBegin.
func StructEnd(name string, parent uint64) Field {
	return Field{Type: FieldType_STRUCT_END, Name: name, Parent: parent}
}
