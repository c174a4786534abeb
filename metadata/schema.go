// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Serialize renders the full CTF-compatible textual schema describing every
// event registered in m, in id order.
//
// Struct nesting is rebuilt from the flat STRUCT_BEGIN/STRUCT_END bracket
// sequence of each event's Fields (the authoritative source, per
// DESIGN.md's resolution of spec.md §9's open question); Field.Parent is
// not consulted here.
func (m *Metadata) Serialize() (string, error) {
	var sb strings.Builder
	for id, e := range m.events {
		body, err := serializeFields(e.Fields)
		if err != nil {
			return "", errors.Wrapf(err, "event %d (%s)", id, e.Name)
		}
		fmt.Fprintf(&sb, "event {\n\tid = %d;\n\tname = %q;\n\tfields := struct {\n%s\t};\n};\n\n", id, e.Name, body)
	}
	return sb.String(), nil
}

// serializeFields renders a flat Field sequence as nested CTF struct bodies,
// using an explicit indent/bracket stack instead of Field.Parent.
func serializeFields(fields []Field) (string, error) {
	var sb strings.Builder
	depth := 1

	indent := func() string { return strings.Repeat("\t", depth) }

	for i, f := range fields {
		switch f.Type {
		case FieldType_STRUCT_BEGIN:
			fmt.Fprintf(&sb, "%sstruct {\n", indent())
			depth++

		case FieldType_STRUCT_END:
			depth--
			if depth < 1 {
				return "", errors.Errorf("field %d: unbalanced STRUCT_END", i)
			}
			fmt.Fprintf(&sb, "%s} %s;\n", indent(), f.Name)

		default:
			decl, err := fieldDecl(f)
			if err != nil {
				return "", errors.Wrapf(err, "field %d (%s)", i, f.Name)
			}
			fmt.Fprintf(&sb, "%s%s;\n", indent(), decl)
		}
	}

	if depth != 1 {
		return "", errors.New("unbalanced STRUCT_BEGIN: missing STRUCT_END")
	}
	return sb.String(), nil
}

// fieldDecl renders a single non-struct field as a CTF type declaration.
func fieldDecl(f Field) (string, error) {
	switch f.Type {
	case FieldType_INT8:
		return ctfInt(8, true, f.Name), nil
	case FieldType_INT16:
		return ctfInt(16, true, f.Name), nil
	case FieldType_INT32:
		return ctfInt(32, true, f.Name), nil
	case FieldType_INT64:
		return ctfInt(64, true, f.Name), nil
	case FieldType_UINT8:
		return ctfInt(8, false, f.Name), nil
	case FieldType_UINT16:
		return ctfInt(16, false, f.Name), nil
	case FieldType_UINT32:
		return ctfInt(32, false, f.Name), nil
	case FieldType_UINT64:
		return ctfInt(64, false, f.Name), nil
	case FieldType_XINT8:
		return ctfHex(8, f.Name), nil
	case FieldType_XINT16:
		return ctfHex(16, f.Name), nil
	case FieldType_XINT32:
		return ctfHex(32, f.Name), nil
	case FieldType_XINT64:
		return ctfHex(64, f.Name), nil
	case FieldType_STRING:
		return fmt.Sprintf("string %s", f.Name), nil
	case FieldType_GUID:
		return fmt.Sprintf("binary_fixed %s[16]", f.Name), nil
	case FieldType_BINARY_FIXED:
		return fmt.Sprintf("binary_fixed %s[%d]", f.Name, f.Size), nil
	case FieldType_BINARY_VAR:
		return fmt.Sprintf("binary_var %s[%s]", f.Name, f.FieldSize), nil
	case FieldType_ARRAY_FIXED:
		return fmt.Sprintf("array_fixed %s[%d]", f.Name, f.Size), nil
	case FieldType_ARRAY_VAR:
		return fmt.Sprintf("array_var %s[%s]", f.Name, f.FieldSize), nil
	default:
		return "", errors.Errorf("unknown field type %s", f.Type)
	}
}

func ctfInt(bits int, signed bool, name string) string {
	kind := "integer"
	sign := "unsigned"
	if signed {
		sign = "signed"
	}
	return fmt.Sprintf("%s { size = %d; signed = %s; } %s", kind, bits, sign, name)
}

func ctfHex(bits int, name string) string {
	return fmt.Sprintf("integer { size = %d; signed = false; base = hex; } %s", bits, name)
}
