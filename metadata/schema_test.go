// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package metadata

import (
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Metadata.Serialize", func() {
	It("declares each registered event once, in id order", func() {
		m := New()
		id1 := m.GetIDForEvent(sampleEvent(1))
		id2 := m.GetIDForEvent(sampleEvent(2))

		text, err := m.Serialize()
		Expect(err).NotTo(HaveOccurred())

		firstIdx := strings.Index(text, "id = 0;")
		secondIdx := strings.Index(text, "id = 1;")
		Expect(firstIdx).To(BeNumerically(">=", 0))
		Expect(secondIdx).To(BeNumerically(">", firstIdx))
		Expect(id1).To(Equal(0))
		Expect(id2).To(Equal(1))
	})

	It("renders nested structs from the flat bracket sequence", func() {
		var e Event
		e.SetInfo(GUID{}, 0, 0, 0)
		e.SetName("Nested")
		e.AddField(Int(FieldType_UINT32, "outer", RootScope))
		e.AddField(StructBegin("inner", RootScope))
		e.AddField(Int(FieldType_UINT8, "innerField", 1))
		e.AddField(StructEnd("inner", RootScope))

		m := New()
		m.GetIDForEvent(e)

		text, err := m.Serialize()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("struct {"))
		Expect(text).To(ContainSubstring("innerField"))
		Expect(text).To(ContainSubstring("} inner;"))
	})

	It("renders variable-length arrays with their named length field", func() {
		var e Event
		e.SetInfo(GUID{}, 0, 0, 0)
		e.SetName("VarLen")
		e.AddField(Int(FieldType_UINT32, "count", RootScope))
		e.AddField(VarArray(FieldType_BINARY_VAR, "data", "count", RootScope))

		m := New()
		m.GetIDForEvent(e)

		text, err := m.Serialize()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("binary_var data[count]"))
	})

	It("fails to serialize an event with an unbalanced struct", func() {
		ValidateOnRegister = false
		defer func() { ValidateOnRegister = true }()

		var e Event
		e.SetInfo(GUID{}, 0, 0, 0)
		e.AddField(StructBegin("s", RootScope))

		m := New()
		m.GetIDForEvent(e)

		_, err := m.Serialize()
		Expect(err).To(HaveOccurred())
	})
})
