package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
)

var _ = Describe("Merge", func() {
	Context("with scalar values", func() {
		It("should replace existing scalars", func() {
			existing := map[string]any{"origin": "RUH", "passengers_count": 1}
			update := map[string]any{"origin": "JED"}

			merged := conversation.Merge(existing, update)

			Expect(merged).To(HaveKeyWithValue("origin", "JED"))
			Expect(merged).To(HaveKeyWithValue("passengers_count", 1))
		})

		It("should add keys absent from the existing mapping", func() {
			merged := conversation.Merge(map[string]any{"a": 1}, map[string]any{"b": 2})

			Expect(merged).To(HaveKeyWithValue("a", 1))
			Expect(merged).To(HaveKeyWithValue("b", 2))
		})

		It("should replace when the value types differ", func() {
			existing := map[string]any{"selected_flight": "XY123"}
			update := map[string]any{"selected_flight": map[string]any{"flight_number": "XY123"}}

			merged := conversation.Merge(existing, update)

			Expect(merged["selected_flight"]).To(Equal(map[string]any{"flight_number": "XY123"}))
		})
	})

	Context("with nested mappings", func() {
		It("should merge recursively instead of replacing", func() {
			existing := map[string]any{
				"contact_info": map[string]any{"email": "a@b.c", "phone": "123"},
			}
			update := map[string]any{
				"contact_info": map[string]any{"phone": "456"},
			}

			merged := conversation.Merge(existing, update)

			contact := merged["contact_info"].(map[string]any)
			Expect(contact).To(HaveKeyWithValue("email", "a@b.c"))
			Expect(contact).To(HaveKeyWithValue("phone", "456"))
		})
	})

	Context("with lists", func() {
		It("should append items not already present, keeping order", func() {
			existing := map[string]any{"items": []any{1, 2}}
			update := map[string]any{"items": []any{2, 3}}

			merged := conversation.Merge(existing, update)

			Expect(merged["items"]).To(Equal([]any{1, 2, 3}))
		})

		It("should compare list items structurally", func() {
			passenger := map[string]any{"first_name": "Lina", "last_name": "Hassan"}
			existing := map[string]any{"passengers": []any{passenger}}
			update := map[string]any{"passengers": []any{
				map[string]any{"first_name": "Lina", "last_name": "Hassan"},
				map[string]any{"first_name": "Omar", "last_name": "Hassan"},
			}}

			merged := conversation.Merge(existing, update)

			Expect(merged["passengers"]).To(HaveLen(2))
		})
	})

	Context("with nil inputs", func() {
		It("should treat a nil existing mapping as empty", func() {
			merged := conversation.Merge(nil, map[string]any{"a": 1})

			Expect(merged).To(HaveKeyWithValue("a", 1))
		})

		It("should leave the existing mapping unchanged for a nil update", func() {
			merged := conversation.Merge(map[string]any{"a": 1}, nil)

			Expect(merged).To(Equal(map[string]any{"a": 1}))
		})

		It("should let an update overwrite a nil existing value", func() {
			existing := map[string]any{"flight_status": nil}
			update := map[string]any{"flight_status": []any{"ON_TIME"}}

			merged := conversation.Merge(existing, update)

			Expect(merged["flight_status"]).To(Equal([]any{"ON_TIME"}))
		})
	})

	It("should not mutate its inputs", func() {
		existing := map[string]any{"items": []any{1}, "nested": map[string]any{"a": 1}}
		update := map[string]any{"items": []any{2}, "nested": map[string]any{"b": 2}}

		conversation.Merge(existing, update)

		Expect(existing["items"]).To(Equal([]any{1}))
		Expect(existing["nested"]).To(Equal(map[string]any{"a": 1}))
		Expect(update["nested"]).To(Equal(map[string]any{"b": 2}))
	})

	It("should be idempotent for a repeated update", func() {
		existing := map[string]any{"items": []any{1, 2}, "origin": "RUH"}
		update := map[string]any{"items": []any{2, 3}, "origin": "JED"}

		once := conversation.Merge(existing, update)
		twice := conversation.Merge(once, update)

		Expect(twice).To(Equal(once))
	})
})
