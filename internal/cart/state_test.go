package cart

import "testing"

func TestState_UpsertPatchesByRowID(t *testing.T) {
	st := NewState()

	st.applyUpsert(LineItem{ID: 1, ProductID: 10, Quantity: 1})
	st.applyUpsert(LineItem{ID: 2, ProductID: 20, Quantity: 1})
	st.applyUpsert(LineItem{ID: 1, ProductID: 10, Quantity: 4})

	items := st.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Quantity != 4 {
		t.Fatalf("expected row 1 patched in place to quantity 4, got %d", items[0].Quantity)
	}
	if items[1].ID != 2 {
		t.Fatalf("insertion order must be preserved, got id %d second", items[1].ID)
	}
}

func TestState_RemoveAndClear(t *testing.T) {
	st := NewState()
	st.applyUpsert(LineItem{ID: 1})
	st.applyUpsert(LineItem{ID: 2})

	st.applyRemove(1)
	if st.Len() != 1 {
		t.Fatalf("expected 1 item after remove, got %d", st.Len())
	}
	st.applyRemove(1) // absent id: no-op
	if st.Len() != 1 {
		t.Fatalf("removing an absent id must not change state")
	}

	st.applyClear()
	if st.Len() != 0 {
		t.Fatalf("expected empty state after clear, got %d", st.Len())
	}
}

func TestState_ItemsReturnsCopy(t *testing.T) {
	st := NewState()
	st.applyUpsert(LineItem{ID: 1, Quantity: 1})

	items := st.Items()
	items[0].Quantity = 99

	if st.Items()[0].Quantity != 1 {
		t.Fatalf("mutating the returned slice must not affect the container")
	}
}

func TestState_ReplaceAll(t *testing.T) {
	st := NewState()
	st.applyUpsert(LineItem{ID: 1})

	st.applyReplaceAll([]LineItem{{ID: 5}, {ID: 6}})

	items := st.Items()
	if len(items) != 2 || items[0].ID != 5 || items[1].ID != 6 {
		t.Fatalf("unexpected items after replace: %+v", items)
	}
}
