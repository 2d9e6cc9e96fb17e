package pricing

import "testing"

func TestComputeTotals_Scenario(t *testing.T) {
	// cart = [{price:20.00, qty:2}, {price:15.00, qty:1}]
	lines := []Line{
		{UnitPrice: 20.00, Quantity: 2},
		{UnitPrice: 15.00, Quantity: 1},
	}

	got := ComputeTotals(lines)
	if got.Subtotal != 55.00 {
		t.Fatalf("subtotal = %v, want 55.00", got.Subtotal)
	}
	if got.Tax != 5.50 {
		t.Fatalf("tax = %v, want 5.50", got.Tax)
	}
	if got.Shipping != 10.00 {
		t.Fatalf("shipping = %v, want 10.00", got.Shipping)
	}
	if got.Total != 70.50 {
		t.Fatalf("total = %v, want 70.50", got.Total)
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	got := ComputeTotals(nil)
	if got.Subtotal != 0 || got.Tax != 0 || got.Shipping != 0 || got.Total != 0 {
		t.Fatalf("empty cart should price to zeroes, got %+v", got)
	}
}

func TestComputeTotals_TotalIdentity(t *testing.T) {
	cases := [][]Line{
		{{UnitPrice: 0.01, Quantity: 1}},
		{{UnitPrice: 19.99, Quantity: 3}, {UnitPrice: 0.05, Quantity: 7}},
		{{UnitPrice: 123.45, Quantity: 2}, {UnitPrice: 9.99, Quantity: 1}, {UnitPrice: 0.33, Quantity: 9}},
		{{UnitPrice: 1.0 / 3.0 * 3, Quantity: 3}},
	}
	for i, lines := range cases {
		got := ComputeTotals(lines)
		if got.Total != got.Subtotal+got.Tax+got.Shipping {
			t.Errorf("case %d: total %v != subtotal %v + tax %v + shipping %v",
				i, got.Total, got.Subtotal, got.Tax, got.Shipping)
		}
		wantTax := round2(got.Subtotal * TaxRate)
		if got.Tax != wantTax {
			t.Errorf("case %d: tax = %v, want %v", i, got.Tax, wantTax)
		}
	}
}
