package cart

import (
	"testing"

	"cassa-pos-services/internal/charges"
)

func TestAddOrUpdateMergesUnorderedLines(t *testing.T) {
	s := &Session{VisitToken: "v1", TableNumber: 3}

	created := s.AddOrUpdate(10, "Masala Fries", 50, 1)
	if !created {
		t.Fatal("first add should create a line")
	}
	created = s.AddOrUpdate(10, "Masala Fries", 50, 2)
	if created {
		t.Fatal("second add of the same item should merge, not create")
	}

	if len(s.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(s.Lines))
	}
	line := s.Lines[0]
	if line.Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", line.Quantity)
	}
	if line.LineTotal != 150 {
		t.Fatalf("expected line total 150, got %v", line.LineTotal)
	}
}

func TestAddAfterOrderedCreatesNewLine(t *testing.T) {
	s := &Session{}
	s.AddOrUpdate(10, "Cold Brew", 120, 1)
	group := int64(77)
	s.Lines[0].Ordered = true
	s.Lines[0].OrderGroupID = &group

	created := s.AddOrUpdate(10, "Cold Brew", 120, 2)
	if !created {
		t.Fatal("adding after the line was ordered should create a new line")
	}
	if len(s.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(s.Lines))
	}
	if s.Lines[0].Quantity != 1 || !s.Lines[0].Ordered {
		t.Fatalf("ordered line must stay frozen: %+v", s.Lines[0])
	}
	if s.Lines[1].Quantity != 2 || s.Lines[1].Ordered {
		t.Fatalf("unexpected new line: %+v", s.Lines[1])
	}
	if s.Lines[0].ID == s.Lines[1].ID {
		t.Fatal("line ids must be unique")
	}
}

func TestRemoveUnknownLineIsNoop(t *testing.T) {
	s := &Session{}
	s.AddOrUpdate(1, "Tea", 30, 1)

	if s.Remove("no-such-id") {
		t.Fatal("removing an unknown id should report false")
	}
	if len(s.Lines) != 1 {
		t.Fatalf("cart changed on no-op remove: %d lines", len(s.Lines))
	}

	if !s.Remove(s.Lines[0].ID) {
		t.Fatal("removing an existing line should report true")
	}
	if len(s.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(s.Lines))
	}
}

func TestStripGroupRemovesOnlyThatOrder(t *testing.T) {
	s := &Session{}
	s.AddOrUpdate(1, "Tea", 30, 1)
	s.AddOrUpdate(2, "Fries", 50, 2)
	first := int64(5)
	for i := range s.Lines {
		s.Lines[i].Ordered = true
		s.Lines[i].OrderGroupID = &first
	}
	s.AddOrUpdate(3, "Brownie", 80, 1)

	s.StripGroup(5)
	if len(s.Lines) != 1 {
		t.Fatalf("expected only the pending line to survive, got %d", len(s.Lines))
	}
	if s.Lines[0].MenuItemID != 3 {
		t.Fatalf("wrong line survived: %+v", s.Lines[0])
	}
}

func TestTotalsExample(t *testing.T) {
	s := &Session{}
	s.AddOrUpdate(1, "Item A", 50, 2)

	got := s.Totals(charges.Percentages{TaxPercent: 5, ServiceChargePercent: 10})
	if got.Subtotal != 100 {
		t.Fatalf("expected subtotal 100, got %v", got.Subtotal)
	}
	if got.Tax != 5 {
		t.Fatalf("expected tax 5, got %v", got.Tax)
	}
	if got.ServiceCharge != 10 {
		t.Fatalf("expected service charge 10, got %v", got.ServiceCharge)
	}
	if got.Total != 115 {
		t.Fatalf("expected total 115, got %v", got.Total)
	}
}

func TestTotalsInvariantHolds(t *testing.T) {
	cases := []struct {
		price float64
		qty   int32
		pct   charges.Percentages
	}{
		{33.33, 3, charges.Percentages{TaxPercent: 7.5, ServiceChargePercent: 12.5}},
		{19.99, 7, charges.Percentages{TaxPercent: 18, ServiceChargePercent: 0}},
		{0.01, 1, charges.Percentages{TaxPercent: 5, ServiceChargePercent: 10}},
		{249.5, 2, charges.Percentages{}},
	}
	for _, tc := range cases {
		s := &Session{}
		s.AddOrUpdate(1, "x", tc.price, tc.qty)
		got := s.Totals(tc.pct)
		if got.Total != round2(got.Subtotal+got.Tax+got.ServiceCharge) {
			t.Fatalf("invariant broken for %+v: %+v", tc, got)
		}
	}
}

func TestTotalsZeroChargesDefault(t *testing.T) {
	s := &Session{}
	s.AddOrUpdate(1, "Tea", 30, 2)

	got := s.Totals(charges.Percentages{})
	if got.Tax != 0 || got.ServiceCharge != 0 {
		t.Fatalf("unset charges must mean zero: %+v", got)
	}
	if got.Total != got.Subtotal {
		t.Fatalf("total must equal subtotal with zero charges: %+v", got)
	}
}
