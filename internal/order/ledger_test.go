package order

import (
	"context"
	"errors"
	"testing"

	"cassa-pos-services/internal/cart"
)

func TestNextStatusIsForwardOnly(t *testing.T) {
	cases := []struct {
		from     string
		to       string
		advances bool
	}{
		{StatusAccepted, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusDelivered, StatusDelivered, false},
		{"UNKNOWN", "UNKNOWN", false},
	}
	for _, tc := range cases {
		got, ok := NextStatus(tc.from)
		if got != tc.to || ok != tc.advances {
			t.Fatalf("NextStatus(%s) = (%s, %v), expected (%s, %v)", tc.from, got, ok, tc.to, tc.advances)
		}
	}
}

func TestCommitRequiresPendingLines(t *testing.T) {
	cases := []struct {
		name  string
		lines []cart.Line
	}{
		{"empty cart", nil},
		{"fully ordered cart", []cart.Line{
			{ID: "a", MenuItemID: 1, Name: "Masala Fries", UnitPrice: 120, Quantity: 2, Ordered: true},
			{ID: "b", MenuItemID: 2, Name: "Cold Coffee", UnitPrice: 80, Quantity: 1, Ordered: true},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &cart.Session{VisitToken: "visit", TableNumber: 4, Lines: tc.lines}
			// nil pool and store: the sentinel must fire before any ledger access
			_, err := Commit(context.Background(), nil, nil, session)
			if !errors.Is(err, ErrNoPendingItems) {
				t.Fatalf("expected ErrNoPendingItems, got %v", err)
			}
		})
	}
}

func TestNextStatusNeverDecreases(t *testing.T) {
	rank := map[string]int{StatusAccepted: 0, StatusReady: 1, StatusDelivered: 2}
	for from, fromRank := range rank {
		next, _ := NextStatus(from)
		if rank[next] < fromRank {
			t.Fatalf("status decreased: %s -> %s", from, next)
		}
	}
}
