// Package cart implements the per-visit session cart. A Session is a value
// object: handlers load it from the store, mutate it in memory, and save it
// back. Lines already sent to the kitchen stay in the cart as frozen history
// until their order is delivered or cancelled.
package cart

import (
	"math"

	"cassa-pos-services/internal/charges"

	"github.com/google/uuid"
)

type Line struct {
	ID           string  `json:"id"`
	MenuItemID   int64   `json:"menuItemId"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int32   `json:"quantity"`
	LineTotal    float64 `json:"lineTotal"`
	Ordered      bool    `json:"ordered"`
	OrderGroupID *int64  `json:"orderGroupId,omitempty"`
}

type Session struct {
	VisitToken  string `json:"visitToken"`
	TableNumber int32  `json:"tableNumber"`
	Lines       []Line `json:"lines"`
}

type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	Tax           float64 `json:"tax"`
	ServiceCharge float64 `json:"serviceCharge"`
	Total         float64 `json:"total"`
}

// AddOrUpdate merges into an existing unordered line for the same menu item,
// recomputing its total, or appends a new line. Lines already ordered are
// frozen, so re-adding an item after ordering always creates a new line.
// Reports whether a new line was created.
func (s *Session) AddOrUpdate(menuItemID int64, name string, unitPrice float64, quantity int32) bool {
	for i := range s.Lines {
		line := &s.Lines[i]
		if line.MenuItemID == menuItemID && !line.Ordered {
			line.Quantity += quantity
			line.LineTotal = round2(unitPrice * float64(line.Quantity))
			line.UnitPrice = unitPrice
			return false
		}
	}

	s.Lines = append(s.Lines, Line{
		ID:         uuid.NewString(),
		MenuItemID: menuItemID,
		Name:       name,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		LineTotal:  round2(unitPrice * float64(quantity)),
	})
	return true
}

// Remove drops the line with the given id. Removing an unknown id is a no-op.
func (s *Session) Remove(lineID string) bool {
	for i := range s.Lines {
		if s.Lines[i].ID == lineID {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns pointers into the session's unordered lines, in cart order.
func (s *Session) Pending() []*Line {
	var pending []*Line
	for i := range s.Lines {
		if !s.Lines[i].Ordered {
			pending = append(pending, &s.Lines[i])
		}
	}
	return pending
}

// StripGroup removes every line committed under the given order id; used when
// that order is cancelled.
func (s *Session) StripGroup(orderID int64) {
	kept := s.Lines[:0]
	for _, line := range s.Lines {
		if line.OrderGroupID != nil && *line.OrderGroupID == orderID {
			continue
		}
		kept = append(kept, line)
	}
	s.Lines = kept
}

// Totals computes the running bill for the whole cart, ordered lines
// included. Pure: it reads nothing but the session and the given percentages.
func (s *Session) Totals(p charges.Percentages) Totals {
	var subtotal float64
	for _, line := range s.Lines {
		subtotal += line.LineTotal
	}
	subtotal = round2(subtotal)

	tax := round2(subtotal * (p.TaxPercent / 100))
	serviceCharge := round2(subtotal * (p.ServiceChargePercent / 100))
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: serviceCharge,
		Total:         round2(subtotal + tax + serviceCharge),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
