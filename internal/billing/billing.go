// Package billing aggregates a visit's orders into the single outstanding
// bill, and owns the payment record lifecycle: prepare (idempotent upsert),
// confirm, feedback.
package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cassa-pos-services/internal/charges"
	"cassa-pos-services/internal/db"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNoOrders        = errors.New("no orders for this visit")
	ErrPaymentNotFound = errors.New("payment not found")
)

const (
	MethodCash   = "CASH"
	MethodOnline = "ONLINE"
)

type BillLine struct {
	MenuItemID int64   `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int32   `json:"quantity"`
	Amount     float64 `json:"amount"`
}

type Bill struct {
	PaymentID     int64      `json:"paymentId"`
	TableNumber   int32      `json:"tableNumber"`
	BillNumber    string     `json:"billNumber"`
	BillDate      string     `json:"billDate"`
	BillTime      string     `json:"billTime"`
	Lines         []BillLine `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	ServiceCharge float64    `json:"serviceCharge"`
	Total         float64    `json:"total"`
	IsPaid        bool       `json:"isPaid"`
}

type Payment struct {
	ID            int64     `json:"id"`
	TableNumber   int32     `json:"tableNumber"`
	SessionID     string    `json:"sessionId"`
	Subtotal      float64   `json:"subtotal"`
	Tax           float64   `json:"tax"`
	ServiceCharge float64   `json:"serviceCharge"`
	Total         float64   `json:"total"`
	BillNumber    string    `json:"billNumber"`
	BillDate      string    `json:"billDate"`
	BillTime      string    `json:"billTime"`
	PaymentMethod *string   `json:"paymentMethod"`
	IsPaid        bool      `json:"isPaid"`
	Notified      bool      `json:"notified"`
	Rating        *int32    `json:"rating"`
	Feedback      *string   `json:"feedback"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ValidMethod(method string) bool {
	return method == MethodCash || method == MethodOnline
}

// BillNumber derives the display number from the table and the millisecond
// component of the clock. Two bills for the same table in the same
// millisecond collide; accepted, the payment row is keyed by visit, not by
// this string.
func BillNumber(tableNumber int32, at time.Time) string {
	return fmt.Sprintf("#ORD-%02d%03d", tableNumber, at.Nanosecond()/int(time.Millisecond))
}

// ComputeCharges applies the percentages to a subtotal, rounding every value
// to 2 decimals so that total == round(subtotal + tax + service, 2).
func ComputeCharges(subtotal float64, p charges.Percentages) (tax, serviceCharge, total float64) {
	subtotal = round2(subtotal)
	tax = round2(subtotal * (p.TaxPercent / 100))
	serviceCharge = round2(subtotal * (p.ServiceChargePercent / 100))
	total = round2(subtotal + tax + serviceCharge)
	return tax, serviceCharge, total
}

// PrepareBill aggregates every order item of the visit, whatever the order's
// status or removed flag, into per-menu-item groups and upserts the visit's
// one open payment row. Calling it again recomputes the same row in place;
// the partial unique index on (table, session) where not paid makes a second
// concurrent insert impossible.
func PrepareBill(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string) (*Bill, error) {
	lines, err := aggregateVisitItems(ctx, dbx, tableNumber, visitToken)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoOrders
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.Amount
	}
	subtotal = round2(subtotal)

	pct, err := charges.Current(ctx, dbx)
	if err != nil {
		return nil, err
	}
	tax, serviceCharge, total := ComputeCharges(subtotal, pct)

	now := time.Now()
	bill := &Bill{
		TableNumber:   tableNumber,
		BillNumber:    BillNumber(tableNumber, now),
		BillDate:      now.Format("02/01/2006"),
		BillTime:      now.Format("15:04:05"),
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: serviceCharge,
		Total:         total,
	}

	err = dbx.QueryRow(ctx, `
		insert into payments (table_number, session_id, subtotal, tax, service_charge, total, bill_number, bill_date, bill_time)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict (table_number, session_id) where not is_paid
		do update set subtotal = $3, tax = $4, service_charge = $5, total = $6,
			bill_number = $7, bill_date = $8, bill_time = $9
		returning id
	`, tableNumber, visitToken, subtotal, tax, serviceCharge, total,
		bill.BillNumber, bill.BillDate, bill.BillTime).Scan(&bill.PaymentID)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// SetMethod records the chosen payment method on the visit's latest payment
// without settling it; the online flow picks the method before confirming.
func SetMethod(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string, method string) (bool, error) {
	tag, err := dbx.Exec(ctx, `
		update payments set payment_method = $3
		where id = (
			select id from payments
			where table_number = $1 and session_id = $2
			order by created_at desc limit 1
		)
	`, tableNumber, visitToken, method)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ConfirmPayment settles the visit's latest payment and returns it, settled.
// Confirming a visit with no payment row yet is a no-op, not an error:
// requests can arrive out of order. Returns nil when nothing was settled.
func ConfirmPayment(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string, method string) (*Payment, error) {
	row := dbx.QueryRow(ctx, `
		update payments set payment_method = $3, is_paid = true
		where id = (
			select id from payments
			where table_number = $1 and session_id = $2
			order by created_at desc limit 1
		)
		returning id, table_number, session_id, subtotal, tax, service_charge, total,
			bill_number, bill_date, bill_time, payment_method, is_paid, notified,
			rating, feedback, created_at
	`, tableNumber, visitToken, method)
	p, err := scanPayment(row)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil
	}
	return p, err
}

// RecordFeedback attaches a rating and free-text feedback to the visit's
// latest payment. Unlike confirmation, feedback on a visit with no payment is
// an error: a completed transaction must exist.
func RecordFeedback(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string, rating *int32, feedback string) error {
	tag, err := dbx.Exec(ctx, `
		update payments set rating = $3, feedback = nullif($4, '')
		where id = (
			select id from payments
			where table_number = $1 and session_id = $2
			order by created_at desc limit 1
		)
	`, tableNumber, visitToken, rating, feedback)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func GetPayment(ctx context.Context, dbx db.DBTX, paymentID int64) (*Payment, error) {
	row := dbx.QueryRow(ctx, paymentSelect+` where id = $1`, paymentID)
	return scanPayment(row)
}

// BillForPayment rebuilds the grouped bill snapshot for an already persisted
// payment, for the admin receipt view.
func BillForPayment(ctx context.Context, dbx db.DBTX, paymentID int64) (*Bill, error) {
	p, err := GetPayment(ctx, dbx, paymentID)
	if err != nil {
		return nil, err
	}
	lines, err := aggregateVisitItems(ctx, dbx, p.TableNumber, p.SessionID)
	if err != nil {
		return nil, err
	}
	return &Bill{
		PaymentID:     p.ID,
		TableNumber:   p.TableNumber,
		BillNumber:    p.BillNumber,
		BillDate:      p.BillDate,
		BillTime:      p.BillTime,
		Lines:         lines,
		Subtotal:      p.Subtotal,
		Tax:           p.Tax,
		ServiceCharge: p.ServiceCharge,
		Total:         p.Total,
		IsPaid:        p.IsPaid,
	}, nil
}

// UnnotifiedPaid lists settled payments the counter has not acknowledged yet.
func UnnotifiedPaid(ctx context.Context, dbx db.DBTX) ([]Payment, error) {
	rows, err := dbx.Query(ctx, paymentSelect+` where is_paid and not notified order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func MarkNotified(ctx context.Context, dbx db.DBTX, paymentID int64) error {
	tag, err := dbx.Exec(ctx, `update payments set notified = true where id = $1`, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ListFeedback returns payments carrying feedback, newest first.
func ListFeedback(ctx context.Context, dbx db.DBTX) ([]Payment, error) {
	rows, err := dbx.Query(ctx, paymentSelect+` where feedback is not null order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// DeleteFeedback nulls out the rating and feedback, keeping the payment.
func DeleteFeedback(ctx context.Context, dbx db.DBTX, paymentID int64) error {
	tag, err := dbx.Exec(ctx, `update payments set rating = null, feedback = null where id = $1`, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func aggregateVisitItems(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string) ([]BillLine, error) {
	rows, err := dbx.Query(ctx, `
		select oi.menu_item_id, oi.name, oi.price, sum(oi.quantity)::int, sum(oi.total)
		from order_items oi
		join orders o on o.id = oi.order_id
		where o.table_number = $1 and o.session_id = $2
		group by oi.menu_item_id, oi.name, oi.price
		order by oi.name
	`, tableNumber, visitToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]BillLine, 0)
	for rows.Next() {
		var line BillLine
		if err := rows.Scan(&line.MenuItemID, &line.Name, &line.Price, &line.Quantity, &line.Amount); err != nil {
			return nil, err
		}
		line.Amount = round2(line.Amount)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const paymentSelect = `
	select id, table_number, session_id, subtotal, tax, service_charge, total,
		bill_number, bill_date, bill_time, payment_method, is_paid, notified,
		rating, feedback, created_at
	from payments`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.TableNumber, &p.SessionID, &p.Subtotal, &p.Tax, &p.ServiceCharge, &p.Total,
		&p.BillNumber, &p.BillDate, &p.BillTime, &p.PaymentMethod, &p.IsPaid, &p.Notified,
		&p.Rating, &p.Feedback, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.TableNumber, &p.SessionID, &p.Subtotal, &p.Tax, &p.ServiceCharge, &p.Total,
			&p.BillNumber, &p.BillDate, &p.BillTime, &p.PaymentMethod, &p.IsPaid, &p.Notified,
			&p.Rating, &p.Feedback, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
