package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cassa-pos-services/internal/charges"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type paymentRow struct {
	p   Payment
	err error
}

func (r paymentRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.p.ID
	*dest[1].(*int32) = r.p.TableNumber
	*dest[2].(*string) = r.p.SessionID
	*dest[3].(*float64) = r.p.Subtotal
	*dest[4].(*float64) = r.p.Tax
	*dest[5].(*float64) = r.p.ServiceCharge
	*dest[6].(*float64) = r.p.Total
	*dest[7].(*string) = r.p.BillNumber
	*dest[8].(*string) = r.p.BillDate
	*dest[9].(*string) = r.p.BillTime
	*dest[10].(**string) = r.p.PaymentMethod
	*dest[11].(*bool) = r.p.IsPaid
	*dest[12].(*bool) = r.p.Notified
	*dest[13].(**int32) = r.p.Rating
	*dest[14].(**string) = r.p.Feedback
	*dest[15].(*time.Time) = r.p.CreatedAt
	return nil
}

type paymentDB struct {
	row paymentRow
}

func (d paymentDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (d paymentDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (d paymentDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.row
}

func TestBillNumberFormat(t *testing.T) {
	at := time.Date(2025, 3, 14, 12, 30, 45, 123_456_789, time.UTC)

	got := BillNumber(7, at)
	if got != "#ORD-07123" {
		t.Fatalf("expected #ORD-07123, got %s", got)
	}

	got = BillNumber(12, at)
	if !strings.HasPrefix(got, "#ORD-12") {
		t.Fatalf("two-digit tables keep their digits: %s", got)
	}
}

func TestComputeChargesExample(t *testing.T) {
	tax, service, total := ComputeCharges(100, charges.Percentages{TaxPercent: 5, ServiceChargePercent: 10})
	if tax != 5 {
		t.Fatalf("expected tax 5.00, got %v", tax)
	}
	if service != 10 {
		t.Fatalf("expected service 10.00, got %v", service)
	}
	if total != 115 {
		t.Fatalf("expected total 115.00, got %v", total)
	}
}

func TestComputeChargesZeroWhenUnset(t *testing.T) {
	tax, service, total := ComputeCharges(248.37, charges.Percentages{})
	if tax != 0 || service != 0 {
		t.Fatalf("unset charges must be zero: tax=%v service=%v", tax, service)
	}
	if total != 248.37 {
		t.Fatalf("total must equal subtotal, got %v", total)
	}
}

func TestComputeChargesRoundingInvariant(t *testing.T) {
	cases := []struct {
		subtotal float64
		pct      charges.Percentages
	}{
		{99.99, charges.Percentages{TaxPercent: 7.25, ServiceChargePercent: 12.75}},
		{0.01, charges.Percentages{TaxPercent: 5, ServiceChargePercent: 10}},
		{1234.56, charges.Percentages{TaxPercent: 18, ServiceChargePercent: 2.5}},
	}
	for _, tc := range cases {
		tax, service, total := ComputeCharges(tc.subtotal, tc.pct)
		if total != round2(round2(tc.subtotal)+tax+service) {
			t.Fatalf("invariant broken for %+v: tax=%v service=%v total=%v", tc, tax, service, total)
		}
	}
}

func TestConfirmPaymentReturnsSettledPayment(t *testing.T) {
	method := MethodCash
	settled := Payment{
		ID: 9, TableNumber: 3, SessionID: "visit", Subtotal: 100, Tax: 5,
		ServiceCharge: 10, Total: 115, BillNumber: "#ORD-03042",
		PaymentMethod: &method, IsPaid: true, CreatedAt: time.Now(),
	}
	p, err := ConfirmPayment(context.Background(), paymentDB{row: paymentRow{p: settled}}, 3, "visit", MethodCash)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if p == nil {
		t.Fatal("expected the settled payment back")
	}
	if p.ID != 9 || p.Total != 115 || !p.IsPaid {
		t.Fatalf("settled payment came back wrong: %+v", p)
	}
}

func TestConfirmPaymentNoBillIsNoOp(t *testing.T) {
	p, err := ConfirmPayment(context.Background(), paymentDB{row: paymentRow{err: pgx.ErrNoRows}}, 3, "visit", MethodOnline)
	if err != nil {
		t.Fatalf("confirming with no bill must not error, got %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil payment, got %+v", p)
	}
}

func TestValidMethod(t *testing.T) {
	if !ValidMethod(MethodCash) || !ValidMethod(MethodOnline) {
		t.Fatal("cash and online must be valid methods")
	}
	for _, bad := range []string{"", "cash", "CARD", "UPI"} {
		if ValidMethod(bad) {
			t.Fatalf("%q must not be a valid method", bad)
		}
	}
}
