package kitchen

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cassa-pos-services/internal/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type statusRow struct {
	status string
}

func (r statusRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.status
	return nil
}

// advanceDB feeds Advance a scripted sequence of status reads and a fixed
// update outcome.
type advanceDB struct {
	statuses []string
	reads    int
	execTag  pgconn.CommandTag
	execs    int
}

func (db *advanceDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	db.execs++
	return db.execTag, nil
}

func (db *advanceDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (db *advanceDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	row := statusRow{status: db.statuses[db.reads]}
	db.reads++
	return row
}

func TestAggregateDemandSumsAcrossOrders(t *testing.T) {
	orders := []BoardOrder{
		{ID: 1, TableNumber: 3, Status: order.StatusAccepted, Items: []BoardItem{
			{MenuItemID: 10, Name: "Masala Fries", Quantity: 2},
			{MenuItemID: 11, Name: "Cold Coffee", Quantity: 1},
		}},
		{ID: 2, TableNumber: 5, Status: order.StatusReady, Items: []BoardItem{
			{MenuItemID: 10, Name: "Masala Fries", Quantity: 3},
		}},
	}

	demand := AggregateDemand(orders)
	if len(demand) != 2 {
		t.Fatalf("expected 2 demand rows, got %d", len(demand))
	}

	// sorted by name: Cold Coffee, Masala Fries
	if demand[0].Name != "Cold Coffee" || demand[0].TotalQuantity != 1 {
		t.Fatalf("unexpected first row: %+v", demand[0])
	}
	fries := demand[1]
	if fries.TotalQuantity != 5 {
		t.Fatalf("expected 5 fries outstanding, got %d", fries.TotalQuantity)
	}
	if !reflect.DeepEqual(fries.Tables, []int32{3, 5}) {
		t.Fatalf("expected tables [3 5], got %v", fries.Tables)
	}
}

func TestAggregateDemandExcludesDelivered(t *testing.T) {
	orders := []BoardOrder{
		{ID: 1, TableNumber: 2, Status: order.StatusDelivered, Items: []BoardItem{
			{MenuItemID: 10, Name: "Masala Fries", Quantity: 4},
		}},
	}
	if demand := AggregateDemand(orders); len(demand) != 0 {
		t.Fatalf("delivered orders must not produce demand, got %+v", demand)
	}
}

func TestAggregateDemandDeduplicatesTables(t *testing.T) {
	orders := []BoardOrder{
		{ID: 1, TableNumber: 4, Status: order.StatusAccepted, Items: []BoardItem{
			{MenuItemID: 7, Name: "Lemon Soda", Quantity: 1},
		}},
		{ID: 2, TableNumber: 4, Status: order.StatusAccepted, Items: []BoardItem{
			{MenuItemID: 7, Name: "Lemon Soda", Quantity: 2},
		}},
	}
	demand := AggregateDemand(orders)
	if len(demand) != 1 {
		t.Fatalf("expected 1 demand row, got %d", len(demand))
	}
	if !reflect.DeepEqual(demand[0].Tables, []int32{4}) {
		t.Fatalf("same table listed twice: %v", demand[0].Tables)
	}
	if demand[0].TotalQuantity != 3 {
		t.Fatalf("expected quantity 3, got %d", demand[0].TotalQuantity)
	}
}

func TestAggregateDemandEmpty(t *testing.T) {
	if demand := AggregateDemand(nil); len(demand) != 0 {
		t.Fatalf("expected no demand for no orders, got %+v", demand)
	}
}

func TestAdvanceMovesOneStep(t *testing.T) {
	db := &advanceDB{
		statuses: []string{order.StatusAccepted},
		execTag:  pgconn.NewCommandTag("UPDATE 1"),
	}
	status, changed, err := Advance(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if status != order.StatusReady || !changed {
		t.Fatalf("Advance = (%s, %v), expected (READY, true)", status, changed)
	}
}

func TestAdvanceLostRaceReportsCurrentStatus(t *testing.T) {
	// another staff client advanced the order between our read and our
	// compare-and-set: the update matches zero rows and the second read
	// sees the winner's status
	db := &advanceDB{
		statuses: []string{order.StatusAccepted, order.StatusReady},
		execTag:  pgconn.NewCommandTag("UPDATE 0"),
	}
	status, changed, err := Advance(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if changed {
		t.Fatal("lost race must not report a change")
	}
	if status != order.StatusReady {
		t.Fatalf("expected the re-read status READY, got %s", status)
	}
	if db.reads != 2 {
		t.Fatalf("expected a second status read, got %d reads", db.reads)
	}
}

func TestAdvanceDeliveredIsNoOp(t *testing.T) {
	db := &advanceDB{statuses: []string{order.StatusDelivered}}
	status, changed, err := Advance(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if status != order.StatusDelivered || changed {
		t.Fatalf("Advance = (%s, %v), expected (DELIVERED, false)", status, changed)
	}
	if db.execs != 0 {
		t.Fatalf("terminal order must not be written, got %d execs", db.execs)
	}
}
