package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type itemRow struct {
	item Item
	err  error
}

func (r itemRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.item.ID
	*dest[1].(*string) = r.item.Name
	*dest[2].(*float64) = r.item.Price
	*dest[3].(*string) = r.item.Category
	*dest[4].(*bool) = r.item.IsAvailable
	*dest[5].(*time.Time) = r.item.CreatedAt
	return nil
}

type catalogDB struct {
	row itemRow
}

func (c catalogDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (c catalogDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (c catalogDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.row
}

func TestGetPriceReadsCatalogPrice(t *testing.T) {
	dbx := catalogDB{row: itemRow{item: Item{
		ID: 7, Name: "Cold Coffee", Price: 80, Category: CategoryBrews, IsAvailable: true,
	}}}
	price, err := GetPrice(context.Background(), dbx, 7)
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if price != 80 {
		t.Fatalf("price = %v, expected 80", price)
	}
}

func TestGetPriceUnknownItem(t *testing.T) {
	dbx := catalogDB{row: itemRow{err: pgx.ErrNoRows}}
	if _, err := GetPrice(context.Background(), dbx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidCategory(t *testing.T) {
	cases := []struct {
		category string
		valid    bool
	}{
		{CategoryBites, true},
		{CategoryBrews, true},
		{"Desserts", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidCategory(tc.category); got != tc.valid {
			t.Fatalf("ValidCategory(%q) = %v, expected %v", tc.category, got, tc.valid)
		}
	}
}
