// Package menu is the catalog: admin-managed items, read-only price and
// availability lookups for the ordering flow.
package menu

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cassa-pos-services/internal/db"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("menu item not found")

const (
	CategoryBites = "Bites"
	CategoryBrews = "Brews"
)

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ValidCategory(category string) bool {
	return category == CategoryBites || category == CategoryBrews
}

func GetItem(ctx context.Context, dbx db.DBTX, id int64) (Item, error) {
	var item Item
	err := dbx.QueryRow(ctx, `
		select id, name, price, category, is_available, created_at
		from menu_items where id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.IsAvailable, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// GetPrice snapshots the current price for an item; commit uses this, not the
// price the cart saw when the line was added.
func GetPrice(ctx context.Context, dbx db.DBTX, id int64) (float64, error) {
	item, err := GetItem(ctx, dbx, id)
	if err != nil {
		return 0, err
	}
	return item.Price, nil
}

// List filters by category and case-insensitive name search; empty arguments
// mean no filter. onlyAvailable hides out-of-stock items from customers.
func List(ctx context.Context, dbx db.DBTX, category, search string, onlyAvailable bool) ([]Item, error) {
	query := `
		select id, name, price, category, is_available, created_at
		from menu_items where 1=1`
	args := []any{}
	if category != "" {
		args = append(args, category)
		query += ` and category = $1`
	}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		query += ` and lower(name) like $` + strconv.Itoa(len(args))
	}
	if onlyAvailable {
		query += ` and is_available`
	}
	query += ` order by category, name`

	rows, err := dbx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.IsAvailable, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func Create(ctx context.Context, dbx db.DBTX, name string, price float64, category string, available bool) (int64, error) {
	var id int64
	err := dbx.QueryRow(ctx, `
		insert into menu_items (name, price, category, is_available)
		values ($1, $2, $3, $4)
		returning id
	`, name, price, category, available).Scan(&id)
	return id, err
}

func Update(ctx context.Context, dbx db.DBTX, id int64, name string, price float64, category string, available bool) error {
	tag, err := dbx.Exec(ctx, `
		update menu_items set name = $2, price = $3, category = $4, is_available = $5
		where id = $1
	`, id, name, price, category, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(ctx context.Context, dbx db.DBTX, id int64) error {
	tag, err := dbx.Exec(ctx, `delete from menu_items where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleAvailability flips AVAILABLE / OUT_OF_STOCK and returns the new state.
func ToggleAvailability(ctx context.Context, dbx db.DBTX, id int64) (bool, error) {
	var available bool
	err := dbx.QueryRow(ctx, `
		update menu_items set is_available = not is_available
		where id = $1
		returning is_available
	`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return available, err
}
