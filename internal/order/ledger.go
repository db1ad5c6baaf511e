// Package order is the persisted ledger: committing a cart into an order,
// cancelling an order that the kitchen has not started, and the status
// machine the kitchen drives.
package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cassa-pos-services/internal/cart"
	"cassa-pos-services/internal/db"
	"cassa-pos-services/internal/menu"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusAccepted  = "ACCEPTED"
	StatusReady     = "READY"
	StatusDelivered = "DELIVERED"
)

var (
	ErrNoPendingItems = errors.New("no pending cart items to order")
	ErrNotFound       = errors.New("order not found")
)

// NextStatus returns the single forward step from a status. Delivered is
// terminal; unknown statuses never advance.
func NextStatus(status string) (string, bool) {
	switch status {
	case StatusAccepted:
		return StatusReady, true
	case StatusReady:
		return StatusDelivered, true
	default:
		return status, false
	}
}

type Order struct {
	ID          int64     `json:"id"`
	TableNumber int32     `json:"tableNumber"`
	SessionID   string    `json:"sessionId"`
	Status      string    `json:"status"`
	Removed     bool      `json:"removed"`
	IsNotified  bool      `json:"isNotified"`
	CreatedAt   time.Time `json:"createdAt"`
	Items       []Item    `json:"items,omitempty"`
}

type Item struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"orderId"`
	MenuItemID int64   `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int32   `json:"quantity"`
	Total      float64 `json:"total"`
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Commit turns every pending cart line into one new ACCEPTED order, in a
// single transaction: the order row, one order_items row per line with the
// menu price snapshotted at this moment, the cart lines marked ordered and
// stamped with the order id, and the cart saved. Either all of it lands or
// none of it does.
func Commit(ctx context.Context, pool *pgxpool.Pool, store *cart.Store, session *cart.Session) (int64, error) {
	pending := session.Pending()
	if len(pending) == 0 {
		return 0, ErrNoPendingItems
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int64
	if err := tx.QueryRow(ctx, `
		insert into orders (table_number, session_id, status)
		values ($1, $2, $3)
		returning id
	`, session.TableNumber, session.VisitToken, StatusAccepted).Scan(&orderID); err != nil {
		return 0, err
	}

	for _, line := range pending {
		price, err := menu.GetPrice(ctx, tx, line.MenuItemID)
		if err != nil {
			return 0, fmt.Errorf("menu item %d: %w", line.MenuItemID, err)
		}
		total := round2(price * float64(line.Quantity))
		if _, err := tx.Exec(ctx, `
			insert into order_items (order_id, menu_item_id, name, price, quantity, total)
			values ($1, $2, $3, $4, $5, $6)
		`, orderID, line.MenuItemID, line.Name, price, line.Quantity, total); err != nil {
			return 0, err
		}

		line.Ordered = true
		groupID := orderID
		line.OrderGroupID = &groupID
	}

	if err := store.Save(ctx, tx, session); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

// Cancel deletes the visit's most recent order while it is still ACCEPTED,
// together with its items and the cart lines stamped with its id. Once the
// kitchen has moved the order to READY there is nothing to cancel and the
// call is a silent no-op. Reports whether an order was cancelled.
func Cancel(ctx context.Context, pool *pgxpool.Pool, store *cart.Store, session *cart.Session) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		orderID int64
		status  string
	)
	err = tx.QueryRow(ctx, `
		select id, status from orders
		where table_number = $1 and session_id = $2 and not removed
		  and status not in ($3, $4)
		order by created_at desc
		limit 1
		for update
	`, session.TableNumber, session.VisitToken, StatusReady, StatusDelivered).Scan(&orderID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if status != StatusAccepted {
		return false, nil
	}

	// order_items cascade with the order row
	if _, err := tx.Exec(ctx, `delete from orders where id = $1`, orderID); err != nil {
		return false, err
	}

	session.StripGroup(orderID)
	if err := store.Save(ctx, tx, session); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// LatestActive returns the visit's newest order that is neither removed nor
// delivered, or nil when the table has nothing in flight.
func LatestActive(ctx context.Context, dbx db.DBTX, tableNumber int32, visitToken string) (*Order, error) {
	var o Order
	err := dbx.QueryRow(ctx, `
		select id, table_number, session_id, status, removed, is_notified, created_at
		from orders
		where table_number = $1 and session_id = $2 and not removed and status <> $3
		order by created_at desc
		limit 1
	`, tableNumber, visitToken, StatusDelivered).Scan(
		&o.ID, &o.TableNumber, &o.SessionID, &o.Status, &o.Removed, &o.IsNotified, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func Get(ctx context.Context, dbx db.DBTX, orderID int64) (*Order, error) {
	var o Order
	err := dbx.QueryRow(ctx, `
		select id, table_number, session_id, status, removed, is_notified, created_at
		from orders where id = $1
	`, orderID).Scan(&o.ID, &o.TableNumber, &o.SessionID, &o.Status, &o.Removed, &o.IsNotified, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkNotified records that the customer's UI has shown the current status.
func MarkNotified(ctx context.Context, dbx db.DBTX, orderID int64) error {
	tag, err := dbx.Exec(ctx, `update orders set is_notified = true where id = $1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the newest non-removed orders with their items, for the
// admin dashboard.
func ListRecent(ctx context.Context, dbx db.DBTX, limit int32) ([]Order, error) {
	rows, err := dbx.Query(ctx, `
		select id, table_number, session_id, status, removed, is_notified, created_at
		from orders
		where not removed
		order by created_at desc
		limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.SessionID, &o.Status, &o.Removed, &o.IsNotified, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = []Item{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := dbx.Query(ctx, `
		select id, order_id, menu_item_id, name, price, quantity, total
		from order_items
		where order_id = any($1)
		order by id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	byOrder := make(map[int64]int, len(orders))
	for i, o := range orders {
		byOrder[o.ID] = i
	}
	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.Total); err != nil {
			return nil, err
		}
		if i, ok := byOrder[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}
