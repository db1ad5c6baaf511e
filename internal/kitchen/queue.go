// Package kitchen is the staff-facing view over the order ledger: the FIFO
// board, the outstanding per-item demand, and the status progression.
package kitchen

import (
	"context"
	"errors"
	"sort"
	"time"

	"cassa-pos-services/internal/db"
	"cassa-pos-services/internal/order"

	"github.com/jackc/pgx/v5"
)

type BoardItem struct {
	MenuItemID int64  `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
}

type BoardOrder struct {
	ID          int64       `json:"id"`
	TableNumber int32       `json:"tableNumber"`
	Status      string      `json:"status"`
	IsNotified  bool        `json:"isNotified"`
	CreatedAt   time.Time   `json:"createdAt"`
	Items       []BoardItem `json:"items"`
}

// Demand is the aggregate outstanding quantity of one menu item and the
// tables waiting for it. Delivered orders do not count.
type Demand struct {
	MenuItemID    int64   `json:"menuItemId"`
	Name          string  `json:"name"`
	TotalQuantity int32   `json:"totalQuantity"`
	Tables        []int32 `json:"tables"`
}

type Stats struct {
	Pending        int64 `json:"pending"`
	Preparing      int64 `json:"preparing"`
	CompletedToday int64 `json:"completedToday"`
}

type Board struct {
	Orders []BoardOrder `json:"orders"`
	Demand []Demand     `json:"demand"`
	Stats  Stats        `json:"stats"`
}

// ListActive builds the kitchen board: non-removed orders oldest first, the
// aggregated demand, and the day's counters.
func ListActive(ctx context.Context, dbx db.DBTX) (*Board, error) {
	rows, err := dbx.Query(ctx, `
		select o.id, o.table_number, o.status, o.is_notified, o.created_at,
			oi.menu_item_id, oi.name, oi.quantity
		from orders o
		join order_items oi on oi.order_id = o.id
		where not o.removed
		order by o.created_at, o.id, oi.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]BoardOrder, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			o  BoardOrder
			it BoardItem
		)
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.Status, &o.IsNotified, &o.CreatedAt,
			&it.MenuItemID, &it.Name, &it.Quantity); err != nil {
			return nil, err
		}
		i, ok := index[o.ID]
		if !ok {
			o.Items = []BoardItem{}
			orders = append(orders, o)
			i = len(orders) - 1
			index[o.ID] = i
		}
		orders[i].Items = append(orders[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats, err := loadStats(ctx, dbx)
	if err != nil {
		return nil, err
	}

	return &Board{
		Orders: orders,
		Demand: AggregateDemand(orders),
		Stats:  stats,
	}, nil
}

// AggregateDemand folds board orders into per-menu-item outstanding
// quantities. Pure; delivered orders are excluded, tables are deduplicated
// and sorted, output is ordered by item name.
func AggregateDemand(orders []BoardOrder) []Demand {
	type bucket struct {
		name   string
		qty    int32
		tables map[int32]struct{}
	}
	buckets := make(map[int64]*bucket)

	for _, o := range orders {
		if o.Status == order.StatusDelivered {
			continue
		}
		for _, it := range o.Items {
			b, ok := buckets[it.MenuItemID]
			if !ok {
				b = &bucket{name: it.Name, tables: make(map[int32]struct{})}
				buckets[it.MenuItemID] = b
			}
			b.qty += it.Quantity
			b.tables[o.TableNumber] = struct{}{}
		}
	}

	demand := make([]Demand, 0, len(buckets))
	for id, b := range buckets {
		tables := make([]int32, 0, len(b.tables))
		for table := range b.tables {
			tables = append(tables, table)
		}
		sort.Slice(tables, func(i, j int) bool { return tables[i] < tables[j] })
		demand = append(demand, Demand{
			MenuItemID:    id,
			Name:          b.name,
			TotalQuantity: b.qty,
			Tables:        tables,
		})
	}
	sort.Slice(demand, func(i, j int) bool { return demand[i].Name < demand[j].Name })
	return demand
}

// Advance moves an order one status forward. The update is a compare-and-set
// on the status read, so two staff racing on the same order advance it once,
// not twice: the loser's write matches zero rows and is a silent no-op.
// Advancing a delivered order is also a no-op.
func Advance(ctx context.Context, dbx db.DBTX, orderID int64) (string, bool, error) {
	var current string
	err := dbx.QueryRow(ctx, `select status from orders where id = $1`, orderID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, order.ErrNotFound
	}
	if err != nil {
		return "", false, err
	}

	next, ok := order.NextStatus(current)
	if !ok {
		return current, false, nil
	}

	tag, err := dbx.Exec(ctx, `
		update orders set status = $2, is_notified = false
		where id = $1 and status = $3
	`, orderID, next, current)
	if err != nil {
		return "", false, err
	}
	if tag.RowsAffected() == 0 {
		// lost the race: report what the winner left behind, not the stale read
		err := dbx.QueryRow(ctx, `select status from orders where id = $1`, orderID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, order.ErrNotFound
		}
		if err != nil {
			return "", false, err
		}
		return current, false, nil
	}
	return next, true, nil
}

// Remove hides an order from the board and the aggregates without deleting
// it; billing still reads removed orders.
func Remove(ctx context.Context, dbx db.DBTX, orderID int64) error {
	tag, err := dbx.Exec(ctx, `update orders set removed = true where id = $1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func loadStats(ctx context.Context, dbx db.DBTX) (Stats, error) {
	var s Stats
	err := dbx.QueryRow(ctx, `
		select
			count(*) filter (where status = $1 and not removed),
			count(*) filter (where status = $2 and not removed),
			count(*) filter (where status = $3 and created_at::date = current_date)
		from orders
	`, order.StatusAccepted, order.StatusReady, order.StatusDelivered).Scan(
		&s.Pending, &s.Preparing, &s.CompletedToday,
	)
	return s, err
}
