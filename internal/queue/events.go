package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cassa-pos-services/internal/db"

	"go.uber.org/zap"
)

const (
	EventsExchange = "cassa.events"
	ActivityQueue  = "cassa.activity"

	RouteOrderPlaced   = "order.placed"
	RouteOrderStatus   = "order.status.updated"
	RouteBillPaid      = "bill.paid"
	ActivityBindingKey = "#"
)

// OrderEvent is the envelope published for every order lifecycle change and
// settled bill. Consumers key off Type; fields not relevant to a type are
// left zero.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId,omitempty"`
	PaymentID   int64     `json:"paymentId,omitempty"`
	TableNumber int32     `json:"tableNumber"`
	Status      string    `json:"status,omitempty"`
	Total       float64   `json:"total,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// SetupTopology declares the events exchange and the activity queue bound to
// every routing key. Idempotent.
func SetupTopology(c *Client) error {
	if err := c.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(ActivityQueue); err != nil {
		return err
	}
	return c.BindQueue(ActivityQueue, EventsExchange, ActivityBindingKey)
}

// Publish sends an event, stamping OccurredAt. Nil-safe: handlers call it
// unconditionally and a service running without a broker skips it. Publish
// failures are logged, never surfaced to the request.
func Publish(ctx context.Context, c *Client, log *zap.Logger, event OrderEvent) {
	if c == nil {
		return
	}
	event.OccurredAt = time.Now()
	if err := c.PublishJSON(ctx, EventsExchange, event.Type, event); err != nil {
		log.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}

// ProcessEventToActivity is the daemon consumer's handler: it lands each
// event in the order_events table, which backs the admin activity feed.
func ProcessEventToActivity(pool db.DBTX) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if event.Type == "" {
			return fmt.Errorf("event without type")
		}
		_, err := pool.Exec(ctx, `
			insert into order_events (event_type, payload)
			values ($1, $2)
		`, event.Type, body)
		return err
	}
}

// RecentActivity reads the newest stored events for the admin feed.
func RecentActivity(ctx context.Context, dbx db.DBTX, limit int32) ([]OrderEvent, error) {
	rows, err := dbx.Query(ctx, `
		select payload from order_events order by created_at desc limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OrderEvent, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var event OrderEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
