package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cassa-pos-services/internal/billing"
	"cassa-pos-services/internal/order"
	"cassa-pos-services/internal/queue"
	"cassa-pos-services/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func (h *Handler) AdminOrdersList(w http.ResponseWriter, r *http.Request) {
	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 32); err == nil && parsed > 0 && parsed <= 200 {
			limit = int32(parsed)
		}
	}

	orders, err := order.ListRecent(r.Context(), h.DB, limit)
	if err != nil {
		h.Logger.Error("orders list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	response.Success(w, orders)
}

// AdminTableFree force-resets a table: its board orders are hidden and its
// cart sessions dropped, so the next customer starts from nothing. Payments
// are untouched.
func (h *Handler) AdminTableFree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, err := readPathInt64(r, "tableNumber")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid table number")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("table free begin failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to free table")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		update orders set removed = true
		where table_number = $1 and not removed
	`, tableNumber)
	if err != nil {
		h.Logger.Error("table free orders failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to free table")
		return
	}
	if _, err := tx.Exec(ctx, `delete from cart_sessions where table_number = $1`, tableNumber); err != nil {
		h.Logger.Error("table free carts failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to free table")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("table free commit failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to free table")
		return
	}

	response.Success(w, map[string]any{
		"tableNumber":   tableNumber,
		"ordersRemoved": tag.RowsAffected(),
	})
}

// AdminStats backs the dashboard header: today's volume and takings, the
// current load on the kitchen, and how customers are paying.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		ordersToday    int64
		acceptedCount  int64
		readyCount     int64
		deliveredToday int64
		revenueToday   float64
		cashPayments   int64
		onlinePayments int64
		pendingBills   int64
		customersToday int64
		averageOrder   *float64
		averageRating  *float64
	)

	err := h.DB.QueryRow(ctx, `
		select
			(select count(*) from orders where created_at::date = current_date),
			(select count(*) from orders where status = $1 and not removed),
			(select count(*) from orders where status = $2 and not removed),
			(select count(*) from orders where status = $3 and created_at::date = current_date),
			(select coalesce(sum(total), 0) from payments where is_paid and created_at::date = current_date),
			(select count(*) from payments where is_paid and payment_method = $4 and created_at::date = current_date),
			(select count(*) from payments where is_paid and payment_method = $5 and created_at::date = current_date),
			(select count(*) from payments where not is_paid),
			(select count(distinct session_id) from orders where created_at::date = current_date),
			(select avg(total)::float8 from payments where is_paid and created_at::date = current_date),
			(select avg(rating)::float8 from payments where rating is not null)
	`, order.StatusAccepted, order.StatusReady, order.StatusDelivered,
		billing.MethodCash, billing.MethodOnline).Scan(
		&ordersToday, &acceptedCount, &readyCount, &deliveredToday,
		&revenueToday, &cashPayments, &onlinePayments, &pendingBills,
		&customersToday, &averageOrder, &averageRating,
	)
	if err != nil {
		h.Logger.Error("stats read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}

	var mostOrdered *string
	err = h.DB.QueryRow(ctx, `
		select oi.name
		from order_items oi
		join orders o on o.id = oi.order_id
		where o.created_at::date = current_date
		group by oi.name
		order by sum(oi.quantity) desc
		limit 1
	`).Scan(&mostOrdered)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.Logger.Error("stats read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}

	response.Success(w, map[string]any{
		"ordersToday":       ordersToday,
		"statusCounts":      map[string]int64{order.StatusAccepted: acceptedCount, order.StatusReady: readyCount, order.StatusDelivered: deliveredToday},
		"revenueToday":      revenueToday,
		"cashPayments":      cashPayments,
		"onlinePayments":    onlinePayments,
		"pendingBills":      pendingBills,
		"customersToday":    customersToday,
		"averageOrderValue": averageOrder,
		"mostOrderedToday":  mostOrdered,
		"averageRating":     averageRating,
	})
}

// AdminEventsFeed reads the activity trail the queue worker lands in
// order_events.
func (h *Handler) AdminEventsFeed(w http.ResponseWriter, r *http.Request) {
	limit := int32(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 32); err == nil && parsed > 0 && parsed <= 500 {
			limit = int32(parsed)
		}
	}

	events, err := queue.RecentActivity(r.Context(), h.DB, limit)
	if err != nil {
		h.Logger.Error("events feed failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load events")
		return
	}
	response.Success(w, events)
}
