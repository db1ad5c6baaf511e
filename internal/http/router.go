package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"cassa-pos-services/internal/auth"
	"cassa-pos-services/internal/config"
	"cassa-pos-services/internal/http/handlers"
	"cassa-pos-services/internal/middleware"
	"cassa-pos-services/internal/queue"
	"cassa-pos-services/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, queueClient *queue.Client, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Visit-Token",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Queue: queueClient}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/auth/login", h.Login)

	r.Route("/api/table", func(r chi.Router) {
		r.Use(middleware.TableAuth(db, cfg.JWTSecret))

		r.Post("/session", h.TableSessionStart)
		r.Get("/menu", h.TableMenu)
		r.Get("/cart", h.TableCartGet)
		r.Post("/cart/items", h.TableCartAddItem)
		r.Delete("/cart/items/{lineId}", h.TableCartRemoveItem)
		r.Post("/orders", h.TableOrderPlace)
		r.Delete("/orders/latest", h.TableOrderCancel)
		r.Get("/orders/status", h.TableOrderStatus)
		r.Post("/orders/{orderId}/notified", h.TableOrderNotified)
		r.Get("/bill", h.TableBillGet)
		r.Put("/bill/method", h.TableBillMethod)
		r.Post("/bill/confirm", h.TableBillConfirm)
		r.Post("/bill/feedback", h.TableBillFeedback)
	})

	r.Route("/api/kitchen", func(r chi.Router) {
		r.Use(middleware.StaffAuth(db, cfg.JWTSecret, auth.RoleKitchen, auth.RoleAdmin))

		r.Get("/board", h.KitchenBoard)
		r.Post("/orders/{orderId}/advance", h.KitchenOrderAdvance)
		r.Delete("/orders/{orderId}", h.KitchenOrderRemove)
		r.Put("/menu/{id}/availability", h.KitchenMenuToggleAvailability)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.StaffAuth(db, cfg.JWTSecret, auth.RoleAdmin))

		r.Get("/menu", h.AdminMenuList)
		r.Post("/menu", h.AdminMenuCreate)
		r.Put("/menu/{id}", h.AdminMenuUpdate)
		r.Delete("/menu/{id}", h.AdminMenuDelete)
		r.Put("/menu/{id}/availability", h.AdminMenuToggleAvailability)

		r.Get("/charges", h.AdminChargesGet)
		r.Put("/charges", h.AdminChargesPut)

		r.Get("/staff", h.AdminStaffList)
		r.Post("/staff", h.AdminStaffCreate)
		r.Put("/staff/{id}", h.AdminStaffUpdate)
		r.Post("/staff/{id}/toggle", h.AdminStaffToggle)

		r.Get("/orders", h.AdminOrdersList)
		r.Post("/tables/{tableNumber}/free", h.AdminTableFree)

		r.Get("/payments/unnotified", h.AdminPaymentsUnnotified)
		r.Post("/payments/{paymentId}/ack", h.AdminPaymentAck)
		r.Get("/payments/{paymentId}/bill", h.AdminPaymentBill)
		r.Get("/payments/{paymentId}/receipt", h.AdminPaymentReceiptPDF)

		r.Get("/feedback", h.AdminFeedbackList)
		r.Delete("/feedback/{paymentId}", h.AdminFeedbackDelete)

		r.Get("/stats", h.AdminStats)
		r.Get("/events", h.AdminEventsFeed)

		r.Get("/tables", h.AdminTablesList)
		r.Post("/tables", h.AdminTableCreate)
		r.Delete("/tables/{id}", h.AdminTableDelete)
		r.Put("/tables/{id}/password", h.AdminTableResetPassword)
	})

	if wsServer != nil {
		r.Get("/ws/kitchen/board", wsServer.KitchenBoardWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
