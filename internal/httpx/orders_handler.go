package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
	"log"
	"net/http"
	"strings"
	"time"
)

const maxIdempotencyKey = 128

var (
	// idemWait bounds how long a replay waits for the in-flight request holding its key.
	idemWait     = 5 * time.Second
	idemPollStep = 50 * time.Millisecond

	ErrIdempotencyInFlight = apperr.Conflict("A request with this Idempotency-Key is still in progress")
)

type ordersHandler struct {
	guard   *Guard
	orders  OrderStore
	cache   Cache
	events  Publisher
	service string
}

func (h *ordersHandler) register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Post("/", h.place)
		r.Get("/my-orders", h.mine)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireRole(users.RoleAdmin))
			r.Get("/", h.list)
			r.Put("/{id}/status", h.updateStatus)
		})
	})
}

type placeOrderResp struct {
	Message     string `json:"message"`
	OrderID     int64  `json:"order_id"`
	TotalAmount string `json:"total_amount"`
	Idempotent  bool   `json:"idempotent,omitempty"`
}

type updateStatusReq struct {
	Status string `json:"order_status"`
}

func (h *ordersHandler) place(w http.ResponseWriter, r *http.Request) {
	var in orders.PlaceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	idem := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(idem) > maxIdempotencyKey {
		writeError(w, r, apperr.Invalid("Idempotency-Key is too long"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := principal(r).UserID

	// a replayed key returns the order it already produced
	idemKey, lockKey := "", ""
	if idem != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderCreate, userID, idem)
		if prev, ok := h.replay(ctx, idemKey); ok {
			writeJSON(w, http.StatusOK, prev)
			return
		}

		lockKey = fmt.Sprintf(redisx.KeyIdemOrderLock, userID, idem)
		claimed, err := h.cache.Claim(ctx, lockKey, redisx.TTLIdempotencyLock)
		switch {
		case err != nil:
			log.Printf("idempotency claim %s: %v", lockKey, err)
			lockKey = ""
		case !claimed:
			if prev, ok := h.awaitReplay(ctx, idemKey); ok {
				writeJSON(w, http.StatusOK, prev)
				return
			}
			writeError(w, r, ErrIdempotencyInFlight)
			return
		}
	}

	placed, err := h.orders.PlaceOrder(ctx, userID, in)
	if err != nil {
		h.releaseIdem(ctx, lockKey)
		writeError(w, r, err)
		return
	}

	resp := placeOrderResp{
		Message:     "Order placed successfully",
		OrderID:     placed.OrderID,
		TotalAmount: placed.Total.StringFixed(2),
	}
	if idemKey != "" {
		if err := h.cache.SetJSON(ctx, idemKey, resp, redisx.TTLIdempotency); err != nil {
			log.Printf("idempotency set %s: %v", idemKey, err)
		}
		h.releaseIdem(ctx, lockKey)
	}

	h.publish(r, orders.EventOrderPlaced, placed.OrderID, kafkax.MustMarshal(placed.Payload()))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ordersHandler) replay(ctx context.Context, idemKey string) (placeOrderResp, bool) {
	var prev placeOrderResp
	ok, err := h.cache.GetJSON(ctx, idemKey, &prev)
	if err != nil {
		log.Printf("idempotency get %s: %v", idemKey, err)
		return placeOrderResp{}, false
	}
	prev.Idempotent = true
	return prev, ok
}

// awaitReplay polls for the result of the request holding the key.
func (h *ordersHandler) awaitReplay(ctx context.Context, idemKey string) (placeOrderResp, bool) {
	ctx, cancel := context.WithTimeout(ctx, idemWait)
	defer cancel()
	t := time.NewTicker(idemPollStep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return placeOrderResp{}, false
		case <-t.C:
			if prev, ok := h.replay(ctx, idemKey); ok {
				return prev, true
			}
		}
	}
}

func (h *ordersHandler) releaseIdem(ctx context.Context, lockKey string) {
	if lockKey == "" {
		return
	}
	if err := h.cache.Del(context.WithoutCancel(ctx), lockKey); err != nil {
		log.Printf("idempotency release %s: %v", lockKey, err)
	}
}

func (h *ordersHandler) mine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.orders.ListByUser(ctx, principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ordersHandler) list(w http.ResponseWriter, r *http.Request) {
	var status orders.Status
	if v := r.URL.Query().Get("status"); v != "" {
		st, ok := orders.ParseStatus(v)
		if !ok {
			writeError(w, r, orders.ErrInvalidStatus)
			return
		}
		status = st
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.orders.ListAll(ctx, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ordersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := principal(r)
	o, err := h.orders.Get(ctx, id, p.UserID, p.IsAdmin())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *ordersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to, ok := orders.ParseStatus(req.Status)
	if !ok {
		writeError(w, r, orders.ErrInvalidStatus)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ch, err := h.orders.UpdateStatus(ctx, id, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ch.Changed {
		h.publish(r, orders.EventOrderStatusChanged, id, kafkax.MustMarshal(ch.Payload()))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Order status updated successfully",
		"order_id":     id,
		"order_status": ch.To,
	})
}

func (h *ordersHandler) publish(r *http.Request, eventType string, orderID int64, payload []byte) {
	env := orders.NewEnvelope(eventType, h.service, middleware.GetReqID(r.Context()), orderID, payload)
	h.events.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
