package httpx

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type cartHandler struct {
	guard *Guard
	cart  CartStore
}

func (h *cartHandler) register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Get("/", h.list)
		r.Post("/", h.add)
		r.Delete("/", h.clear)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type addToCartReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartReq struct {
	Quantity int `json:"quantity"`
}

func (h *cartHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.cart.List(ctx, principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID <= 0 || req.Quantity == 0 {
		writeError(w, r, apperr.Invalid("Product ID and quantity are required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, created, err := h.cart.Add(ctx, principal(r).UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Item added to cart successfully", "cart_id": id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Cart updated successfully", "cart_id": id})
}

func (h *cartHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateCartReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.cart.Update(ctx, principal(r).UserID, id, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart updated successfully")
}

func (h *cartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.Remove(ctx, principal(r).UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart successfully")
}

func (h *cartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.cart.Clear(ctx, principal(r).UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared successfully")
}
