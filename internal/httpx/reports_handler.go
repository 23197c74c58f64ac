package httpx

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/reports"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/go-chi/chi/v5"
	"log"
	"net/http"
	"time"
)

type reportsHandler struct {
	guard   *Guard
	reports ReportStore
	cache   Cache
	now     func() time.Time
}

func (h *reportsHandler) register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(h.guard.Authenticate, h.guard.RequireRole(users.RoleAdmin))
		r.Get("/summary", h.summary)
		r.Get("/daily", h.daily)
		r.Get("/monthly", h.monthly)
		r.Get("/top-products", h.topProducts)
	})
}

func (h *reportsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var s reports.Summary
	if ok, err := h.cache.GetJSON(ctx, redisx.KeyReportSummary, &s); err != nil {
		log.Printf("report cache get: %v", err)
	} else if ok {
		writeJSON(w, http.StatusOK, s)
		return
	}

	s, err := h.reports.Summary(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.cache.SetJSON(ctx, redisx.KeyReportSummary, s, redisx.TTLReportCache); err != nil {
		log.Printf("report cache set: %v", err)
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *reportsHandler) daily(w http.ResponseWriter, r *http.Request) {
	day, err := reports.ParseDay(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.reports.Daily(ctx, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *reportsHandler) monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := reports.ParseMonth(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.reports.Monthly(ctx, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *reportsHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := reports.ParseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.reports.TopProducts(ctx, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
