package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"log"
	"net/http"
	"strconv"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindInvalid, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and a client-safe message. Internal errors are
// logged with the request id and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(apperr.KindOf(err))
	if code == http.StatusInternalServerError {
		log.Printf("reqid=%s %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		writeJSON(w, code, map[string]string{"error": "Internal server error"})
		return
	}

	msg := apperr.Message(err, http.StatusText(code))
	var se *orders.StockError
	if errors.As(err, &se) {
		writeJSON(w, code, map[string]any{"error": se.Error(), "items": se.Shortages})
		return
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("Invalid JSON body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("Invalid " + name)
	}
	return id, nil
}
