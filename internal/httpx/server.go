package httpx

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"net/http"
	"time"
)

// Deps wires the API. Every field is required.
type Deps struct {
	Tokens     TokenParser
	Auth       Authenticator
	Categories CategoryStore
	Products   ProductStore
	Cart       CartStore
	Orders     OrderStore
	Reports    ReportStore
	Images     ImageStore
	Cache      Cache
	Events     Publisher

	ServiceName string
	UploadsDir  string
	CORSOrigins []string
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir))))

	guard := &Guard{Tokens: d.Tokens}
	handlers := []interface{ register(chi.Router) }{
		&authHandler{svc: d.Auth},
		&catalogHandler{guard: guard, categories: d.Categories, products: d.Products, images: d.Images, cache: d.Cache},
		&cartHandler{guard: guard, cart: d.Cart},
		&ordersHandler{guard: guard, orders: d.Orders, cache: d.Cache, events: d.Events, service: d.ServiceName},
		&reportsHandler{guard: guard, reports: d.Reports, cache: d.Cache, now: time.Now},
	}
	r.Route("/api", func(api chi.Router) {
		api.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w, http.StatusOK, d.ServiceName+" is running")
		})
		for _, h := range handlers {
			h.register(api)
		}
	})
	return r
}
