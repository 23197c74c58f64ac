package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/reports"
	"github.com/ariefcatur/go-storefront/internal/uploads"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/joho/godotenv"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)
	if err := cache.Ping(ctx); err != nil {
		log.Printf("redis unavailable, caching disabled until it recovers: %v", err)
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	router := httpx.NewRouter(httpx.Deps{
		Tokens:      tokens,
		Auth:        &auth.Service{Users: &users.Repo{DB: db}, Tokens: tokens},
		Categories:  &catalog.CategoryRepo{DB: db},
		Products:    &catalog.ProductRepo{DB: db},
		Cart:        &cart.Repo{DB: db},
		Orders:      &orders.Repo{DB: db},
		Reports:     &reports.Repo{DB: db},
		Images:      uploads.NewStore(cfg.UploadsDir),
		Cache:       cache,
		Events:      prod,
		ServiceName: cfg.ServiceName,
		UploadsDir:  cfg.UploadsDir,
		CORSOrigins: cfg.CORSOrigins,
	})

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	prod.Close()      // close inbox, flush, close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
