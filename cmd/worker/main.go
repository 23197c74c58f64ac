package main

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/cachesync"
	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &cachesync.Service{
		Cache:       redisx.NewCache(rdb),
		ServiceName: cfg.ServiceName + "-cachesync",
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, orders.TopicOrderEvents, cfg.WorkerCount)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("cachesync consumer started: group=%s topic=%s workers=%d",
			cfg.WorkerGroup, orders.TopicOrderEvents, cfg.WorkerCount)
		return cons.Start(gctx, svc.HandleOrderEvent)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down consumer...")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("consumer exit: %v", err)
	}
}
