// Package cachesync consumes order events and drops the caches they make stale.
package cachesync

import (
	"context"
	"encoding/json"
	"fmt"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"log"
	"time"
)

type Cache interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Bump(ctx context.Context, key string) error
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	Cache       Cache
	ServiceName string
}

// HandleOrderEvent is installed as the consumer handler. A returned error leaves the
// offset uncommitted.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// a malformed message can never succeed; commit past it
		log.Printf("cachesync: drop undecodable message offset=%d: %v", m.Offset, err)
		return nil
	}

	stock := false
	switch env.EventType {
	case orders.EventOrderPlaced:
		stock = true
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			log.Printf("cachesync: drop event %s: %v", env.EventID, err)
			return nil
		}
		stock = p.Restocked
	default:
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	first, err := s.Cache.Claim(ctx, dkey, redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("claim %s: %w", dkey, err)
	}
	if !first {
		return nil
	}

	if err := s.Cache.Del(ctx, redisx.KeyReportSummary); err != nil {
		return s.release(ctx, dkey, fmt.Errorf("drop report summary: %w", err))
	}
	// stock appears in product listings
	if stock {
		if err := s.Cache.Bump(ctx, redisx.KeyCatalogVersion); err != nil {
			return s.release(ctx, dkey, fmt.Errorf("bump catalog version: %w", err))
		}
	}
	log.Printf("cachesync: %s order=%s invalidated (stock=%v)", env.EventType, env.CorrelationID, stock)
	return nil
}

// release forgets a claim so a redelivered event is processed again.
func (s *Service) release(ctx context.Context, key string, cause error) error {
	if err := s.Cache.Del(ctx, key); err != nil {
		log.Printf("cachesync: release %s: %v", key, err)
	}
	return cause
}
