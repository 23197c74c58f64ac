package kafka

import (
	"context"
	"github.com/segmentio/kafka-go"
	"log"
	"sync"
	"time"
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	retryBackoff    = 200 * time.Millisecond
	maxRetryBackoff = 5 * time.Second
)

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// Start dispatches messages to a pool of workers until ctx is cancelled. Each partition
// is owned by one worker, and a failing message is retried before its partition moves on,
// so offsets are committed in order.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if err := handleWithRetry(ctx, h, m, retryBackoff); err != nil {
					// cancelled: leave the offset uncommitted for redelivery
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					log.Printf("commit partition=%d offset=%d: %v", m.Partition, m.Offset, err)
				}
			}
		}(jobs[i])
	}
	stop := func() {
		for _, ch := range jobs {
			close(ch)
		}
		wg.Wait()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			stop()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs[workerFor(m.Partition, c.workers)] <- m:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

func workerFor(partition, workers int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % workers
}

// handleWithRetry runs h until it succeeds or ctx is cancelled, doubling the pause
// between attempts up to maxRetryBackoff.
func handleWithRetry(ctx context.Context, h Handler, m kafka.Message, backoff time.Duration) error {
	for {
		err := h(ctx, m)
		if err == nil {
			return nil
		}
		log.Printf("worker error partition=%d offset=%d: %v", m.Partition, m.Offset, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}
