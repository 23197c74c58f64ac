package kafka

import (
	"context"
	"github.com/segmentio/kafka-go"
	"log"
	"sync"
	"time"
)

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Lz4,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the writer loop. It drains the inbox until Close is called, then closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			base := ctx
			if ctx.Err() != nil {
				// parent cancelled: still flush what is left
				base = context.Background()
			}
			wctx, cancel := context.WithTimeout(base, 10*time.Second)
			if err := p.w.WriteMessages(wctx, m); err != nil {
				log.Printf("kafka publish topic=%s key=%s: %v", p.w.Topic, m.Key, err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			log.Printf("kafka writer close: %v", err)
		}
	}()
}

// Publish queues a message. When the inbox is full the message is dropped and logged,
// so a slow broker never blocks an HTTP request. Messages published after Close are dropped.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("kafka producer closed, dropping message topic=%s key=%s", p.w.Topic, key)
		return
	}
	select {
	case p.inbox <- m:
	default:
		log.Printf("kafka inbox full, dropping message topic=%s key=%s", p.w.Topic, key)
	}
}

// Close stops accepting messages; the loop flushes the rest and exits. It is safe to call twice.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.closeCh }
