package broker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tkarimi/residual/pkg/logger"
	"github.com/tkarimi/residual/pkg/metrics"
)

// Kafka connection defaults.
const (
	defaultWriteTimeout = 10 * time.Second
	defaultBatchTimeout = 10 * time.Millisecond
	defaultMaxBytes     = 1 << 20
)

// KafkaPublisher implements Publisher with one kafka.Writer per topic.
type KafkaPublisher struct {
	cfg     settings
	log     logger.Logger
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafkaPublisher creates a publisher for the configured brokers.
func NewKafkaPublisher(opts ...Option) *KafkaPublisher {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &KafkaPublisher{
		cfg:     cfg,
		log:     cfg.log,
		writers: make(map[string]*kafka.Writer),
	}
}

// getWriter returns or creates the writer for topic. Writers require acks
// from all replicas and make a single attempt; retrying is the caller's
// decision, and here the contract is to fail fast.
func (p *KafkaPublisher) getWriter(topic string) *kafka.Writer {
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.cfg.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            1,
		BatchSize:              1,
		BatchTimeout:           defaultBatchTimeout,
		WriteTimeout:           defaultWriteTimeout,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// Publish writes one message to topic.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	msg := kafka.Message{Value: payload, Time: time.Now()}
	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		metrics.RecordPublishError()
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close releases all topic writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var lastErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			lastErr = err
			p.log.Error(context.Background(), "failed to close writer",
				logger.String("topic", topic), logger.Error(err))
		}
	}
	return lastErr
}

// KafkaSubscriber implements Subscriber with one kafka.Reader per topic.
type KafkaSubscriber struct {
	cfg     settings
	log     logger.Logger
	mu      sync.Mutex
	readers []*kafka.Reader
	wg      sync.WaitGroup
	closed  bool
}

// NewKafkaSubscriber creates a subscriber for the configured brokers.
func NewKafkaSubscriber(opts ...Option) *KafkaSubscriber {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &KafkaSubscriber{cfg: cfg, log: cfg.log}
}

// Subscribe starts a background reader delivering every message on topic to
// handler. Handler errors are the handler's to report; they only affect
// commits under at-least-once mode.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.cfg.brokers,
		Topic:    topic,
		GroupID:  s.cfg.groupID,
		MaxBytes: defaultMaxBytes,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			s.log.Error(context.Background(), fmt.Sprintf(msg, args...), logger.String("topic", topic))
		}),
	})
	s.readers = append(s.readers, reader)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.consume(ctx, reader, topic, handler)
	}()
	return nil
}

func (s *KafkaSubscriber) consume(ctx context.Context, reader *kafka.Reader, topic string, handler Handler) {
	for {
		var msg kafka.Message
		var err error
		if s.cfg.mode == AtMostOnce {
			// ReadMessage commits before we handle: effectively auto-ack.
			msg, err = reader.ReadMessage(ctx)
		} else {
			msg, err = reader.FetchMessage(ctx)
		}
		if err != nil {
			// io.EOF means the reader was closed.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return
			}
			s.log.Error(ctx, "failed to read message", logger.String("topic", topic), logger.Error(err))
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		metrics.RecordMessageConsumed(topic)
		handleErr := handler(ctx, Delivery{Topic: topic, Value: msg.Value})

		if s.cfg.mode == AtLeastOnce && handleErr == nil {
			if err := reader.CommitMessages(ctx, msg); err != nil {
				s.log.Error(ctx, "failed to commit offset", logger.String("topic", topic), logger.Error(err))
			}
		}
	}
}

// Close stops all readers and waits for their goroutines.
func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	readers := s.readers
	s.mu.Unlock()

	var lastErr error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			lastErr = err
		}
	}
	s.wg.Wait()
	return lastErr
}
