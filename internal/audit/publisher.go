package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Store is the subset of the audit store the publisher writes through.
type Store interface {
	AppendSuspicious(ctx context.Context, a SuspiciousAttempt) error
	AppendDeviceAccess(ctx context.Context, e DeviceAccessEntry) error
}

// Publisher records audit events. Persistence failures are logged and
// swallowed: an audit write must never fail the attendance decision that
// produced it. When a Kafka mirror is configured, events are additionally
// streamed there without blocking the caller.
type Publisher struct {
	store  Store
	mirror *KafkaMirror
	logger *slog.Logger
}

func NewPublisher(store Store, mirror *KafkaMirror, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, mirror: mirror, logger: logger}
}

// Suspicious records a flagged attendance attempt.
func (p *Publisher) Suspicious(ctx context.Context, a SuspiciousAttempt) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := p.store.AppendSuspicious(ctx, a); err != nil {
		p.logger.ErrorContext(ctx, "failed to record suspicious attempt",
			"user_id", a.UserID, "attempt_type", a.Type, "error", err)
	}
	p.mirror.Enqueue("suspicious_attempt", a)
}

// DeviceAccess records a device verification outcome.
func (p *Publisher) DeviceAccess(ctx context.Context, e DeviceAccessEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := p.store.AppendDeviceAccess(ctx, e); err != nil {
		p.logger.ErrorContext(ctx, "failed to record device access",
			"user_id", e.UserID, "action", e.Action, "error", err)
	}
	p.mirror.Enqueue("device_access", e)
}

type mirrorEvent struct {
	Kind string
	Body any
}

// KafkaMirror streams audit events to a Kafka topic. Nil is a valid receiver
// so deployments without Kafka simply skip mirroring.
type KafkaMirror struct {
	client *kgo.Client
	events chan mirrorEvent
	logger *slog.Logger
}

// NewKafkaMirror connects to the given brokers. Returns nil when brokers is
// empty.
func NewKafkaMirror(brokers []string, topic string, logger *slog.Logger) (*KafkaMirror, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaMirror{
		client: client,
		events: make(chan mirrorEvent, 1024),
		logger: logger,
	}, nil
}

// Enqueue hands an event to the mirror worker. Drops on a full buffer rather
// than blocking the request path.
func (m *KafkaMirror) Enqueue(kind string, body any) {
	if m == nil {
		return
	}
	select {
	case m.events <- mirrorEvent{Kind: kind, Body: body}:
	default:
		m.logger.Warn("audit mirror buffer full, dropping event", "kind", kind)
	}
}

// Run consumes the event buffer until ctx is cancelled.
func (m *KafkaMirror) Run(ctx context.Context) {
	if m == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			m.client.Close()
			return
		case ev := <-m.events:
			payload, err := json.Marshal(map[string]any{
				"kind":  ev.Kind,
				"event": ev.Body,
			})
			if err != nil {
				m.logger.Error("failed to encode audit event", "kind", ev.Kind, "error", err)
				continue
			}
			m.client.Produce(ctx, &kgo.Record{Value: payload}, func(_ *kgo.Record, err error) {
				if err != nil {
					m.logger.Error("failed to produce audit event", "kind", ev.Kind, "error", err)
				}
			})
		}
	}
}
