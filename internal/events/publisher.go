// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/driftwood-io/driftwood/internal/config"
	"github.com/driftwood-io/driftwood/internal/discovery"
)

// Publisher emits impression events through Watermill. It satisfies
// discovery.ImpressionRecorder: one message per finalized selection,
// protected by a circuit breaker so a broker outage never stalls selections.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *gobreaker.CircuitBreaker[any]
	mu        sync.RWMutex
	closed    bool
}

// NewNATSPublisher creates a NATS-backed impression publisher.
func NewNATSPublisher(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return NewPublisher(pub, cfg.Topic), nil
}

// NewPublisher wraps any Watermill publisher. Tests use this with an
// in-process gochannel pub/sub.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "impression-publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Publisher{
		publisher: pub,
		topic:     topic,
		breaker:   breaker,
	}
}

// RecordImpression serializes and publishes one impression event. The
// message UUID doubles as the NATS deduplication id.
func (p *Publisher) RecordImpression(ctx context.Context, imp discovery.Impression) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("impression publisher is closed")
	}
	p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(imp)
	if err != nil {
		return fmt.Errorf("marshal impression: %w", err)
	}

	msgID := imp.RequestID
	if msgID == "" {
		msgID = watermill.NewUUID()
	}
	msg := message.NewMessage(msgID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, msgID)
	msg.Metadata.Set("user_id", imp.UserID)
	msg.Metadata.Set("session_id", imp.SessionID)
	msg.Metadata.Set("candidate_id", imp.CandidateID)

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(p.topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish impression: %w", err)
	}
	return nil
}

// Close closes the underlying publisher. RecordImpression calls after Close
// fail fast.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.publisher.Close()
}
