package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/etxarri/terragrid/internal/core/domain"
)

// Subscriber consumes grid and LOD events from NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeGridRebuilt invokes handler for every persisted snapshot
// announcement. Used by the API to drop stale viewport and stats caches.
func (s *Subscriber) SubscribeGridRebuilt(ctx context.Context, handler func(ctx context.Context, snapshot *domain.GridSnapshot) error) error {
	sub, err := s.js.Subscribe("grid.rebuilt.>", func(msg *nats.Msg) {
		var snapshot domain.GridSnapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &snapshot); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("grid-refresher"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeLODState invokes handler for level-of-detail state broadcasts.
func (s *Subscriber) SubscribeLODState(ctx context.Context, handler func(ctx context.Context, state *domain.LODState) error) error {
	sub, err := s.js.Subscribe("lod.state.>", func(msg *nats.Msg) {
		var state domain.LODState
		if err := json.Unmarshal(msg.Data, &state); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &state); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("lod-follower"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
