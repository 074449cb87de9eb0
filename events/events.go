// Package events announces ledger changes to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	OrderCreated     = "order.created"
	OrderSettled     = "order.settled"
	OrderDeleted     = "order.deleted"
	SnapshotImported = "snapshot.imported"
)

// ChannelPrefix is prepended to the event type to form the pub/sub channel.
const ChannelPrefix = "ledger:events:"

type Event struct {
	Type       string           `json:"type"`
	Account    string           `json:"account"`
	OrderID    string           `json:"orderId,omitempty"`
	Status     models.Status    `json:"status,omitempty"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	AmountPaid *decimal.Decimal `json:"amountPaid,omitempty"`
	Data       any              `json:"data,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// OrderEvent builds an event carrying the order's settlement.
func OrderEvent(eventType, account string, o models.Order) Event {
	total, paid := o.Total, o.AmountPaid
	return Event{
		Type:       eventType,
		Account:    account,
		OrderID:    o.ID,
		Status:     o.Status,
		Total:      &total,
		AmountPaid: &paid,
		Timestamp:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes each event as JSON to its type channel and to the "all" channel.
type RedisPublisher struct {
	client redisPublisher
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	eventJSON, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, ChannelPrefix+e.Type, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelPrefix+"all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
