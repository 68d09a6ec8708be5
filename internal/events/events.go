package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	applog "marketplace/internal/log"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	ShopCreated    = "shop.created"
	ShopUpdated    = "shop.updated"
	ShopDeleted    = "shop.deleted"
	OrderPlaced    = "order.placed"
	OrderStatus    = "order.status_changed"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func New(typ string, data map[string]any) Event {
	return Event{ID: uuid.NewString(), Type: typ, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher writes events to the process log.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	body, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	applog.Base().WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.Type,
		"data":       string(body),
	}).Info("event.published")
	return nil
}

// Emit publishes e and only logs a failure.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		applog.Base().WithFields(logrus.Fields{
			"event_type": e.Type,
			"err":        err.Error(),
		}).Warn("event.publish_failed")
	}
}
