package request

import (
	"context"
	"time"

	"campd/internal/types"
)

// LifecycleEvent is published after a create or transition has been persisted.
type LifecycleEvent struct {
	Name       EventName        `json:"event"`
	TrackingID types.ID         `json:"tracking_id"`
	FromStatus Status           `json:"from_status"`
	ToStatus   Status           `json:"to_status"`
	Actor      string           `json:"actor,omitempty"`
	At         time.Time        `json:"at"`
	Request    *DeliveryRequest `json:"request"`
}

type Publisher interface {
	Publish(ctx context.Context, e LifecycleEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }
