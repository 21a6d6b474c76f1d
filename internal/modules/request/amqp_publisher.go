// README: Lifecycle event publisher over a message broker (RabbitMQ in production).
package request

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessageSender is satisfied by infra.RabbitMQ.
type MessageSender interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

type BrokerPublisher struct {
	sender MessageSender
}

func NewBrokerPublisher(sender MessageSender) *BrokerPublisher {
	return &BrokerPublisher{sender: sender}
}

func (p *BrokerPublisher) Publish(ctx context.Context, e LifecycleEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Name, err)
	}
	if err := p.sender.Publish(ctx, RoutingKey(e.Name), body); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Name, err)
	}
	return nil
}

func RoutingKey(name EventName) string {
	switch name {
	case EventCreate:
		return "request.created"
	case EventAccept:
		return "request.accepted"
	case EventDeliver:
		return "request.delivered"
	case EventCancel:
		return "request.cancelled"
	case EventRate:
		return "request.rated"
	default:
		return "request.event"
	}
}
