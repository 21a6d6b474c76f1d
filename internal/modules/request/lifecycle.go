// README: Request state machine; transition functions over an explicit request value.
package request

import (
	"math"
	"strings"
	"time"
)

// AllowedTransitions represents the request state flow as code. Delivered and
// Cancelled are terminal; rating a delivered request does not change its status.
var AllowedTransitions = map[Status][]Status{
	StatusPending:  {StatusAssigned},
	StatusAssigned: {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Transition is one lifecycle event with its actor and payload. Every guard is checked
// before the request is touched, so a failed transition leaves it unchanged.
type Transition struct {
	Event   EventName       `json:"event"`
	Actor   string          `json:"actor"`
	Shopper ShopperIdentity `json:"shopper"`
	Rating  int             `json:"rating"`
	Reason  string          `json:"reason"`
}

func Apply(r *DeliveryRequest, t Transition, now time.Time) error {
	switch t.Event {
	case EventAccept:
		shopper := t.Shopper
		if shopper.ID == "" {
			shopper.ID = t.Actor
		}
		return Accept(r, shopper, now)
	case EventDeliver:
		return MarkDelivered(r, t.Actor, now)
	case EventCancel:
		return Cancel(r, t.Actor, t.Reason, now)
	case EventRate:
		return Rate(r, t.Rating)
	default:
		return ErrUnknownEvent
	}
}

// Accept assigns the request to the first shopper that claims it.
func Accept(r *DeliveryRequest, shopper ShopperIdentity, now time.Time) error {
	shopper.ID = strings.TrimSpace(shopper.ID)
	if shopper.ID == "" || shopper.ID == Unassigned {
		return &MissingFieldError{Field: "shopper"}
	}
	if r.Status != StatusPending || r.AssignedShopper != Unassigned {
		return ErrAlreadyAssigned
	}

	name := strings.TrimSpace(shopper.Name)
	if name == "" {
		name = shopper.ID
	}
	at := now.UTC()
	r.AssignedShopper = shopper.ID
	r.ShopperName = name
	r.ShopperContact = strings.TrimSpace(shopper.Contact)
	r.ShopperBase = strings.TrimSpace(shopper.Base)
	r.AcceptedAt = &at
	r.Status = StatusAssigned
	return nil
}

// MarkDelivered completes an assigned request. A missing accepted_at leaves the
// duration unset.
func MarkDelivered(r *DeliveryRequest, actor string, now time.Time) error {
	if !CanTransition(r.Status, StatusDelivered) {
		return ErrInvalidTransition
	}
	if !r.ownedBy(actor) {
		return ErrNotOwner
	}

	at := now.UTC()
	r.DeliveredAt = &at
	if r.AcceptedAt != nil {
		minutes := int(math.Round(at.Sub(*r.AcceptedAt).Minutes()))
		if minutes < 0 {
			minutes = 0
		}
		r.DeliveryDurationMinutes = &minutes
	}
	r.Status = StatusDelivered
	return nil
}

func Cancel(r *DeliveryRequest, actor, reason string, now time.Time) error {
	if !CanTransition(r.Status, StatusCancelled) {
		return ErrInvalidTransition
	}
	if !r.ownedBy(actor) {
		return ErrNotOwner
	}

	at := now.UTC()
	r.CancelledAt = &at
	r.CancelReason = strings.TrimSpace(reason)
	r.Status = StatusCancelled
	return nil
}

// Rate records the requester's rating; a later rating replaces an earlier one.
func Rate(r *DeliveryRequest, value int) error {
	if r.Status != StatusDelivered {
		return ErrInvalidTransition
	}
	if value < 1 || value > 5 {
		return ErrInvalidRating
	}
	v := value
	r.Rating = &v
	return nil
}

func (r *DeliveryRequest) ownedBy(actor string) bool {
	actor = strings.TrimSpace(actor)
	return actor != "" && actor == r.AssignedShopper
}
