// README: Delivery request aggregate and status definitions.
package request

import (
	"strings"
	"time"

	"campd/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts any letter case. StatusNone is not a stored status and is rejected.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusAssigned, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

// Unassigned is the assigned_shopper value of a request nobody has accepted.
const Unassigned = "Unassigned"

type DeliveryRequest struct {
	TrackingID types.ID `json:"tracking_id"`

	RequesterName    string `json:"requester_name"`
	RequesterContact string `json:"requester_contact"`
	RequesterFaculty string `json:"requester_faculty,omitempty"`
	RequesterYear    string `json:"requester_year,omitempty"`

	Location string      `json:"location,omitempty"`
	Origin   types.Point `json:"origin"`

	ItemDescription       string      `json:"item_description"`
	Quantity              int         `json:"quantity"`
	MaxPrice              types.Money `json:"max_price"`
	RequestedDeliveryTime string      `json:"requested_delivery_time,omitempty"` // HH:MM

	PreferredShopperBase string      `json:"preferred_shopper_base"`
	Surcharge            types.Money `json:"surcharge"`
	PlatformFee          types.Money `json:"platform_fee"`

	AssignedShopper string `json:"assigned_shopper"`
	ShopperName     string `json:"shopper_name,omitempty"`
	ShopperContact  string `json:"shopper_contact,omitempty"`
	ShopperBase     string `json:"shopper_base,omitempty"`

	Status        Status `json:"status"`
	StatusVersion int    `json:"status_version"`

	CreatedAt               time.Time  `json:"created_at"`
	AcceptedAt              *time.Time `json:"accepted_at,omitempty"`
	DeliveredAt             *time.Time `json:"delivered_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	CancelReason            string     `json:"cancel_reason,omitempty"`
	DeliveryDurationMinutes *int       `json:"delivery_duration_minutes,omitempty"`
	Rating                  *int       `json:"rating,omitempty"`

	PaymentType    string `json:"payment_type,omitempty"`
	PaymentSettled bool   `json:"payment_settled"`
}

// ShopperIdentity is what a shopper supplies when accepting a request.
type ShopperIdentity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Base    string `json:"base"`
}

type EventName string

const (
	EventCreate  EventName = "create"
	EventAccept  EventName = "accept"
	EventDeliver EventName = "deliver"
	EventCancel  EventName = "cancel"
	EventRate    EventName = "rate"
)

// Event is one row of a request's audit trail.
type Event struct {
	ID         int64     `json:"id"`
	TrackingID types.ID  `json:"tracking_id"`
	Name       EventName `json:"event"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListFilter struct {
	Status           Status
	Shopper          string
	RequesterContact string
	Limit            int
}

func (f ListFilter) Match(r *DeliveryRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Shopper != "" && r.AssignedShopper != f.Shopper {
		return false
	}
	if f.RequesterContact != "" && r.RequesterContact != f.RequesterContact {
		return false
	}
	return true
}

type Stats struct {
	Total                  int            `json:"total"`
	ByStatus               map[Status]int `json:"by_status"`
	Rated                  int            `json:"rated"`
	AverageRating          float64        `json:"average_rating"`
	AverageDeliveryMinutes float64        `json:"average_delivery_minutes"`
	SurchargeTotal         types.Money    `json:"surcharge_total"`
	PlatformFeeTotal       types.Money    `json:"platform_fee_total"`
}
