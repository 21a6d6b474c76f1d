package request

import (
	"context"

	"campd/internal/types"
)

// Repository is the persistence port. CompareAndSwap must write r only when the
// stored status_version still equals expectedVersion, and report whether it did.
type Repository interface {
	Create(ctx context.Context, r *DeliveryRequest) error
	Get(ctx context.Context, id types.ID) (*DeliveryRequest, error)
	CompareAndSwap(ctx context.Context, r *DeliveryRequest, expectedVersion int) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*DeliveryRequest, error)
	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, id types.ID) ([]Event, error)
}
