// README: Request service; the engine's public operations (quote, create, transition).
package request

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"campd/internal/modules/location"
	"campd/internal/modules/pricing"
	"campd/internal/types"
)

// maxSwapAttempts bounds the read-apply-swap loop when concurrent writers race.
const maxSwapAttempts = 3

type Service struct {
	repo      Repository
	pricing   *pricing.Service
	locations *location.Service
	publisher Publisher
	now       func() time.Time
}

func NewService(repo Repository, pricingSvc *pricing.Service, locationSvc *location.Service, publisher Publisher) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		repo:      repo,
		pricing:   pricingSvc,
		locations: locationSvc,
		publisher: publisher,
		now:       time.Now,
	}
}

type QuoteCommand struct {
	Location string
	Origin   *types.Point
	Preset   string
}

type QuoteResult struct {
	Resolution *location.Resolution `json:"resolution,omitempty"`
	Table      pricing.Table        `json:"table"`
}

type CreateCommand struct {
	Input  CreateInput
	Preset string
}

type AcceptCommand struct {
	TrackingID types.ID
	Shopper    ShopperIdentity
}

type DeliverCommand struct {
	TrackingID types.ID
	Actor      string
}

type CancelCommand struct {
	TrackingID types.ID
	Actor      string
	Reason     string
}

type RateCommand struct {
	TrackingID types.ID
	Rating     int
}

// Quote resolves the origin (explicit coordinate wins over free text) and prices
// every shopper base.
func (s *Service) Quote(ctx context.Context, cmd QuoteCommand) (QuoteResult, error) {
	origin, res, err := s.resolveOrigin(ctx, cmd.Origin, cmd.Location)
	if err != nil {
		return QuoteResult{}, err
	}
	table, err := s.pricing.Quote(ctx, origin, cmd.Preset)
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{Resolution: res, Table: table}, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*DeliveryRequest, error) {
	in := cmd.Input
	if err := checkFields(in); err != nil {
		return nil, err
	}
	if in.Origin == nil && strings.TrimSpace(in.Location) != "" {
		origin, _, err := s.resolveOrigin(ctx, nil, in.Location)
		if err != nil {
			return nil, err
		}
		in.Origin = &origin
	}
	if in.Origin == nil {
		return nil, &MissingFieldError{Field: "origin"}
	}
	if err := in.Origin.Validate(); err != nil {
		return nil, &MissingFieldError{Field: "origin", Reason: err.Error()}
	}

	table, err := s.pricing.Quote(ctx, *in.Origin, cmd.Preset)
	if err != nil {
		return nil, err
	}
	r, err := NewRequest(in, table.Quotes, table.Config, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(ctx, r.TrackingID); err == nil {
		log.Printf("request: tracking id %s collides with an existing request; overwriting", r.TrackingID)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, upstream(err)
	}
	s.record(ctx, EventCreate, StatusNone, r, r.RequesterContact)
	return r, nil
}

// Transition applies one lifecycle event. A lost compare-and-set re-reads the request
// and re-applies the event, so a losing concurrent accept sees the winner.
func (s *Service) Transition(ctx context.Context, id types.ID, t Transition) (*DeliveryRequest, error) {
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		r, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		from, version := r.Status, r.StatusVersion
		if err := Apply(r, t, s.now()); err != nil {
			return nil, err
		}
		r.StatusVersion = version + 1

		ok, err := s.repo.CompareAndSwap(ctx, r, version)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, upstream(err)
		}
		if !ok {
			continue
		}
		actor := t.Actor
		if t.Event == EventAccept {
			actor = r.AssignedShopper
		}
		s.record(ctx, t.Event, from, r, actor)
		return r, nil
	}
	return nil, ErrConflict
}

func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*DeliveryRequest, error) {
	return s.Transition(ctx, cmd.TrackingID, Transition{Event: EventAccept, Actor: cmd.Shopper.ID, Shopper: cmd.Shopper})
}

func (s *Service) MarkDelivered(ctx context.Context, cmd DeliverCommand) (*DeliveryRequest, error) {
	return s.Transition(ctx, cmd.TrackingID, Transition{Event: EventDeliver, Actor: cmd.Actor})
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*DeliveryRequest, error) {
	return s.Transition(ctx, cmd.TrackingID, Transition{Event: EventCancel, Actor: cmd.Actor, Reason: cmd.Reason})
}

func (s *Service) Rate(ctx context.Context, cmd RateCommand) (*DeliveryRequest, error) {
	return s.Transition(ctx, cmd.TrackingID, Transition{Event: EventRate, Rating: cmd.Rating})
}

func (s *Service) Get(ctx context.Context, id types.ID) (*DeliveryRequest, error) {
	r, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*DeliveryRequest, error) {
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, upstream(err)
	}
	return out, nil
}

func (s *Service) Events(ctx context.Context, id types.ID) ([]Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.repo.Events(ctx, id)
	if err != nil {
		return nil, upstream(err)
	}
	return events, nil
}

// Stats summarises every stored request for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		ByStatus:         map[Status]int{},
		SurchargeTotal:   types.NewMoney(0),
		PlatformFeeTotal: types.NewMoney(0),
	}
	var ratingSum, durationSum, durations int
	for _, r := range all {
		st.Total++
		st.ByStatus[r.Status]++
		if r.Rating != nil {
			st.Rated++
			ratingSum += *r.Rating
		}
		if r.DeliveryDurationMinutes != nil {
			durations++
			durationSum += *r.DeliveryDurationMinutes
		}
		if r.Status != StatusCancelled {
			st.SurchargeTotal.Amount += r.Surcharge.Amount
			st.PlatformFeeTotal.Amount += r.PlatformFee.Amount
		}
	}
	if st.Rated > 0 {
		st.AverageRating = float64(ratingSum) / float64(st.Rated)
	}
	if durations > 0 {
		st.AverageDeliveryMinutes = float64(durationSum) / float64(durations)
	}
	return st, nil
}

func (s *Service) resolveOrigin(ctx context.Context, origin *types.Point, text string) (types.Point, *location.Resolution, error) {
	if origin != nil {
		return *origin, nil, nil
	}
	if s.locations == nil {
		return types.Point{}, nil, &MissingFieldError{Field: "origin"}
	}
	res, err := s.locations.Resolve(ctx, text)
	if errors.Is(err, location.ErrNotFound) {
		return types.Point{}, nil, &MissingFieldError{Field: "origin", Reason: "location not found"}
	}
	if err != nil {
		return types.Point{}, nil, err
	}
	return res.Position, &res, nil
}

// record appends the audit row and publishes the lifecycle event. Both happen after
// the state change is durable; failures are logged and do not undo it.
func (s *Service) record(ctx context.Context, name EventName, from Status, r *DeliveryRequest, actor string) {
	now := s.now().UTC()
	if err := s.repo.AppendEvent(ctx, &Event{
		TrackingID: r.TrackingID,
		Name:       name,
		FromStatus: from,
		ToStatus:   r.Status,
		Actor:      actor,
		CreatedAt:  now,
	}); err != nil {
		log.Printf("request: append %s event for %s: %v", name, r.TrackingID, err)
	}
	if err := s.publisher.Publish(ctx, LifecycleEvent{
		Name:       name,
		TrackingID: r.TrackingID,
		FromStatus: from,
		ToStatus:   r.Status,
		Actor:      actor,
		At:         now,
		Request:    r,
	}); err != nil {
		log.Printf("request: publish %s event for %s: %v", name, r.TrackingID, err)
	}
}

func upstream(err error) error {
	if errors.Is(err, types.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
}
