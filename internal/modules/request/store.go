// README: Request store backed by PostgreSQL; transitions use a status_version compare-and-set.
package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campd/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const requestColumns = `
	tracking_id, requester_name, requester_contact, requester_faculty, requester_year,
	location, origin_lat, origin_lng,
	item_description, quantity, max_price, requested_delivery_time,
	preferred_shopper_base, surcharge, platform_fee, currency,
	assigned_shopper, shopper_name, shopper_contact, shopper_base,
	status, status_version,
	created_at, accepted_at, delivered_at, cancelled_at, cancel_reason,
	delivery_duration_minutes, rating, payment_type, payment_settled`

// Create upserts on tracking_id: a colliding ID replaces the earlier row.
func (s *PGStore) Create(ctx context.Context, r *DeliveryRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO delivery_requests (`+requestColumns+`
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22,
			$23, $24, $25, $26, $27,
			$28, $29, $30, $31
		)
		ON CONFLICT (tracking_id) DO UPDATE SET
			requester_name = EXCLUDED.requester_name,
			requester_contact = EXCLUDED.requester_contact,
			requester_faculty = EXCLUDED.requester_faculty,
			requester_year = EXCLUDED.requester_year,
			location = EXCLUDED.location,
			origin_lat = EXCLUDED.origin_lat,
			origin_lng = EXCLUDED.origin_lng,
			item_description = EXCLUDED.item_description,
			quantity = EXCLUDED.quantity,
			max_price = EXCLUDED.max_price,
			requested_delivery_time = EXCLUDED.requested_delivery_time,
			preferred_shopper_base = EXCLUDED.preferred_shopper_base,
			surcharge = EXCLUDED.surcharge,
			platform_fee = EXCLUDED.platform_fee,
			currency = EXCLUDED.currency,
			assigned_shopper = EXCLUDED.assigned_shopper,
			shopper_name = EXCLUDED.shopper_name,
			shopper_contact = EXCLUDED.shopper_contact,
			shopper_base = EXCLUDED.shopper_base,
			status = EXCLUDED.status,
			status_version = EXCLUDED.status_version,
			created_at = EXCLUDED.created_at,
			accepted_at = EXCLUDED.accepted_at,
			delivered_at = EXCLUDED.delivered_at,
			cancelled_at = EXCLUDED.cancelled_at,
			cancel_reason = EXCLUDED.cancel_reason,
			delivery_duration_minutes = EXCLUDED.delivery_duration_minutes,
			rating = EXCLUDED.rating,
			payment_type = EXCLUDED.payment_type,
			payment_settled = EXCLUDED.payment_settled`,
		rowArgs(r)...,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*DeliveryRequest, error) {
	row := s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM delivery_requests WHERE tracking_id = $1`, string(id))
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// CompareAndSwap writes the mutable lifecycle columns when status_version still
// matches. Creation-time columns, the surcharge included, are never rewritten here.
func (s *PGStore) CompareAndSwap(ctx context.Context, r *DeliveryRequest, expectedVersion int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE delivery_requests
		SET assigned_shopper = $1,
			shopper_name = $2,
			shopper_contact = $3,
			shopper_base = $4,
			status = $5,
			status_version = $6,
			accepted_at = $7,
			delivered_at = $8,
			cancelled_at = $9,
			cancel_reason = $10,
			delivery_duration_minutes = $11,
			rating = $12,
			payment_settled = $13
		WHERE tracking_id = $14 AND status_version = $15`,
		r.AssignedShopper,
		r.ShopperName,
		r.ShopperContact,
		r.ShopperBase,
		string(r.Status),
		r.StatusVersion,
		r.AcceptedAt,
		r.DeliveredAt,
		r.CancelledAt,
		r.CancelReason,
		r.DeliveryDurationMinutes,
		r.Rating,
		r.PaymentSettled,
		string(r.TrackingID),
		expectedVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]*DeliveryRequest, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Shopper != "" {
		add("assigned_shopper = $%d", f.Shopper)
	}
	if f.RequesterContact != "" {
		add("requester_contact = $%d", f.RequesterContact)
	}

	q := `SELECT ` + requestColumns + ` FROM delivery_requests`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DeliveryRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO request_events (
			tracking_id, event, from_status, to_status, actor, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(e.TrackingID),
		string(e.Name),
		string(e.FromStatus),
		string(e.ToStatus),
		e.Actor,
		e.CreatedAt,
	).Scan(&e.ID)
}

func (s *PGStore) Events(ctx context.Context, id types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tracking_id, event, from_status, to_status, actor, created_at
		FROM request_events
		WHERE tracking_id = $1
		ORDER BY id`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TrackingID, &e.Name, &e.FromStatus, &e.ToStatus, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func rowArgs(r *DeliveryRequest) []any {
	return []any{
		string(r.TrackingID), r.RequesterName, r.RequesterContact, r.RequesterFaculty, r.RequesterYear,
		r.Location, r.Origin.Lat, r.Origin.Lng,
		r.ItemDescription, r.Quantity, r.MaxPrice.Amount, r.RequestedDeliveryTime,
		r.PreferredShopperBase, r.Surcharge.Amount, r.PlatformFee.Amount, r.Surcharge.Currency,
		r.AssignedShopper, r.ShopperName, r.ShopperContact, r.ShopperBase,
		string(r.Status), r.StatusVersion,
		r.CreatedAt, r.AcceptedAt, r.DeliveredAt, r.CancelledAt, r.CancelReason,
		r.DeliveryDurationMinutes, r.Rating, r.PaymentType, r.PaymentSettled,
	}
}

func scanRequest(row pgx.Row) (*DeliveryRequest, error) {
	var (
		r                                    DeliveryRequest
		currency                             string
		acceptedAt, deliveredAt, cancelledAt *time.Time
		duration, rating                     *int
	)
	err := row.Scan(
		&r.TrackingID, &r.RequesterName, &r.RequesterContact, &r.RequesterFaculty, &r.RequesterYear,
		&r.Location, &r.Origin.Lat, &r.Origin.Lng,
		&r.ItemDescription, &r.Quantity, &r.MaxPrice.Amount, &r.RequestedDeliveryTime,
		&r.PreferredShopperBase, &r.Surcharge.Amount, &r.PlatformFee.Amount, &currency,
		&r.AssignedShopper, &r.ShopperName, &r.ShopperContact, &r.ShopperBase,
		&r.Status, &r.StatusVersion,
		&r.CreatedAt, &acceptedAt, &deliveredAt, &cancelledAt, &r.CancelReason,
		&duration, &rating, &r.PaymentType, &r.PaymentSettled,
	)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = types.DefaultCurrency
	}
	r.MaxPrice.Currency = currency
	r.Surcharge.Currency = currency
	r.PlatformFee.Currency = currency
	r.AcceptedAt = utc(acceptedAt)
	r.DeliveredAt = utc(deliveredAt)
	r.CancelledAt = utc(cancelledAt)
	r.CreatedAt = r.CreatedAt.UTC()
	r.DeliveryDurationMinutes = duration
	r.Rating = rating
	return &r, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
