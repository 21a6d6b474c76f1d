package request

import (
	"errors"
	"testing"
	"time"

	"campd/internal/modules/catalog"
	"campd/internal/modules/pricing"
	"campd/internal/types"
)

// fbc is a campus origin inside Freetown.
var fbc = types.Point{Lat: 8.4840, Lng: -13.2317}

func validInput() CreateInput {
	origin := fbc
	return CreateInput{
		RequesterName:         "Aminata Kamara",
		RequesterContact:      "+23276123456",
		RequesterFaculty:      "Engineering",
		Location:              "FBC",
		Origin:                &origin,
		ItemDescription:       "2 loaves of bread",
		RequestedDeliveryTime: "14:30",
		PreferredShopperBase:  "Congo Cross",
	}
}

func testQuotes(t *testing.T) ([]pricing.Quote, pricing.Config) {
	t.Helper()
	bases, err := catalog.New(catalog.DefaultShopperBases())
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	cfg := pricing.Presets()[pricing.PresetStandard]
	quotes, err := pricing.QuoteSurcharges(fbc, bases, cfg)
	if err != nil {
		t.Fatalf("QuoteSurcharges() error = %v", err)
	}
	return quotes, cfg
}

func TestNewRequest(t *testing.T) {
	quotes, cfg := testQuotes(t)
	now := time.Date(2025, 3, 1, 9, 15, 0, 0, time.FixedZone("WAT", 3600))

	r, err := NewRequest(validInput(), quotes, cfg, now)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	if len(r.TrackingID) != trackingIDLength {
		t.Fatalf("tracking id %q has length %d", r.TrackingID, len(r.TrackingID))
	}
	want, _ := pricing.FindQuote(quotes, "Congo Cross")
	if r.Surcharge != want.Fee {
		t.Fatalf("surcharge = %+v, want %+v", r.Surcharge, want.Fee)
	}
	if r.PlatformFee.Amount != r.Surcharge.Amount/10 {
		t.Fatalf("platform fee = %d, want 10%% of %d", r.PlatformFee.Amount, r.Surcharge.Amount)
	}
	if r.Status != StatusPending || r.AssignedShopper != Unassigned {
		t.Fatalf("status = %s assigned = %q", r.Status, r.AssignedShopper)
	}
	if r.Quantity != 1 || r.MaxPrice.Amount != 0 {
		t.Fatalf("defaults: quantity = %d max price = %d", r.Quantity, r.MaxPrice.Amount)
	}
	if r.CreatedAt.Location() != time.UTC || !r.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v", r.CreatedAt)
	}
	if r.AcceptedAt != nil || r.DeliveredAt != nil || r.Rating != nil || r.DeliveryDurationMinutes != nil {
		t.Fatalf("lifecycle fields set on a new request: %+v", r)
	}
}

func TestNewRequest_TrackingIDs(t *testing.T) {
	quotes, cfg := testQuotes(t)
	seen := map[types.ID]bool{}
	for i := 0; i < 200; i++ {
		r, err := NewRequest(validInput(), quotes, cfg, time.Now())
		if err != nil {
			t.Fatalf("NewRequest() error = %v", err)
		}
		for _, c := range r.TrackingID {
			if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
				t.Fatalf("tracking id %q is not upper-case hex", r.TrackingID)
			}
		}
		seen[r.TrackingID] = true
	}
	if len(seen) < 195 {
		t.Fatalf("only %d distinct ids out of 200", len(seen))
	}
}

func TestNewRequest_MissingFields(t *testing.T) {
	quotes, cfg := testQuotes(t)
	zero := 0
	negative := int64(-1)

	tests := []struct {
		name  string
		edit  func(*CreateInput)
		field string
	}{
		{name: "item description", edit: func(in *CreateInput) { in.ItemDescription = "" }, field: "item_description"},
		{name: "blank item description", edit: func(in *CreateInput) { in.ItemDescription = "   " }, field: "item_description"},
		{name: "requester name", edit: func(in *CreateInput) { in.RequesterName = "" }, field: "requester_name"},
		{name: "requester contact", edit: func(in *CreateInput) { in.RequesterContact = " " }, field: "requester_contact"},
		{name: "origin", edit: func(in *CreateInput) { in.Origin = nil }, field: "origin"},
		{name: "origin out of range", edit: func(in *CreateInput) { in.Origin = &types.Point{Lat: 91} }, field: "origin"},
		{name: "shopper base", edit: func(in *CreateInput) { in.PreferredShopperBase = "" }, field: "preferred_shopper_base"},
		{name: "unknown shopper base", edit: func(in *CreateInput) { in.PreferredShopperBase = "Kissy" }, field: "preferred_shopper_base"},
		{name: "zero quantity", edit: func(in *CreateInput) { in.Quantity = &zero }, field: "quantity"},
		{name: "negative max price", edit: func(in *CreateInput) { in.MaxPrice = &negative }, field: "max_price"},
		{name: "delivery time", edit: func(in *CreateInput) { in.RequestedDeliveryTime = "25:99" }, field: "requested_delivery_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := NewRequest(in, quotes, cfg, time.Now())
			if !errors.Is(err, ErrMissingRequiredField) {
				t.Fatalf("NewRequest() error = %v, want ErrMissingRequiredField", err)
			}
			var fe *MissingFieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Fatalf("NewRequest() error = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestNewRequest_BaseLookupIsCaseInsensitive(t *testing.T) {
	quotes, cfg := testQuotes(t)
	in := validInput()
	in.PreferredShopperBase = "  congo cross "
	r, err := NewRequest(in, quotes, cfg, time.Now())
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if r.PreferredShopperBase != "Congo Cross" {
		t.Fatalf("base = %q, want catalog spelling", r.PreferredShopperBase)
	}
}
