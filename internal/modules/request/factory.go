// README: Request factory; validates requester input and mints a pending request.
package request

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"campd/internal/modules/pricing"
	"campd/internal/types"
)

const trackingIDLength = 8

type CreateInput struct {
	RequesterName         string       `json:"requester_name" validate:"required"`
	RequesterContact      string       `json:"requester_contact" validate:"required"`
	RequesterFaculty      string       `json:"requester_faculty"`
	RequesterYear         string       `json:"requester_year"`
	Location              string       `json:"location"`
	Origin                *types.Point `json:"origin" validate:"required"`
	ItemDescription       string       `json:"item_description" validate:"required"`
	Quantity              *int         `json:"quantity" validate:"omitempty,min=1"`
	MaxPrice              *int64       `json:"max_price" validate:"omitempty,min=0"`
	RequestedDeliveryTime string       `json:"requested_delivery_time" validate:"omitempty,hhmm"`
	PreferredShopperBase  string       `json:"preferred_shopper_base" validate:"required"`
	PaymentType           string       `json:"payment_type"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

// newTrackingID takes the first eight hex digits of a random UUID.
var newTrackingID = func() types.ID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return types.ID(strings.ToUpper(hex[:trackingIDLength]))
}

// NewRequest builds a pending request. The surcharge is taken from quotes for the
// preferred base and never recomputed afterwards.
func NewRequest(in CreateInput, quotes []pricing.Quote, cfg pricing.Config, now time.Time) (*DeliveryRequest, error) {
	in = trimInput(in)
	if err := validate.Struct(in); err != nil {
		return nil, toFieldError(err)
	}
	if err := in.Origin.Validate(); err != nil {
		return nil, &MissingFieldError{Field: "origin", Reason: err.Error()}
	}
	quote, ok := pricing.FindQuote(quotes, in.PreferredShopperBase)
	if !ok {
		return nil, &MissingFieldError{Field: "preferred_shopper_base", Reason: "not in quote table"}
	}

	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	var maxPrice int64
	if in.MaxPrice != nil {
		maxPrice = *in.MaxPrice
	}
	currency := quote.Fee.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}

	return &DeliveryRequest{
		TrackingID:            newTrackingID(),
		RequesterName:         in.RequesterName,
		RequesterContact:      in.RequesterContact,
		RequesterFaculty:      in.RequesterFaculty,
		RequesterYear:         in.RequesterYear,
		Location:              in.Location,
		Origin:                *in.Origin,
		ItemDescription:       in.ItemDescription,
		Quantity:              quantity,
		MaxPrice:              types.Money{Amount: maxPrice, Currency: currency},
		RequestedDeliveryTime: in.RequestedDeliveryTime,
		PreferredShopperBase:  quote.Base,
		Surcharge:             quote.Fee,
		PlatformFee:           types.Money{Amount: pricing.PlatformFee(quote.Fee.Amount, cfg), Currency: currency},
		AssignedShopper:       Unassigned,
		Status:                StatusPending,
		CreatedAt:             now.UTC(),
		PaymentType:           in.PaymentType,
	}, nil
}

// checkFields validates everything but the origin, which may still need resolving.
func checkFields(in CreateInput) error {
	in = trimInput(in)
	if in.Origin == nil {
		in.Origin = &types.Point{}
	}
	if err := validate.Struct(in); err != nil {
		return toFieldError(err)
	}
	return nil
}

func trimInput(in CreateInput) CreateInput {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.RequesterContact = strings.TrimSpace(in.RequesterContact)
	in.RequesterFaculty = strings.TrimSpace(in.RequesterFaculty)
	in.RequesterYear = strings.TrimSpace(in.RequesterYear)
	in.Location = strings.TrimSpace(in.Location)
	in.ItemDescription = strings.TrimSpace(in.ItemDescription)
	in.RequestedDeliveryTime = strings.TrimSpace(in.RequestedDeliveryTime)
	in.PreferredShopperBase = strings.TrimSpace(in.PreferredShopperBase)
	in.PaymentType = strings.TrimSpace(in.PaymentType)
	return in
}

// toFieldError reports the first failing field.
func toFieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	reason := ""
	if fe.Tag() != "required" {
		reason = "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
	}
	return &MissingFieldError{Field: fe.Field(), Reason: reason}
}
