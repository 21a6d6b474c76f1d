package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"campd/internal/modules/catalog"
	"campd/internal/modules/location"
	"campd/internal/types"
)

var ErrInvalidConfiguration = errors.New("invalid pricing configuration")

func (c Config) Validate() error {
	switch {
	case c.BaseFee <= 0:
		return fmt.Errorf("%w: base fee must be positive", ErrInvalidConfiguration)
	case c.PerKmFee <= 0:
		return fmt.Errorf("%w: per-km fee must be positive", ErrInvalidConfiguration)
	case c.RoundingUnit <= 0:
		return fmt.Errorf("%w: rounding unit must be positive", ErrInvalidConfiguration)
	case c.MinimumFee < 0:
		return fmt.Errorf("%w: minimum fee must not be negative", ErrInvalidConfiguration)
	case c.PlatformFeePercent < 0 || c.PlatformFeePercent > 100:
		return fmt.Errorf("%w: platform fee percent must be within 0..100", ErrInvalidConfiguration)
	}
	return nil
}

// QuoteSurcharges prices every base in catalog order and returns the table sorted by
// fee ascending. Equal fees keep catalog order.
func QuoteSurcharges(origin types.Point, bases *catalog.Catalog, cfg Config) ([]Quote, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bases.Len() == 0 {
		return nil, fmt.Errorf("%w: no shopper bases", ErrInvalidConfiguration)
	}

	currency := cfg.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}

	places := bases.Places()
	quotes := make([]Quote, 0, len(places))
	for _, p := range places {
		km := location.DistanceKm(origin, p.Position)
		quotes = append(quotes, Quote{
			Base:       p.Name,
			Position:   p.Position,
			DistanceKm: km,
			Fee:        types.Money{Amount: FeeForDistance(km, cfg), Currency: currency},
		})
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Fee.Amount < quotes[j].Fee.Amount
	})
	return quotes, nil
}

// FeeForDistance applies base + per_km × km, rounds up to the configured unit and
// applies the minimum floor. cfg must already be valid.
func FeeForDistance(km float64, cfg Config) int64 {
	if km < 0 {
		km = 0
	}
	raw := decimal.NewFromInt(cfg.BaseFee).
		Add(decimal.NewFromInt(cfg.PerKmFee).Mul(decimal.NewFromFloat(km)))
	// ceil(x/u) == ceil(ceil(x)/u) for a positive integer u, so the division stays integral.
	fee := RoundUpToUnit(raw.Ceil().IntPart(), cfg.RoundingUnit)
	if cfg.MinimumFee > 0 && fee < cfg.MinimumFee {
		fee = RoundUpToUnit(cfg.MinimumFee, cfg.RoundingUnit)
	}
	return fee
}

// RoundUpToUnit rounds a non-negative amount up to the next multiple of unit.
// Exact multiples are returned unchanged.
func RoundUpToUnit(x, unit int64) int64 {
	if unit <= 0 || x <= 0 {
		return max(x, 0)
	}
	return (x + unit - 1) / unit * unit
}

// PlatformFee is floor(surcharge × percent / 100).
func PlatformFee(surcharge int64, cfg Config) int64 {
	if surcharge <= 0 || cfg.PlatformFeePercent <= 0 {
		return 0
	}
	return surcharge * cfg.PlatformFeePercent / 100
}
