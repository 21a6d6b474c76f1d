// README: Surcharge configuration presets and quote types.
package pricing

import (
	"strings"

	"campd/internal/types"
)

const (
	PresetStandard = "standard"
	PresetLegacy   = "legacy"

	DefaultRoundingUnit       int64 = 100
	DefaultPlatformFeePercent int64 = 10
)

// Config holds the fee constants for one deployment. Amounts are whole currency units.
type Config struct {
	BaseFee            int64  `json:"base_fee"`
	PerKmFee           int64  `json:"per_km_fee"`
	RoundingUnit       int64  `json:"rounding_unit"`
	MinimumFee         int64  `json:"minimum_fee"` // 0 disables the floor
	PlatformFeePercent int64  `json:"platform_fee_percent"`
	Currency           string `json:"currency"`
}

// Presets are the two fee scales seen in deployed iterations of the app.
func Presets() map[string]Config {
	return map[string]Config{
		PresetStandard: {
			BaseFee:            1000,
			PerKmFee:           500,
			RoundingUnit:       DefaultRoundingUnit,
			PlatformFeePercent: DefaultPlatformFeePercent,
			Currency:           types.DefaultCurrency,
		},
		PresetLegacy: {
			BaseFee:            1,
			PerKmFee:           2,
			RoundingUnit:       DefaultRoundingUnit,
			MinimumFee:         100,
			PlatformFeePercent: DefaultPlatformFeePercent,
			Currency:           types.DefaultCurrency,
		},
	}
}

// Quote is one row of the ranked fee table.
type Quote struct {
	Base       string      `json:"base"`
	Position   types.Point `json:"position"`
	DistanceKm float64     `json:"distance_km"`
	Fee        types.Money `json:"fee"`
}

type Table struct {
	Preset string      `json:"preset"`
	Origin types.Point `json:"origin"`
	Config Config      `json:"config"`
	Quotes []Quote     `json:"quotes"`
}

// Find returns the quote for a base name.
func (t Table) Find(base string) (Quote, bool) {
	return FindQuote(t.Quotes, base)
}

// FindQuote matches base names case-insensitively, ignoring surrounding space.
func FindQuote(quotes []Quote, base string) (Quote, bool) {
	base = strings.TrimSpace(base)
	for _, q := range quotes {
		if strings.EqualFold(q.Base, base) {
			return q, true
		}
	}
	return Quote{}, false
}
