// README: Pricing store backed by PostgreSQL (preset overrides).
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPresetNotFound = errors.New("pricing preset not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetPreset(ctx context.Context, name string) (Config, error) {
	row := s.db.QueryRow(ctx, `
		SELECT base_fee, per_km_fee, rounding_unit, minimum_fee, platform_fee_percent, currency
		FROM surcharge_presets
		WHERE name = $1`, name,
	)
	var c Config
	err := row.Scan(&c.BaseFee, &c.PerKmFee, &c.RoundingUnit, &c.MinimumFee, &c.PlatformFeePercent, &c.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrPresetNotFound
	}
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func (s *Store) UpsertPreset(ctx context.Context, name string, c Config) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO surcharge_presets (
			name, base_fee, per_km_fee, rounding_unit, minimum_fee, platform_fee_percent, currency
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			base_fee = EXCLUDED.base_fee,
			per_km_fee = EXCLUDED.per_km_fee,
			rounding_unit = EXCLUDED.rounding_unit,
			minimum_fee = EXCLUDED.minimum_fee,
			platform_fee_percent = EXCLUDED.platform_fee_percent,
			currency = EXCLUDED.currency`,
		name, c.BaseFee, c.PerKmFee, c.RoundingUnit, c.MinimumFee, c.PlatformFeePercent, c.Currency,
	)
	return err
}
