// README: Preset store tests; skipped unless CAMPD_TEST_DSN is set.
package pricing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"campd/internal/modules/catalog"
	"campd/internal/types"
)

func setupPresetStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("CAMPD_TEST_DSN")
	if dsn == "" {
		t.Skip("CAMPD_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS surcharge_presets (
			name                 TEXT PRIMARY KEY,
			base_fee             BIGINT NOT NULL CHECK (base_fee >= 0),
			per_km_fee           BIGINT NOT NULL CHECK (per_km_fee >= 0),
			rounding_unit        BIGINT NOT NULL CHECK (rounding_unit > 0),
			minimum_fee          BIGINT NOT NULL DEFAULT 0,
			platform_fee_percent BIGINT NOT NULL DEFAULT 10,
			currency             TEXT NOT NULL DEFAULT 'SLE'
		)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE surcharge_presets"); err != nil {
		t.Fatalf("truncate table: %v", err)
	}
	return NewStore(db)
}

func TestStore_UpsertPreset(t *testing.T) {
	ctx := context.Background()
	store := setupPresetStore(t)

	if _, err := store.GetPreset(ctx, "campus"); !errors.Is(err, ErrPresetNotFound) {
		t.Fatalf("GetPreset() on empty table error = %v, want ErrPresetNotFound", err)
	}

	cfg := Config{BaseFee: 800, PerKmFee: 400, RoundingUnit: 100, PlatformFeePercent: 5, Currency: types.DefaultCurrency}
	if err := store.UpsertPreset(ctx, "campus", cfg); err != nil {
		t.Fatalf("UpsertPreset() error = %v", err)
	}
	cfg.PerKmFee = 450
	if err := store.UpsertPreset(ctx, "campus", cfg); err != nil {
		t.Fatalf("UpsertPreset() overwrite error = %v", err)
	}
	got, err := store.GetPreset(ctx, "campus")
	if err != nil {
		t.Fatalf("GetPreset() error = %v", err)
	}
	if got != cfg {
		t.Errorf("GetPreset() = %+v, want %+v", got, cfg)
	}
}

func TestService_SeedPresets(t *testing.T) {
	ctx := context.Background()
	store := setupPresetStore(t)
	bases, err := catalog.New(catalog.DefaultShopperBases())
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	override := Presets()[PresetStandard]
	override.BaseFee = 1500
	if err := store.UpsertPreset(ctx, PresetStandard, override); err != nil {
		t.Fatalf("UpsertPreset() error = %v", err)
	}

	svc := NewService(store, bases, "")
	seeded, err := svc.SeedPresets(ctx)
	if err != nil {
		t.Fatalf("SeedPresets() error = %v", err)
	}
	if len(seeded) != 1 || seeded[0] != PresetLegacy {
		t.Fatalf("SeedPresets() = %v, want [%s]", seeded, PresetLegacy)
	}

	_, cfg, err := svc.Config(ctx, PresetStandard)
	if err != nil || cfg.BaseFee != 1500 {
		t.Fatalf("stored override lost: %+v, %v", cfg, err)
	}
	if again, err := svc.SeedPresets(ctx); err != nil || len(again) != 0 {
		t.Fatalf("second SeedPresets() = %v, %v; want nothing", again, err)
	}
}

func TestService_SeedPresetsWithoutStore(t *testing.T) {
	svc := NewService(nil, mustCatalog(t, catalog.DefaultShopperBases()), "")
	seeded, err := svc.SeedPresets(context.Background())
	if err != nil || seeded != nil {
		t.Fatalf("SeedPresets() = %v, %v; want nil, nil", seeded, err)
	}
}
