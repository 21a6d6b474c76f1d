// README: Pricing service resolves presets and quotes the shopper-base catalog.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"campd/internal/modules/catalog"
	"campd/internal/types"
)

type Service struct {
	store         *Store
	bases         *catalog.Catalog
	presets       map[string]Config
	defaultPreset string
}

// NewService uses built-in presets; store may be nil, in which case no database
// overrides are consulted.
func NewService(store *Store, bases *catalog.Catalog, defaultPreset string) *Service {
	if defaultPreset == "" {
		defaultPreset = PresetStandard
	}
	return &Service{
		store:         store,
		bases:         bases,
		presets:       Presets(),
		defaultPreset: defaultPreset,
	}
}

// SeedPresets writes every built-in preset the store does not have yet. Stored
// overrides are left alone. It returns the names written.
func (s *Service) SeedPresets(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	var seeded []string
	for _, name := range sortedPresetNames(s.presets) {
		_, err := s.store.GetPreset(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrPresetNotFound) {
			return seeded, fmt.Errorf("reading preset %q: %w", name, err)
		}
		if err := s.store.UpsertPreset(ctx, name, s.presets[name]); err != nil {
			return seeded, fmt.Errorf("seeding preset %q: %w", name, err)
		}
		seeded = append(seeded, name)
	}
	return seeded, nil
}

func sortedPresetNames(m map[string]Config) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the named preset, preferring a stored override.
func (s *Service) Config(ctx context.Context, preset string) (string, Config, error) {
	if preset == "" {
		preset = s.defaultPreset
	}
	if s.store != nil {
		cfg, err := s.store.GetPreset(ctx, preset)
		switch {
		case err == nil:
			return preset, cfg, cfg.Validate()
		case !errors.Is(err, ErrPresetNotFound):
			return "", Config{}, fmt.Errorf("%w: loading preset %q: %v", types.ErrUpstreamUnavailable, preset, err)
		}
	}
	cfg, ok := s.presets[preset]
	if !ok {
		return "", Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfiguration, preset)
	}
	return preset, cfg, nil
}

func (s *Service) Quote(ctx context.Context, origin types.Point, preset string) (Table, error) {
	if err := origin.Validate(); err != nil {
		return Table{}, err
	}
	name, cfg, err := s.Config(ctx, preset)
	if err != nil {
		return Table{}, err
	}
	quotes, err := QuoteSurcharges(origin, s.bases, cfg)
	if err != nil {
		return Table{}, err
	}
	return Table{Preset: name, Origin: origin, Config: cfg, Quotes: quotes}, nil
}
