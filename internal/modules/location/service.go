// README: Location resolver; campus catalog first, then cached geocoding.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"campd/internal/modules/catalog"
	"campd/internal/types"
)

// countrySuffix narrows geocoder queries the same way requesters describe places.
const countrySuffix = ", Sierra Leone"

var ErrNotFound = errors.New("location not found")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (types.Point, bool, error)
}

type Source string

const (
	SourceCampus   Source = "campus"
	SourceCache    Source = "cache"
	SourceGeocoder Source = "geocoder"
)

type Resolution struct {
	Query    string      `json:"query"`
	Name     string      `json:"name,omitempty"`
	Position types.Point `json:"position"`
	Source   Source      `json:"source"`
}

type Service struct {
	campuses *catalog.Catalog
	geocoder Geocoder
	store    *Store
}

// NewService accepts a nil geocoder (catalog-only resolution) and a nil store (no cache).
func NewService(campuses *catalog.Catalog, geocoder Geocoder, store *Store) *Service {
	return &Service{campuses: campuses, geocoder: geocoder, store: store}
}

func (s *Service) Resolve(ctx context.Context, text string) (Resolution, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return Resolution{}, ErrNotFound
	}
	if p, ok := s.campuses.Lookup(query); ok {
		return Resolution{Query: query, Name: p.Name, Position: p.Position, Source: SourceCampus}, nil
	}
	if s.geocoder == nil {
		return Resolution{}, ErrNotFound
	}

	full := query + countrySuffix
	if s.store != nil {
		pos, ok, err := s.store.GetGeocode(ctx, full)
		if err != nil {
			log.Printf("location: geocode cache read for %q: %v", full, err)
		} else if ok {
			return Resolution{Query: query, Position: pos, Source: SourceCache}, nil
		}
	}

	pos, ok, err := s.geocoder.Geocode(ctx, full)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
	}
	if !ok {
		return Resolution{}, ErrNotFound
	}
	if err := pos.Validate(); err != nil {
		return Resolution{}, ErrNotFound
	}

	if s.store != nil {
		if err := s.store.SetGeocode(ctx, full, pos); err != nil {
			log.Printf("location: geocode cache write for %q: %v", full, err)
		}
	}
	return Resolution{Query: query, Position: pos, Source: SourceGeocoder}, nil
}
