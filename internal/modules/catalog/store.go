// README: Catalog loader; reads campuses and shopper bases from a YAML file.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"campd/internal/types"
)

// Set bundles the two catalogs the engine needs at startup.
type Set struct {
	Campuses     *Catalog
	ShopperBases *Catalog
}

type filePlace struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

type fileLayout struct {
	Campuses     []filePlace `yaml:"campuses"`
	ShopperBases []filePlace `yaml:"shopper_bases"`
}

// Load returns the built-in catalogs when path is empty. A file that omits one of
// the sections keeps the built-in list for that section.
func Load(path string) (Set, error) {
	campuses, bases := DefaultCampuses(), DefaultShopperBases()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Set{}, fmt.Errorf("reading catalog file %s: %w", path, err)
		}
		fc, fb, err := parse(data)
		if err != nil {
			return Set{}, fmt.Errorf("parsing catalog file %s: %w", path, err)
		}
		if fc != nil {
			campuses = fc
		}
		if fb != nil {
			bases = fb
		}
	}

	c, err := New(campuses)
	if err != nil {
		return Set{}, fmt.Errorf("campus catalog: %w", err)
	}
	b, err := New(bases)
	if err != nil {
		return Set{}, fmt.Errorf("shopper base catalog: %w", err)
	}
	return Set{Campuses: c, ShopperBases: b}, nil
}

func parse(data []byte) (campuses, bases []Place, err error) {
	var layout fileLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, nil, err
	}
	return toPlaces(layout.Campuses), toPlaces(layout.ShopperBases), nil
}

func toPlaces(in []filePlace) []Place {
	if len(in) == 0 {
		return nil
	}
	out := make([]Place, len(in))
	for i, p := range in {
		out[i] = Place{Name: p.Name, Position: types.Point{Lat: p.Lat, Lng: p.Lng}}
	}
	return out
}
