// README: Static place catalogs (campuses and shopper bases), immutable after load.
package catalog

import (
	"strings"

	"campd/internal/types"
)

type Place struct {
	Name     string      `json:"name" yaml:"name"`
	Position types.Point `json:"position" yaml:"-"`
}

// Catalog keeps places in load order; that order breaks fee ties when quoting.
type Catalog struct {
	places []Place
	index  map[string]int
}

func New(places []Place) (*Catalog, error) {
	c := &Catalog{
		places: make([]Place, 0, len(places)),
		index:  make(map[string]int, len(places)),
	}
	for _, p := range places {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		if err := p.Position.Validate(); err != nil {
			return nil, &PlaceError{Name: name, Err: err}
		}
		key := normalize(name)
		if _, dup := c.index[key]; dup {
			return nil, &PlaceError{Name: name, Err: ErrDuplicatePlace}
		}
		c.index[key] = len(c.places)
		c.places = append(c.places, Place{Name: name, Position: p.Position})
	}
	return c, nil
}

// Lookup matches names case-insensitively and ignores surrounding whitespace.
func (c *Catalog) Lookup(name string) (Place, bool) {
	if c == nil {
		return Place{}, false
	}
	i, ok := c.index[normalize(name)]
	if !ok {
		return Place{}, false
	}
	return c.places[i], true
}

func (c *Catalog) Places() []Place {
	if c == nil {
		return nil
	}
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out
}

func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.places))
	for i, p := range c.places {
		out[i] = p.Name
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.places)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
