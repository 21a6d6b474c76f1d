// README: Built-in Freetown-area catalogs used when no catalog file is configured.
package catalog

import "campd/internal/types"

func DefaultCampuses() []Place {
	return []Place{
		{Name: "FBC", Position: types.Point{Lat: 8.4840, Lng: -13.2317}},
		{Name: "IPAM", Position: types.Point{Lat: 8.4875, Lng: -13.2344}},
		{Name: "COMAHS", Position: types.Point{Lat: 8.4655, Lng: -13.2689}},
		{Name: "Njala FT", Position: types.Point{Lat: 8.3780, Lng: -13.1665}},
		{Name: "MMTU", Position: types.Point{Lat: 8.4806, Lng: -13.2586}},
		{Name: "Limkokwing", Position: types.Point{Lat: 8.3942, Lng: -13.1510}},
		{Name: "UNIMTECH", Position: types.Point{Lat: 8.4683, Lng: -13.2517}},
		{Name: "IAMTECH", Position: types.Point{Lat: 8.4752, Lng: -13.2498}},
		{Name: "FTC", Position: types.Point{Lat: 8.4870, Lng: -13.2350}},
		{Name: "LICCSAL", Position: types.Point{Lat: 8.4824, Lng: -13.2331}},
		{Name: "IMAT", Position: types.Point{Lat: 8.4872, Lng: -13.2340}},
		{Name: "Bluecrest", Position: types.Point{Lat: 8.4890, Lng: -13.2320}},
		{Name: "UNIMAK", Position: types.Point{Lat: 8.4660, Lng: -13.2675}},
		{Name: "EBKUST", Position: types.Point{Lat: 8.4700, Lng: -13.2600}},
	}
}

func DefaultShopperBases() []Place {
	return []Place{
		{Name: "Lumley", Position: types.Point{Lat: 8.4800, Lng: -13.2890}},
		{Name: "Aberdeen", Position: types.Point{Lat: 8.4900, Lng: -13.2830}},
		{Name: "Congo Cross", Position: types.Point{Lat: 8.4833, Lng: -13.2500}},
		{Name: "Upgun", Position: types.Point{Lat: 8.5060, Lng: -13.2600}},
		{Name: "East End", Position: types.Point{Lat: 8.4700, Lng: -13.2000}},
	}
}
