package ingest

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// Boundary — гео-фильтр ингеста: сообщения с центроидом вне границ
// пропускаются (например, обрабатываем только свою общину из областного фида).
type Boundary struct {
	polygons []orb.Polygon
}

// LoadBoundary читает GeoJSON-файл границ (Feature, FeatureCollection либо
// голая геометрия; Polygon и MultiPolygon).
func LoadBoundary(path string) (*Boundary, error) {
	const op = "ingest/boundary/LoadBoundary"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b := &Boundary{}

	collect := func(g orb.Geometry) {
		switch geom := g.(type) {
		case orb.Polygon:
			b.polygons = append(b.polygons, geom)
		case orb.MultiPolygon:
			b.polygons = append(b.polygons, geom...)
		}
	}

	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil {
		for _, f := range fc.Features {
			collect(f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(raw); err == nil {
		collect(f.Geometry)
	} else if g, err := geojson.UnmarshalGeometry(raw); err == nil {
		collect(g.Geometry())
	} else {
		return nil, fmt.Errorf("%s: %q is not a GeoJSON boundary", op, path)
	}

	if len(b.polygons) == 0 {
		return nil, fmt.Errorf("%s: no polygons in %q", op, path)
	}

	return b, nil
}

// Contains сообщает, лежит ли точка внутри хотя бы одного полигона границ.
func (b *Boundary) Contains(p models.LatLng) bool {
	pt := orb.Point{p.Lng, p.Lat}

	for _, poly := range b.polygons {
		if planar.PolygonContains(poly, pt) {
			return true
		}
	}

	return false
}
