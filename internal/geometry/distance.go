package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// NearestDistance возвращает расстояние (метры) от точки center до ближайшей
// точки геометрии коллекции. Точка внутри полигона даёт 0. Второе значение
// false, когда коллекция не содержит пригодной геометрии — вызывающий обязан
// использовать фолбэк на центроид.
func NearestDistance(fc *geojson.FeatureCollection, center models.LatLng) (float64, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return 0, false
	}

	cp := orb.Point{center.Lng, center.Lat}
	best := math.Inf(1)
	found := false

	for _, f := range fc.Features {
		d, ok := distanceToGeometry(cp, f.Geometry)
		if !ok {
			continue
		}

		found = true
		if d < best {
			best = d
		}
	}

	if !found {
		return 0, false
	}

	return best, true
}

// DistanceBetween — большое круговое расстояние между двумя координатами, метры.
func DistanceBetween(a, b models.LatLng) float64 {
	return geo.DistanceHaversine(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat})
}

func distanceToGeometry(center orb.Point, g orb.Geometry) (float64, bool) {
	switch geom := g.(type) {
	case orb.Point:
		return geo.DistanceHaversine(center, geom), true
	case orb.LineString:
		if len(geom) == 0 {
			return 0, false
		}
		return minSegmentDistance(center, geom), true
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return 0, false
		}
		if planar.PolygonContains(geom, center) {
			return 0, true
		}
		return minSegmentDistance(center, []orb.Point(geom[0])), true
	default:
		return 0, false
	}
}

// minSegmentDistance — минимум точных планарных расстояний точка-отрезок в
// локальной метрической проекции вокруг center (для расстояний городского
// масштаба расхождение со сферическим счётом пренебрежимо).
func minSegmentDistance(center orb.Point, pts []orb.Point) float64 {
	lngScale := math.Cos(center[1] * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01
	}

	project := func(p orb.Point) orb.Point {
		return orb.Point{
			(p[0] - center[0]) * metersPerDegree * lngScale,
			(p[1] - center[1]) * metersPerDegree,
		}
	}

	origin := orb.Point{0, 0}
	best := math.Inf(1)

	if len(pts) == 1 {
		return geo.DistanceHaversine(center, pts[0])
	}

	for i := 0; i < len(pts)-1; i++ {
		a := project(pts[i])
		b := project(pts[i+1])
		if d := pointSegmentDistance(origin, a, b); d < best {
			best = d
		}
	}

	return best
}

func pointSegmentDistance(p, a, b orb.Point) float64 {
	abx := b[0] - a[0]
	aby := b[1] - a[1]

	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}

	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return math.Hypot(p[0]-(a[0]+t*abx), p[1]-(a[1]+t*aby))
}
