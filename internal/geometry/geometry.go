// geometry синтезирует GeoJSON-геометрию сообщений: точки для адресов,
// буферизованные полигоны для уличных участков, passthrough для готовой
// геометрии структурированных источников, центроиды для позиционирования
// карты и фолбэка матчера нотификаций.
//
// Формат на выходе: Feature/FeatureCollection, типы Point/LineString/Polygon,
// порядок координат [lng, lat], округление до 6 знаков.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// метров в одном градусе широты (WGS84, достаточное приближение для буферов
// в десятки метров).
const metersPerDegree = 111320.0

// минимальное расстояние между концами, ниже которого участок вырождается
// в точку (градусы, ~0.1 мм).
const degenerateEps = 1e-9

// Round6 округляет координату до 6 знаков после запятой — точность хранения
// и сравнения всех координат.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func roundPoint(p orb.Point) orb.Point {
	return orb.Point{Round6(p[0]), Round6(p[1])}
}

// PinFeature строит Point-фичу для разрешённого адреса.
func PinFeature(addr models.Address) *geojson.Feature {
	f := geojson.NewFeature(roundPoint(orb.Point{addr.Coordinates.Lng, addr.Coordinates.Lat}))
	f.Properties["originalText"] = addr.OriginalText
	f.Properties["formattedAddress"] = addr.FormattedAddress

	return f
}

// StreetFeature строит фичу уличного участка: буферизованный полигон вдоль
// пути path (прямая между двумя концами или полилиния маршрутного бэкенда).
// Вырожденный путь (одна точка, совпадающие концы) даёт Point-фичу.
func StreetFeature(section models.StreetSection, path []models.LatLng, bufferMeters float64) (*geojson.Feature, error) {
	const op = "geometry/geometry/StreetFeature"

	line := make(orb.LineString, 0, len(path))
	for _, ll := range path {
		p := orb.Point{ll.Lng, ll.Lat}
		// схлопываем подряд идущие дубликаты
		if n := len(line); n > 0 && pointsClose(line[n-1], p) {
			continue
		}
		line = append(line, p)
	}

	if len(line) == 0 {
		return nil, fmt.Errorf("%s: empty path for street %q", op, section.Street)
	}

	var f *geojson.Feature
	if len(line) == 1 {
		f = geojson.NewFeature(roundPoint(line[0]))
	} else {
		poly := bufferLine(line, bufferMeters)
		f = geojson.NewFeature(roundPolygon(poly))
	}

	f.Properties["street"] = section.Street
	f.Properties["from"] = section.From
	f.Properties["to"] = section.To

	return f, nil
}

// Passthrough валидирует готовую геометрию источника и возвращает её фичи
// без изменений (принимается Feature либо FeatureCollection).
func Passthrough(raw json.RawMessage) ([]*geojson.Feature, error) {
	const op = "geometry/geometry/Passthrough"

	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil {
		return fc.Features, nil
	}

	f, err := geojson.UnmarshalFeature(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: neither Feature nor FeatureCollection: %w", op, err)
	}

	return []*geojson.Feature{f}, nil
}

// Centroid — арифметическое среднее центроидов всех фич коллекции.
// Центроид фичи: Point — сама точка; LineString/Polygon — среднее
// составляющих координат (внешнее кольцо без замыкающего дубликата).
// Второе значение false, когда коллекция пуста или не содержит координат.
func Centroid(fc *geojson.FeatureCollection) (models.LatLng, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return models.LatLng{}, false
	}

	var sum orb.Point
	var n int

	for _, f := range fc.Features {
		c, ok := featureCentroid(f.Geometry)
		if !ok {
			continue
		}

		sum[0] += c[0]
		sum[1] += c[1]
		n++
	}

	if n == 0 {
		return models.LatLng{}, false
	}

	return models.LatLng{
		Lat: Round6(sum[1] / float64(n)),
		Lng: Round6(sum[0] / float64(n)),
	}, true
}

func featureCentroid(g orb.Geometry) (orb.Point, bool) {
	switch geom := g.(type) {
	case orb.Point:
		return geom, true
	case orb.LineString:
		return meanOfPoints(geom)
	case orb.Polygon:
		if len(geom) == 0 {
			return orb.Point{}, false
		}
		return meanOfPoints(ringWithoutClosing(geom[0]))
	default:
		return orb.Point{}, false
	}
}

func ringWithoutClosing(r orb.Ring) []orb.Point {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}

	return r
}

func meanOfPoints(pts []orb.Point) (orb.Point, bool) {
	if len(pts) == 0 {
		return orb.Point{}, false
	}

	var sum orb.Point
	for _, p := range pts {
		sum[0] += p[0]
		sum[1] += p[1]
	}

	return orb.Point{sum[0] / float64(len(pts)), sum[1] / float64(len(pts))}, true
}

// bufferLine расширяет полилинию на width метров в обе стороны и замыкает
// кольцо: левые смещения по ходу линии, затем правые в обратном порядке.
//
// Контракты:
//   - кольцо не самопересекается независимо от направления обхода линии
//     (прямой и обратный порядок концов дают равную площадь);
//   - внешнее кольцо всегда против часовой стрелки.
//
// Смещения считаются в локальной планарной проекции (эквидистантная
// цилиндрическая вокруг средней широты линии) через усреднённые нормали
// соседних сегментов.
func bufferLine(line orb.LineString, width float64) orb.Polygon {
	// локальный масштаб долготы
	var meanLat float64
	for _, p := range line {
		meanLat += p[1]
	}
	meanLat /= float64(len(line))
	lngScale := math.Cos(meanLat * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01
	}

	// планарные координаты в метрах
	plan := make([]orb.Point, len(line))
	for i, p := range line {
		plan[i] = orb.Point{p[0] * metersPerDegree * lngScale, p[1] * metersPerDegree}
	}

	// единичные нормали сегментов (влево от направления движения)
	segNormals := make([]orb.Point, len(plan)-1)
	for i := 0; i < len(plan)-1; i++ {
		dx := plan[i+1][0] - plan[i][0]
		dy := plan[i+1][1] - plan[i][1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			segNormals[i] = orb.Point{0, 0}
			continue
		}
		segNormals[i] = orb.Point{-dy / length, dx / length}
	}

	// нормаль вершины — нормированная сумма нормалей смежных сегментов
	offset := func(i int) orb.Point {
		var n orb.Point
		switch {
		case i == 0:
			n = segNormals[0]
		case i == len(plan)-1:
			n = segNormals[len(segNormals)-1]
		default:
			n = orb.Point{segNormals[i-1][0] + segNormals[i][0], segNormals[i-1][1] + segNormals[i][1]}
		}

		length := math.Hypot(n[0], n[1])
		if length == 0 {
			// разворот на 180°: берём нормаль входящего сегмента
			n = segNormals[i-1]
			length = math.Hypot(n[0], n[1])
			if length == 0 {
				return orb.Point{0, 0}
			}
		}

		return orb.Point{n[0] / length * width, n[1] / length * width}
	}

	left := make([]orb.Point, len(plan))
	right := make([]orb.Point, len(plan))
	for i, p := range plan {
		o := offset(i)
		left[i] = orb.Point{p[0] + o[0], p[1] + o[1]}
		right[i] = orb.Point{p[0] - o[0], p[1] - o[1]}
	}

	ring := make(orb.Ring, 0, 2*len(plan)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, ring[0])

	// на шпильке (разворот круче ширины буфера) внутренние смещения
	// пересекают противоположную сторону; такое кольцо заменяем выпуклой
	// оболочкой смещённых точек — покрытие не уже буфера, кольцо без
	// самопересечений
	if ringCrossesItself(ring) {
		pts := make([]orb.Point, 0, 2*len(plan))
		pts = append(pts, left...)
		pts = append(pts, right...)
		if hull := convexHull(pts); len(hull) >= 3 {
			ring = append(orb.Ring{}, hull...)
			ring = append(ring, ring[0])
		}
	}

	// обратно в географические координаты
	for i, p := range ring {
		ring[i] = orb.Point{p[0] / (metersPerDegree * lngScale), p[1] / metersPerDegree}
	}

	// единый порядок обхода внешнего кольца: против часовой стрелки
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}

	return orb.Polygon{ring}
}

// segmentsCross — строгое пересечение внутренностей отрезков [p1,p2] и [p3,p4].
func segmentsCross(p1, p2, p3, p4 orb.Point) bool {
	d := func(a, b, c orb.Point) float64 {
		return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	}

	d1 := d(p3, p4, p1)
	d2 := d(p3, p4, p2)
	d3 := d(p1, p2, p3)
	d4 := d(p1, p2, p4)

	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// ringCrossesItself перебирает несмежные пары сегментов замкнутого кольца.
func ringCrossesItself(r orb.Ring) bool {
	n := len(r) - 1
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsCross(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}

	return false
}

// convexHull строит выпуклую оболочку точек (monotone chain).
// Возвращает незамкнутое кольцо в порядке против часовой стрелки;
// коллинеарный набор даёт меньше трёх точек.
func convexHull(pts []orb.Point) orb.Ring {
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	var lower orb.Ring
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper orb.Ring
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func roundPolygon(poly orb.Polygon) orb.Polygon {
	for _, ring := range poly {
		for i, p := range ring {
			ring[i] = roundPoint(p)
		}
	}

	return poly
}

func pointsClose(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < degenerateEps && math.Abs(a[1]-b[1]) < degenerateEps
}
