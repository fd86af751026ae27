// timespan реализует строгий разбор и санитарную проверку интервалов действия
// формата DD.MM.YYYY HH:MM, а также правила актуальности сообщений.
package timespan

import (
	"fmt"
	"time"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

// Layout — единственный принимаемый формат даты-времени.
const Layout = "02.01.2006 15:04"

// Границы правдоподобия разобранной даты относительно времени краулинга.
// Отсекаем явно неверные годы (опечатки источника, мусор извлечения).
const (
	plausibleBefore = 365 * 24 * time.Hour     // год назад
	plausibleAfter  = 2 * 365 * 24 * time.Hour // два года вперёд
)

// Parse строго разбирает строку формата DD.MM.YYYY HH:MM в указанной локации.
// Неполные и ненулепадированные формы ("1.1.2024 8:00") отвергаются:
// time.Parse такие принимает, поэтому дополнительно сверяем обратное
// форматирование. Малоформатные строки — ошибка, никогда не "починенная" дата.
func Parse(s string, loc *time.Location) (time.Time, error) {
	const op = "timespan/timespan/Parse"

	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if t.Format(Layout) != s {
		return time.Time{}, fmt.Errorf("%s: %q is not strictly %s", op, s, Layout)
	}

	return t, nil
}

// Format возвращает каноничное строковое представление в указанной локации.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}

// Plausible сообщает, попадает ли дата в допустимое окно вокруг опорного
// времени (обычно времени краулинга).
func Plausible(t, ref time.Time) bool {
	if t.Before(ref.Add(-plausibleBefore)) {
		return false
	}

	return !t.After(ref.Add(plausibleAfter))
}

// CollapseStructured применяет правила структурированных источников (ArcGIS):
//   - обе границы правдоподобны — интервал остаётся как есть;
//   - правдоподобна ровно одна — обе схлопываются в неё;
//   - ни одной — обе схлопываются во время последнего обновления источника.
func CollapseStructured(span models.Timespan, ref, lastUpdate time.Time, loc *time.Location) models.Timespan {
	start, startErr := Parse(span.Start, loc)
	end, endErr := Parse(span.End, loc)

	startOK := startErr == nil && Plausible(start, ref)
	endOK := endErr == nil && Plausible(end, ref)

	switch {
	case startOK && endOK:
		return span
	case startOK:
		return models.Timespan{Start: span.Start, End: span.Start}
	case endOK:
		return models.Timespan{Start: span.End, End: span.End}
	default:
		fallback := Format(lastUpdate, loc)
		return models.Timespan{Start: fallback, End: fallback}
	}
}

// Envelope вычисляет огибающую (минимальный старт, максимальный конец) всех
// валидных интервалов сообщения. Невалидные строки пропускаются.
func Envelope(msg *models.Message, loc *time.Location) (start, end *time.Time) {
	consider := func(span models.Timespan) {
		if s, err := Parse(span.Start, loc); err == nil {
			if start == nil || s.Before(*start) {
				t := s
				start = &t
			}
		}

		if e, err := Parse(span.End, loc); err == nil {
			if end == nil || e.After(*end) {
				t := e
				end = &t
			}
		}
	}

	for _, pin := range msg.Pins {
		for _, span := range pin.Timespans {
			consider(span)
		}
	}

	for _, street := range msg.Streets {
		for _, span := range street.Timespans {
			consider(span)
		}
	}

	return start, end
}

// overlapsNow сообщает, пересекает ли интервал момент now.
// Отсутствующая (невалидная) граница считается открытой с той стороны,
// но интервал без единой валидной границы ничего не даёт.
func overlapsNow(span models.Timespan, now time.Time, loc *time.Location) bool {
	start, startErr := Parse(span.Start, loc)
	end, endErr := Parse(span.End, loc)

	if startErr != nil && endErr != nil {
		return false
	}

	if startErr == nil && now.Before(start) {
		return false
	}

	if endErr == nil && now.After(end) {
		return false
	}

	return true
}

// IsCurrent — фильтр актуальности уровня сообщения.
//
// Сообщение актуально, если ЛЮБОЙ из интервалов его pins/streets пересекает
// now. Сообщение совсем без валидных интервалов актуально, пока возраст с
// момента финализации строго меньше окна window (ровно window — уже архив).
func IsCurrent(msg *models.Message, now time.Time, window time.Duration, loc *time.Location) bool {
	hasSpan := false

	check := func(spans []models.Timespan) bool {
		for _, span := range spans {
			if _, err := Parse(span.Start, loc); err == nil {
				hasSpan = true
			} else if _, err := Parse(span.End, loc); err == nil {
				hasSpan = true
			}

			if overlapsNow(span, now, loc) {
				return true
			}
		}

		return false
	}

	for _, pin := range msg.Pins {
		if check(pin.Timespans) {
			return true
		}
	}

	for _, street := range msg.Streets {
		if check(street.Timespans) {
			return true
		}
	}

	if hasSpan {
		return false
	}

	return now.Sub(msg.FinalizedAt) < window
}
