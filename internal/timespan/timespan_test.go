package timespan

// Тесты валидатора интервалов (internal/timespan/timespan.go).
//
// Проверяем:
//  - строгий разбор DD.MM.YYYY HH:MM: round-trip и отсев малоформатных строк;
//  - правдоподобие дат относительно времени краулинга;
//  - правила схлопывания структурированных источников;
//  - фильтр актуальности: пересечение с now и окно для сообщений без интервалов.

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/velinovaa/go-alerts-aggregator/internal/models"
)

var sofia = mustLocation("Europe/Sofia")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestParse_RoundTrip(t *testing.T) {
	valid := []string{
		"01.01.2024 08:00",
		"31.12.2025 23:59",
		"29.02.2024 12:30", // високосный год
		"15.06.2025 00:00",
	}

	for _, s := range valid {
		parsed, err := Parse(s, sofia)
		require.NoError(t, err, s)
		require.Equal(t, s, Format(parsed, sofia), s)

		// parse -> format -> parse даёт тот же момент.
		again, err := Parse(Format(parsed, sofia), sofia)
		require.NoError(t, err)
		require.True(t, parsed.Equal(again))
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	malformed := []string{
		"",
		"утре",
		"2024-01-01 08:00",   // не тот формат
		"1.1.2024 8:00",      // без нулей
		"32.01.2024 08:00",   // несуществующий день
		"29.02.2023 08:00",   // не високосный год
		"01.01.2024",         // без времени
		"01.01.2024 08:00:00", // с секундами
		"01.01.24 08:00",     // двухзначный год
	}

	for _, s := range malformed {
		_, err := Parse(s, sofia)
		require.Error(t, err, "%q must not parse", s)
	}
}

func TestPlausible(t *testing.T) {
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, Plausible(ref, ref))
	require.True(t, Plausible(ref.AddDate(0, -6, 0), ref))
	require.True(t, Plausible(ref.AddDate(1, 6, 0), ref))
	require.False(t, Plausible(ref.AddDate(-2, 0, 0), ref), "два года назад — неправдоподобно")
	require.False(t, Plausible(ref.AddDate(3, 0, 0), ref), "три года вперёд — неправдоподобно")
	require.False(t, Plausible(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), ref))
}

func TestCollapseStructured(t *testing.T) {
	ref := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastUpdate := time.Date(2025, 5, 30, 10, 15, 0, 0, sofia)

	t.Run("обе правдоподобны — без изменений", func(t *testing.T) {
		in := models.Timespan{Start: "01.06.2025 08:00", End: "01.06.2025 18:00"}
		require.Equal(t, in, CollapseStructured(in, ref, lastUpdate, sofia))
	})

	t.Run("правдоподобен только старт", func(t *testing.T) {
		in := models.Timespan{Start: "01.06.2025 08:00", End: "01.06.1999 18:00"}
		out := CollapseStructured(in, ref, lastUpdate, sofia)
		require.Equal(t, models.Timespan{Start: "01.06.2025 08:00", End: "01.06.2025 08:00"}, out)
	})

	t.Run("правдоподобен только конец", func(t *testing.T) {
		in := models.Timespan{Start: "мусор", End: "01.06.2025 18:00"}
		out := CollapseStructured(in, ref, lastUpdate, sofia)
		require.Equal(t, models.Timespan{Start: "01.06.2025 18:00", End: "01.06.2025 18:00"}, out)
	})

	t.Run("ни одной — время последнего обновления источника", func(t *testing.T) {
		in := models.Timespan{Start: "01.06.1999 08:00", End: "мусор"}
		out := CollapseStructured(in, ref, lastUpdate, sofia)
		require.Equal(t, models.Timespan{Start: "30.05.2025 10:15", End: "30.05.2025 10:15"}, out)
	})
}

func TestEnvelope(t *testing.T) {
	msg := &models.Message{
		Pins: []models.Pin{{
			Address: "ул. Раковски 100",
			Timespans: []models.Timespan{
				{Start: "02.06.2025 08:00", End: "02.06.2025 18:00"},
			},
		}},
		Streets: []models.StreetSection{{
			Street: "ул. Оборище",
			Timespans: []models.Timespan{
				{Start: "01.06.2025 07:00", End: "03.06.2025 20:00"},
				{Start: "мусор", End: "04.06.2025 10:00"},
			},
		}},
	}

	start, end := Envelope(msg, sofia)
	require.NotNil(t, start)
	require.NotNil(t, end)
	require.Equal(t, "01.06.2025 07:00", Format(*start, sofia))
	require.Equal(t, "04.06.2025 10:00", Format(*end, sofia))
}

func TestEnvelope_Empty(t *testing.T) {
	start, end := Envelope(&models.Message{}, sofia)
	require.Nil(t, start)
	require.Nil(t, end)
}

func TestIsCurrent_SpanOverlap(t *testing.T) {
	window := 7 * 24 * time.Hour

	// Прошедший интервал: не актуально на 2025-12-19, сколь угодно свежая финализация.
	past := &models.Message{
		FinalizedAt: time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC),
		Pins: []models.Pin{{
			Timespans: []models.Timespan{{Start: "01.01.2024 08:00", End: "01.01.2024 18:00"}},
		}},
	}
	now := time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC)
	require.False(t, IsCurrent(past, now, window, sofia))

	// Пересекающий now интервал — актуально.
	active := &models.Message{
		FinalizedAt: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Streets: []models.StreetSection{{
			Timespans: []models.Timespan{{Start: "18.12.2025 08:00", End: "20.12.2025 18:00"}},
		}},
	}
	require.True(t, IsCurrent(active, now, window, sofia))
}

func TestIsCurrent_NoSpansWindow(t *testing.T) {
	window := 7 * 24 * time.Hour
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	fresh := &models.Message{FinalizedAt: now.Add(-6 * 24 * time.Hour)}
	require.True(t, IsCurrent(fresh, now, window, sofia))

	// Ровно на границе окна — уже архив.
	boundary := &models.Message{FinalizedAt: now.Add(-7 * 24 * time.Hour)}
	require.False(t, IsCurrent(boundary, now, window, sofia))

	old := &models.Message{FinalizedAt: now.Add(-8 * 24 * time.Hour)}
	require.False(t, IsCurrent(old, now, window, sofia))
}

func TestIsCurrent_OnlyMalformedSpans(t *testing.T) {
	// Интервалы есть, но все невалидны — ведём себя как "без интервалов".
	window := 7 * 24 * time.Hour
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	msg := &models.Message{
		FinalizedAt: now.Add(-24 * time.Hour),
		Pins: []models.Pin{{
			Timespans: []models.Timespan{{Start: "мусор", End: "тоже мусор"}},
		}},
	}
	require.True(t, IsCurrent(msg, now, window, sofia))
}
