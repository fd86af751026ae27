package models

import (
	"encoding/json"
	"time"
)

// LatLng — географическая координата (широта/долгота, WGS84).
type LatLng struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Timespan — интервал действия в исходной строковой форме DD.MM.YYYY HH:MM.
// Пустая строка означает отсутствие границы.
type Timespan struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// Address — результат геокодирования свободного текста.
type Address struct {
	// OriginalText — исходная строка, переданная геокодеру.
	OriginalText string `bson:"original_text" json:"originalText"`
	// FormattedAddress — нормализованный адрес провайдера.
	FormattedAddress string `bson:"formatted_address" json:"formattedAddress"`
	// Coordinates — разрешённая координата.
	Coordinates LatLng `bson:"coordinates" json:"coordinates"`
}

// Pin — точечная локация объявления со своими интервалами действия.
type Pin struct {
	Address   string     `bson:"address" json:"address"`
	Resolved  *Address   `bson:"resolved,omitempty" json:"resolved,omitempty"`
	Timespans []Timespan `bson:"timespans,omitempty" json:"timespans,omitempty"`
}

// StreetSection — участок улицы, ограниченный двумя пересечениями.
type StreetSection struct {
	// Street — имя улицы, к которой относится участок.
	Street string `bson:"street" json:"street"`
	// From/To — ограничивающие пересечения (имена улиц).
	From string `bson:"from" json:"from"`
	To   string `bson:"to" json:"to"`
	// FromCoords/ToCoords — координаты концов, если уже разрешены.
	FromCoords *LatLng    `bson:"from_coords,omitempty" json:"fromCoords,omitempty"`
	ToCoords   *LatLng    `bson:"to_coords,omitempty" json:"toCoords,omitempty"`
	Timespans  []Timespan `bson:"timespans,omitempty" json:"timespans,omitempty"`
}

// IngestErrorLevel — уровень диагностики конвейера.
type IngestErrorLevel string

const (
	// IngestLevelWarning — деградация, сообщение всё ещё полезно (промах геокодера).
	IngestLevelWarning IngestErrorLevel = "warning"
	// IngestLevelError — этап не удался, конвейер продолжает с частичными данными.
	IngestLevelError IngestErrorLevel = "error"
	// IngestLevelException — неожиданный сбой, логируется с полными деталями.
	IngestLevelException IngestErrorLevel = "exception"
)

// IngestError — одна диагностическая запись, накопленная при обработке.
// Сохраняется вместе с сообщением для последующего аудита качества данных.
type IngestError struct {
	Level  IngestErrorLevel `bson:"level" json:"level"`
	Stage  string           `bson:"stage" json:"stage"`
	Detail string           `bson:"detail" json:"detail"`
}

// Message — финализированная, геолоцированная, дедуплицированная запись.
//
// Особенности:
//   - ID — короткий слаг (используется как часть URL), глобально уникален
//     и неизменяем;
//   - SourceKey — единственный ключ дедупликации, выводится из SourceURL
//     (никогда из DeepLinkURL);
//   - после финализации запись append-only.
type Message struct {
	ID                  string          `bson:"_id" json:"id"`
	Text                string          `bson:"text" json:"text"`
	MarkdownText        string          `bson:"markdown_text" json:"markdownText"`
	Locality            string          `bson:"locality" json:"locality"`
	ResponsibleEntity   string          `bson:"responsible_entity" json:"responsibleEntity"`
	Categories          []string        `bson:"categories,omitempty" json:"categories,omitempty"`
	Pins                []Pin           `bson:"pins,omitempty" json:"pins,omitempty"`
	Streets             []StreetSection `bson:"streets,omitempty" json:"streets,omitempty"`
	CadastralProperties []string        `bson:"cadastral_properties,omitempty" json:"cadastralProperties,omitempty"`
	BusStops            []string        `bson:"bus_stops,omitempty" json:"busStops,omitempty"`
	// GeoJSON — FeatureCollection (Point/LineString/Polygon, [lng, lat], 6 знаков).
	GeoJSON json.RawMessage `bson:"geojson,omitempty" json:"geoJson,omitempty"`
	// SourceDocumentID — ссылка на исходный документ (пустая для user-report).
	SourceDocumentID string `bson:"source_document_id,omitempty" json:"sourceDocumentId,omitempty"`
	// SourceKey — ключ дедупликации (кодировка SourceURL).
	SourceKey string `bson:"source_key,omitempty" json:"sourceKey,omitempty"`
	// SourceURL — каноничный адрес источника.
	SourceURL string `bson:"source_url,omitempty" json:"sourceUrl,omitempty"`
	// DeepLinkURL — пользовательская ссылка (tri-state, в дедупликации не участвует).
	DeepLinkURL *string `bson:"deep_link_url,omitempty" json:"deepLinkUrl,omitempty"`
	// TimespanStart/End — огибающая всех интервалов pins/streets (UTC).
	TimespanStart *time.Time `bson:"timespan_start,omitempty" json:"timespanStart,omitempty"`
	TimespanEnd   *time.Time `bson:"timespan_end,omitempty" json:"timespanEnd,omitempty"`
	IsRelevant    bool       `bson:"is_relevant" json:"isRelevant"`
	FinalizedAt   time.Time  `bson:"finalized_at" json:"finalizedAt"`
	// NotifiedAt — время завершения прохода нотификации по сообщению.
	NotifiedAt   *time.Time    `bson:"notified_at,omitempty" json:"notifiedAt,omitempty"`
	IngestErrors []IngestError `bson:"ingest_errors,omitempty" json:"ingestErrors,omitempty"`
}

// ListOptions — параметры выборки списков доменных сущностей.
type ListOptions struct {
	// Limit == 0 -> серверный default из конфигурации.
	Limit int64
	// OnlyCurrent — вернуть только актуальные на текущий момент сообщения.
	OnlyCurrent bool
}
