// models содержит доменные сущности агрегатора сообщений о нарушениях
// городской инфраструктуры. Эти типы используются слоями бизнес-логики,
// хранилища и транспорта.
package models

import (
	"encoding/json"
	"time"
)

// SourceType — система-источник исходного документа.
type SourceType string

const (
	// SourceTypeWaterUtility — планови/аварийни спирания на водоподаването.
	SourceTypeWaterUtility SourceType = "water-utility"
	// SourceTypeHeatUtility — спирания на топлоподаването.
	SourceTypeHeatUtility SourceType = "heat-utility"
	// SourceTypeMunicipality — съобщения на общината (ремонти, затваряния).
	SourceTypeMunicipality SourceType = "municipality"
	// SourceTypeArcGIS — структурированный фид (ArcGIS-слой с готовой геометрией).
	SourceTypeArcGIS SourceType = "arcgis"
	// SourceTypeUserReport — прямая пользовательская заявка.
	SourceTypeUserReport SourceType = "user-report"
)

// Valid сообщает, известен ли тип источника.
func (s SourceType) Valid() bool {
	switch s {
	case SourceTypeWaterUtility, SourceTypeHeatUtility, SourceTypeMunicipality,
		SourceTypeArcGIS, SourceTypeUserReport:
		return true
	}

	return false
}

// SourceDocument — сырое объявление до обработки.
//
// Особенности:
//   - иммутабелен после краулинга; оркестратор потребляет его ровно один раз;
//   - URL — каноничный адрес источника, материал для ключа дедупликации;
//   - DeepLinkURL — отдельная пользовательская ссылка, в дедупликации
//     не участвует. Три состояния: nil (показывать URL), "" (ссылки нет
//     намеренно), непустая строка (явная ссылка).
type SourceDocument struct {
	// ID — ключ документа; если не задан явно, выводится из URL.
	ID string `bson:"_id" json:"id"`
	// URL — каноничный адрес объявления у источника.
	URL string `bson:"url" json:"url"`
	// DedupKey — явный ключ дедупликации; при наличии всегда побеждает
	// ключ, выводимый из URL.
	DedupKey string `bson:"dedup_key,omitempty" json:"dedupKey,omitempty"`
	// DeepLinkURL — ссылка для показа пользователю (tri-state, см. выше).
	DeepLinkURL *string `bson:"deep_link_url,omitempty" json:"deepLinkUrl,omitempty"`
	// Title — заголовок объявления.
	Title string `bson:"title" json:"title"`
	// RawText — полный сырой текст (может содержать разметку).
	RawText string `bson:"raw_text" json:"rawText"`
	// SourceType — система-источник.
	SourceType SourceType `bson:"source_type" json:"sourceType"`
	// Locality — населённый пункт, к которому относится объявление.
	Locality string `bson:"locality" json:"locality"`
	// DatePublished — время публикации у источника.
	DatePublished time.Time `bson:"date_published" json:"datePublished"`
	// CrawledAt — время краулинга (UTC).
	CrawledAt time.Time `bson:"crawled_at" json:"crawledAt"`
	// PrecomputedGeoJSON — готовая геометрия структурированных источников
	// (ArcGIS); при наличии геокодирование не выполняется.
	PrecomputedGeoJSON json.RawMessage `bson:"precomputed_geojson,omitempty" json:"precomputedGeoJson,omitempty"`
	// Processed/ProcessedAt — отметка потребления оркестратором.
	Processed   bool       `bson:"processed" json:"processed"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty" json:"processedAt,omitempty"`
}
