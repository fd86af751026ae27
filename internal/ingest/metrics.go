package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — счётчики конвейера инжеста, регистрируются в переданном реестре.
type Metrics struct {
	docsIngested *prometheus.CounterVec
	docsSkipped  *prometheus.CounterVec
	docsFailed   *prometheus.CounterVec
	docsTooOld   *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует счётчики конвейера.
// reg == nil — метрики считаются, но никуда не публикуются (тесты).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		docsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_ingest_documents_ingested_total",
			Help: "Число успешно обработанных исходных документов.",
		}, []string{"source_type"}),
		docsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_ingest_documents_skipped_total",
			Help: "Число пропущенных документов (дубликаты, нерелевантные, вне границ).",
		}, []string{"source_type"}),
		docsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_ingest_documents_failed_total",
			Help: "Число документов, отброшенных фатальной ошибкой этапа.",
		}, []string{"source_type"}),
		docsTooOld: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_ingest_documents_too_old_total",
			Help: "Число документов, отсечённых возрастным фильтром.",
		}, []string{"source_type"}),
	}

	if reg != nil {
		reg.MustRegister(m.docsIngested, m.docsSkipped, m.docsFailed, m.docsTooOld)
	}

	return m
}
