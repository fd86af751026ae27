// ingest — оркестратор конвейера: возрастной фильтр → проверка дедупликации →
// извлечение → геокодирование → синтез геометрии → валидация интервалов →
// сохранение → учёт диагностик. Документы и краулеры обрабатываются строго
// последовательно (квоты внешних сервисов); жёсткий сбой одного краулера не
// мешает остальным.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"

	logctx "github.com/velinovaa/go-alerts-aggregator/internal/pkg/log"

	"github.com/velinovaa/go-alerts-aggregator/internal/config"
	"github.com/velinovaa/go-alerts-aggregator/internal/extract"
	"github.com/velinovaa/go-alerts-aggregator/internal/geocode"
	"github.com/velinovaa/go-alerts-aggregator/internal/geometry"
	"github.com/velinovaa/go-alerts-aggregator/internal/ident"
	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage"
	"github.com/velinovaa/go-alerts-aggregator/internal/timespan"
)

// Extractor — граница AI-сервиса извлечения.
type Extractor interface {
	Split(ctx context.Context, doc *models.SourceDocument) ([]extract.Notification, error)
}

// Geocoder — граница роутера геокодирования.
type Geocoder interface {
	ResolveAddresses(ctx context.Context, texts []string) []models.Address
	ResolveStreetEndpoints(ctx context.Context, locality string, sections []models.StreetSection) map[string]models.LatLng
	Path(ctx context.Context, from, to models.LatLng) []models.LatLng
}

// Options — параметры одного прогона инжеста.
type Options struct {
	// DryRun отключает все записи, оставляя чтение/извлечение для предпросмотра.
	DryRun bool
	// SourceType — обрабатывать только документы одного источника; "" — все.
	SourceType models.SourceType
	// Since/Until — диапазон по времени краулинга.
	Since time.Time
	Until time.Time
	// BoundariesPath — путь к GeoJSON-файлу границ гео-фильтра.
	BoundariesPath string
	// Limit — максимум документов за прогон; 0 — без ограничения.
	Limit int64
}

// Summary — итог прогона по документам.
type Summary struct {
	Ingested int
	Skipped  int
	Failed   int
	TooOld   int
}

// Service — оркестратор конвейера инжеста.
type Service struct {
	storage   storage.Storage
	extractor Extractor
	geocoder  Geocoder
	metrics   *Metrics
	cfg       config.Config
	loc       *time.Location
	now       func() time.Time // подменяется в тестах
}

// New собирает оркестратор; ошибка — только неизвестная таймзона конфигурации.
func New(st storage.Storage, extractor Extractor, geocoder Geocoder, metrics *Metrics, cfg config.Config) (*Service, error) {
	const op = "ingest/service/New"

	loc, err := time.LoadLocation(cfg.Ingest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Service{
		storage:   st,
		extractor: extractor,
		geocoder:  geocoder,
		metrics:   metrics,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
	}, nil
}

type docStatus int

const (
	statusIngested docStatus = iota
	statusSkipped
	statusTooOld
	statusFailed
)

// Run выполняет один прогон: выборка необработанных документов, группировка
// по краулерам (source_type), последовательная обработка с независимым учётом
// успехов/провалов по краулерам.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	const op = "ingest/service/Run"

	lg := logctx.From(ctx)

	var boundary *Boundary
	if opts.BoundariesPath != "" {
		b, err := LoadBoundary(opts.BoundariesPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		boundary = b
	}

	docs, err := s.storage.UnprocessedSources(ctx, storage.SourceFilter{
		SourceType: opts.SourceType,
		Since:      opts.Since,
		Until:      opts.Until,
		Limit:      opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("ingest_start",
		slog.String("op", op),
		slog.Int("documents", len(docs)),
		slog.Bool("dry_run", opts.DryRun),
	)

	// группировка по краулерам с сохранением порядка краулинга
	var order []models.SourceType
	byType := make(map[models.SourceType][]models.SourceDocument)
	for _, doc := range docs {
		if _, ok := byType[doc.SourceType]; !ok {
			order = append(order, doc.SourceType)
		}
		byType[doc.SourceType] = append(byType[doc.SourceType], doc)
	}

	summary := &Summary{}

	for _, st := range order {
		var ok, failed int

		for i := range byType[st] {
			doc := byType[st][i]

			select {
			case <-ctx.Done():
				return summary, fmt.Errorf("%s: %w", op, ctx.Err())
			default:
			}

			label := string(doc.SourceType)

			switch s.processDocument(ctx, &doc, boundary, opts.DryRun) {
			case statusIngested:
				summary.Ingested++
				ok++
				s.metrics.docsIngested.WithLabelValues(label).Inc()
			case statusSkipped:
				summary.Skipped++
				ok++
				s.metrics.docsSkipped.WithLabelValues(label).Inc()
			case statusTooOld:
				summary.TooOld++
				ok++
				s.metrics.docsTooOld.WithLabelValues(label).Inc()
			case statusFailed:
				summary.Failed++
				failed++
				s.metrics.docsFailed.WithLabelValues(label).Inc()
			}
		}

		lg.Info("crawler_done",
			slog.String("op", op),
			slog.String("source_type", string(st)),
			slog.Int("ok", ok),
			slog.Int("failed", failed),
		)
	}

	lg.Info("ingest_done",
		slog.String("op", op),
		slog.Int("ingested", summary.Ingested),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("too_old", summary.TooOld),
	)

	return summary, nil
}

// processDocument прогоняет один документ через все этапы.
// Паника любого этапа конвертируется в статус failed — батч не прерывается.
func (s *Service) processDocument(ctx context.Context, doc *models.SourceDocument, boundary *Boundary, dryRun bool) (status docStatus) {
	const op = "ingest/service/processDocument"

	lg := logctx.From(ctx).With(slog.String("source_id", doc.ID), slog.String("source_type", string(doc.SourceType)))

	defer func() {
		if rec := recover(); rec != nil {
			lg.Error("document_panic", slog.String("op", op), slog.Any("reason", rec))
			status = statusFailed
		}
	}()

	now := s.now()

	// возрастной фильтр — до любых платных вызовов
	published := doc.DatePublished
	if published.IsZero() {
		published = doc.CrawledAt
	}

	maxAge := time.Duration(s.cfg.Ingest.MaxSourceAgeDays) * 24 * time.Hour
	if now.Sub(published) >= maxAge {
		lg.Info("document_too_old", slog.String("op", op), slog.Time("published", published))
		s.consume(ctx, doc, now, dryRun)
		return statusTooOld
	}

	// дедупликация: явный ключ побеждает выводимый из URL
	key := doc.DedupKey
	if key == "" && doc.URL != "" {
		key = ident.SourceKey(doc.URL)
	}

	if key != "" {
		exists, err := s.storage.MessageExistsBySourceKey(ctx, key)
		if err != nil {
			lg.Error("dedup_check_failed", slog.String("op", op), slog.String("err", err.Error()))
			return statusFailed
		}

		if exists {
			lg.Info("document_deduplicated", slog.String("op", op), slog.String("key", key))
			s.consume(ctx, doc, now, dryRun)
			return statusSkipped
		}
	}

	// извлечение
	notifications, err := s.extractor.Split(ctx, doc)
	if err != nil {
		lg.Error("extraction_failed", slog.String("op", op), slog.String("err", err.Error()))
		return statusFailed
	}

	if len(notifications) == 0 {
		lg.Info("document_not_relevant", slog.String("op", op))
		s.consume(ctx, doc, now, dryRun)
		return statusSkipped
	}

	// сборка сообщений
	var built []models.Message
	var outside, noGeometry int

	for _, n := range notifications {
		msg, res := s.buildMessage(ctx, doc, n, key, boundary, now)
		switch res {
		case buildOK:
			built = append(built, msg)
		case buildOutsideBoundary:
			outside++
		case buildNoGeometry:
			noGeometry++
		}
	}

	if len(built) == 0 {
		s.consume(ctx, doc, now, dryRun)

		if outside > 0 && noGeometry == 0 {
			lg.Info("document_outside_boundary", slog.String("op", op))
			return statusSkipped
		}

		// фатально: геометрию произвести не удалось, документ пропускается
		// целиком — частичное сохранение запрещено
		lg.Error("document_no_geometry", slog.String("op", op))
		return statusFailed
	}

	if dryRun {
		for _, msg := range built {
			lg.Info("dry_run_preview",
				slog.String("op", op),
				slog.String("text", msg.Text),
				slog.Int("pins", len(msg.Pins)),
				slog.Int("streets", len(msg.Streets)),
				slog.Int("ingest_errors", len(msg.IngestErrors)),
			)
		}
		return statusIngested
	}

	for i := range built {
		if err := s.insertWithFreshID(ctx, &built[i]); err != nil {
			lg.Error("message_insert_failed", slog.String("op", op), slog.String("err", err.Error()))
			return statusFailed
		}

		lg.Info("message_created", slog.String("op", op), slog.String("message_id", built[i].ID))
	}

	s.consume(ctx, doc, now, dryRun)

	return statusIngested
}

// consume проставляет отметку потребления документа (вне dry-run).
func (s *Service) consume(ctx context.Context, doc *models.SourceDocument, now time.Time, dryRun bool) {
	if dryRun {
		return
	}

	if err := s.storage.MarkSourceProcessed(ctx, doc.ID, now); err != nil {
		logctx.From(ctx).Warn("mark_processed_failed",
			slog.String("source_id", doc.ID),
			slog.String("err", err.Error()),
		)
	}
}

type buildResult int

const (
	buildOK buildResult = iota
	buildNoGeometry
	buildOutsideBoundary
)

// buildMessage собирает одно сообщение из нотификации: геокодирование,
// синтез геометрии, валидация интервалов, накопление диагностик.
func (s *Service) buildMessage(ctx context.Context, doc *models.SourceDocument, n extract.Notification, key string, boundary *Boundary, now time.Time) (models.Message, buildResult) {
	col := NewCollector()
	fc := geojson.NewFeatureCollection()

	msg := models.Message{
		Text:                n.Text,
		MarkdownText:        n.MarkdownText,
		Locality:            doc.Locality,
		ResponsibleEntity:   n.ResponsibleEntity,
		Categories:          n.Categories,
		CadastralProperties: n.CadastralProperties,
		BusStops:            n.BusStops,
		SourceDocumentID:    doc.ID,
		SourceKey:           key,
		SourceURL:           doc.URL,
		DeepLinkURL:         doc.DeepLinkURL,
		FinalizedAt:         now,
	}

	// готовая геометрия структурированного источника — passthrough
	if len(doc.PrecomputedGeoJSON) > 0 {
		feats, err := geometry.Passthrough(doc.PrecomputedGeoJSON)
		if err != nil {
			col.Error("geometry", "precomputed geometry rejected: %v", err)
		} else {
			for _, f := range feats {
				fc.Append(f)
			}
		}
	}

	// pins: геокодирование адресов
	msg.Pins = s.resolvePins(ctx, n.Pins, doc, fc, col)

	// streets: концы участков и буферные полигоны
	msg.Streets = s.resolveStreets(ctx, n.Streets, doc, fc, col)

	if len(fc.Features) == 0 {
		col.Error("geometry", "no geometry could be produced")
		logctx.From(ctx).Error("notification_no_geometry", slog.String("source_id", doc.ID))
		return msg, buildNoGeometry
	}

	// гео-фильтр по центроиду
	if boundary != nil {
		if centroid, ok := geometry.Centroid(fc); ok && !boundary.Contains(centroid) {
			return msg, buildOutsideBoundary
		}
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		col.Exception("geometry", "marshal feature collection: %v", err)
		return msg, buildNoGeometry
	}
	msg.GeoJSON = raw

	// огибающая интервалов и актуальность
	start, end := timespan.Envelope(&msg, s.loc)
	if start != nil {
		t := start.UTC()
		msg.TimespanStart = &t
	}
	if end != nil {
		t := end.UTC()
		msg.TimespanEnd = &t
	}

	window := time.Duration(s.cfg.Ingest.RelevanceWindowDays) * 24 * time.Hour
	msg.IsRelevant = timespan.IsCurrent(&msg, now, window, s.loc)
	msg.IngestErrors = col.Entries()

	return msg, buildOK
}

// resolvePins геокодирует адреса pins; промахи остаются предупреждениями.
func (s *Service) resolvePins(ctx context.Context, pins []extract.ExtractedPin, doc *models.SourceDocument, fc *geojson.FeatureCollection, col *Collector) []models.Pin {
	if len(pins) == 0 {
		return nil
	}

	texts := make([]string, 0, len(pins))
	for _, pin := range pins {
		texts = append(texts, pin.Address)
	}

	byText := make(map[string]models.Address)
	for _, addr := range s.geocoder.ResolveAddresses(ctx, texts) {
		byText[addr.OriginalText] = addr
	}

	out := make([]models.Pin, 0, len(pins))
	for _, pin := range pins {
		p := models.Pin{
			Address:   pin.Address,
			Timespans: s.validateSpans(pin.Timespans, doc),
		}

		if addr, ok := byText[pin.Address]; ok {
			a := addr
			p.Resolved = &a
			fc.Append(geometry.PinFeature(addr))
		} else {
			col.Warn("geocode", "pin %q could not be resolved", pin.Address)
		}

		out = append(out, p)
	}

	return out
}

// resolveStreets разрешает концы участков и строит буферные полигоны.
// Оба конца, пришедшие уже разрешёнными, дают прямую между ними без единого
// внешнего вызова; иначе концы геокодируются как пересечения, а геометрию
// пути (при её наличии у бэкенда) даёт роутер.
func (s *Service) resolveStreets(ctx context.Context, streets []extract.ExtractedStreet, doc *models.SourceDocument, fc *geojson.FeatureCollection, col *Collector) []models.StreetSection {
	if len(streets) == 0 {
		return nil
	}

	sections := make([]models.StreetSection, 0, len(streets))
	var unresolved []models.StreetSection

	for _, street := range streets {
		section := models.StreetSection{
			Street:     street.Street,
			From:       street.From,
			To:         street.To,
			FromCoords: street.FromCoords,
			ToCoords:   street.ToCoords,
			Timespans:  s.validateSpans(street.Timespans, doc),
		}

		sections = append(sections, section)

		if section.FromCoords == nil || section.ToCoords == nil {
			unresolved = append(unresolved, section)
		}
	}

	var endpoints map[string]models.LatLng
	if len(unresolved) > 0 {
		endpoints = s.geocoder.ResolveStreetEndpoints(ctx, doc.Locality, unresolved)
	}

	for i := range sections {
		section := &sections[i]

		preResolved := section.FromCoords != nil && section.ToCoords != nil

		from := section.FromCoords
		to := section.ToCoords

		if from == nil {
			if c, ok := endpoints[geocode.EndpointKey(section.Street, section.From)]; ok {
				from = &c
			}
		}
		if to == nil {
			if c, ok := endpoints[geocode.EndpointKey(section.Street, section.To)]; ok {
				to = &c
			}
		}

		section.FromCoords = from
		section.ToCoords = to

		var path []models.LatLng

		switch {
		case from != nil && to != nil && preResolved:
			path = []models.LatLng{*from, *to}
		case from != nil && to != nil:
			path = s.geocoder.Path(ctx, *from, *to)
			if path == nil {
				path = []models.LatLng{*from, *to}
			}
		case from != nil:
			col.Warn("geocode", "street %q: endpoint %q unresolved, falling back to point", section.Street, section.To)
			path = []models.LatLng{*from}
		case to != nil:
			col.Warn("geocode", "street %q: endpoint %q unresolved, falling back to point", section.Street, section.From)
			path = []models.LatLng{*to}
		default:
			col.Error("geocode", "street %q: both endpoints unresolved", section.Street)
			continue
		}

		feat, err := geometry.StreetFeature(*section, path, s.cfg.Ingest.BufferMeters)
		if err != nil {
			col.Error("geometry", "street %q: %v", section.Street, err)
			continue
		}

		fc.Append(feat)
	}

	return sections
}

// validateSpans применяет правила структурированных источников к интервалам.
func (s *Service) validateSpans(spans []models.Timespan, doc *models.SourceDocument) []models.Timespan {
	if len(spans) == 0 {
		return nil
	}

	if doc.SourceType != models.SourceTypeArcGIS {
		return spans
	}

	lastUpdate := doc.DatePublished
	if lastUpdate.IsZero() {
		lastUpdate = doc.CrawledAt
	}

	out := make([]models.Timespan, 0, len(spans))
	for _, span := range spans {
		out = append(out, timespan.CollapseStructured(span, doc.CrawledAt, lastUpdate, s.loc))
	}

	return out
}

// insertWithFreshID атомарно вставляет сообщение, перегенерируя слаг при
// коллизии; после MaxIDAttempts — типизированный отказ.
func (s *Service) insertWithFreshID(ctx context.Context, msg *models.Message) error {
	const op = "ingest/service/insertWithFreshID"

	for attempt := 0; attempt < ident.MaxIDAttempts; attempt++ {
		id, err := ident.NewMessageID()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		msg.ID = id

		err = s.storage.CreateMessage(ctx, *msg)
		if err == nil {
			return nil
		}

		if !errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, ident.ErrIDExhausted)
}
