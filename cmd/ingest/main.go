// Команда ingest — один прогон конвейера: инжест необработанных исходных
// документов и следом проход нотификации. Запускается по расписанию (cron)
// или вручную; --dry-run показывает результат без записей в БД.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velinovaa/go-alerts-aggregator/internal/config"
	"github.com/velinovaa/go-alerts-aggregator/internal/extract"
	"github.com/velinovaa/go-alerts-aggregator/internal/geocode"
	"github.com/velinovaa/go-alerts-aggregator/internal/ingest"
	"github.com/velinovaa/go-alerts-aggregator/internal/models"
	"github.com/velinovaa/go-alerts-aggregator/internal/notify"
	"github.com/velinovaa/go-alerts-aggregator/internal/storage/mongo"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var (
		configPath string
		dryRun     bool
		source     string
		since      string
		until      string
		boundaries string
		limit      int64
		skipNotify bool
	)

	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.BoolVar(&dryRun, "dry-run", false, "process documents without writing anything")
	flag.StringVar(&source, "source", "", "process only documents of one source type")
	flag.StringVar(&since, "since", "", "only documents crawled at/after this time (RFC3339 or YYYY-MM-DD)")
	flag.StringVar(&until, "until", "", "only documents crawled before this time (RFC3339 or YYYY-MM-DD)")
	flag.StringVar(&boundaries, "boundaries", "", "path to a GeoJSON boundary file for the geo filter")
	flag.Int64Var(&limit, "limit", 0, "max documents per run (0 = no limit)")
	flag.BoolVar(&skipNotify, "skip-notify", false, "skip the notification pass after ingest")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting ingest", "env", cfg.Env, "dry_run", dryRun)

	opts := ingest.Options{
		DryRun:         dryRun,
		BoundariesPath: boundaries,
		Limit:          limit,
	}

	if source != "" {
		st := models.SourceType(source)
		if !st.Valid() {
			log.Error("invalid_source_type", slog.String("source", source))
			os.Exit(2)
		}
		opts.SourceType = st
	}

	var err error
	if opts.Since, err = parseTime(since); err != nil {
		log.Error("invalid_since", slog.String("err", err.Error()))
		os.Exit(2)
	}
	if opts.Until, err = parseTime(until); err != nil {
		log.Error("invalid_until", slog.String("err", err.Error()))
		os.Exit(2)
	}

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := mongo.New(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("mongo_connected")

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if cerr := store.Close(closeCtx); cerr != nil {
			log.Warn("mongo_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	backend, err := geocode.NewBackend(cfg.Geocode)
	if err != nil {
		log.Error("geocode_backend_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	router := geocode.NewRouter(backend, cfg.Geocode.CallInterval)

	extractClient := extract.NewClient(
		&http.Client{Timeout: cfg.Extract.Timeout},
		cfg.Extract.URL,
		cfg.Extract.APIKey,
		cfg.Extract.MaxTextRunes,
	)

	metrics := ingest.NewMetrics(prometheus.DefaultRegisterer)

	svc, err := ingest.New(store, extractClient, router, metrics, *cfg)
	if err != nil {
		log.Error("ingest_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	summary, err := svc.Run(rootCtx, opts)
	if err != nil {
		log.Error("ingest_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("ingest: %d ingested, %d skipped, %d failed, %d too old\n",
		summary.Ingested, summary.Skipped, summary.Failed, summary.TooOld)

	if skipNotify {
		return
	}

	matcher := notify.NewMatcher(store, notify.LogPusher{}, cfg.Notify.BatchSize)

	nsum, err := matcher.Run(rootCtx, dryRun)
	if err != nil {
		log.Error("notify_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("notify: %d messages, %d matches, %d delivered, %d errors\n",
		nsum.Messages, nsum.Matches, nsum.Delivered, nsum.Errors)
}

// parseTime принимает RFC3339 или короткую форму YYYY-MM-DD (UTC-полночь).
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", s)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
