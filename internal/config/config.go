// config реализует конфигурацию сервиса: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Geocode  GeocodeConfig `yaml:"geocode"`
	Extract  ExtractConfig `yaml:"extract"`
	Ingest   IngestConfig  `yaml:"ingest"`
	Notify   NotifyConfig  `yaml:"notify"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP API (вместе с health/metrics).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// GeocodeConfig — выбор и настройка бэкенда геокодирования.
type GeocodeConfig struct {
	// Provider — один из: google, directions, tiles. Выбирается один раз на старте.
	Provider string `yaml:"provider" env:"GEOCODE_PROVIDER" env-default:"google"`
	APIKey   string `yaml:"api_key" env:"GEOCODE_API_KEY"`
	// CallInterval — фиксированная пауза между последовательными внешними
	// вызовами (защита квоты, осознанный backpressure).
	CallInterval time.Duration `yaml:"call_interval" env:"GEOCODE_CALL_INTERVAL" env-default:"300ms"`
	// Timeout — пер-вызовный таймаут внешнего геокодера.
	Timeout time.Duration `yaml:"timeout" env:"GEOCODE_TIMEOUT" env-default:"10s"`
	// Country — страна-дизамбигуатор, добавляется к запросам без неё.
	Country string `yaml:"country" env:"GEOCODE_COUNTRY" env-default:"България"`
}

// ExtractConfig — настройки клиента AI-сервиса извлечения.
type ExtractConfig struct {
	URL    string `yaml:"url" env:"EXTRACT_URL" env-required:"true"`
	APIKey string `yaml:"api_key" env:"EXTRACT_API_KEY"`
	// Timeout — пер-вызовный таймаут извлечения.
	Timeout time.Duration `yaml:"timeout" env:"EXTRACT_TIMEOUT" env-default:"60s"`
	// MaxTextRunes — предел длины текста, отправляемого на извлечение.
	MaxTextRunes int `yaml:"max_text_runes" env:"EXTRACT_MAX_TEXT_RUNES" env-default:"8000"`
}

// IngestConfig — параметры конвейера инжеста.
type IngestConfig struct {
	// MaxSourceAgeDays — документ старше порога (включительно) отбрасывается
	// до любых платных вызовов.
	MaxSourceAgeDays int `yaml:"max_source_age_days" env:"INGEST_MAX_SOURCE_AGE_DAYS" env-default:"90"`
	// RelevanceWindowDays — окно актуальности сообщений без интервалов.
	RelevanceWindowDays int `yaml:"relevance_window_days" env:"RELEVANCE_WINDOW_DAYS" env-default:"7"`
	// BufferMeters — ширина буфера полигона уличного участка.
	BufferMeters float64 `yaml:"buffer_meters" env:"INGEST_BUFFER_METERS" env-default:"25"`
	// Timezone — локация разбора дат формата DD.MM.YYYY HH:MM.
	Timezone string `yaml:"timezone" env:"INGEST_TIMEZONE" env-default:"Europe/Sofia"`
	// DefaultLocality — населённый пункт по умолчанию для user-report.
	DefaultLocality string `yaml:"default_locality" env:"INGEST_DEFAULT_LOCALITY" env-default:"София"`
}

// NotifyConfig — параметры матчера нотификаций.
type NotifyConfig struct {
	// BatchSize — размер пачки параллельной доставки; пачка завершается
	// целиком до старта следующей.
	BatchSize int `yaml:"batch_size" env:"NOTIFY_BATCH_SIZE" env-default:"100"`
}

// LimitsConfig — лимиты на выдачу.
type LimitsConfig struct {
	// Пагинация: limit=0 -> берём Default; верхняя граница — Max.
	Default int64 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"50"`
	Max     int64 `yaml:"max"     env:"MAX_LIMIT"     env-default:"500"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	switch c.Geocode.Provider {
	case "google", "directions", "tiles":
	default:
		return fmt.Errorf("geocode.provider must be one of google|directions|tiles, got %q", c.Geocode.Provider)
	}

	if c.Geocode.CallInterval < 0 {
		return fmt.Errorf("geocode.call_interval must be >= 0")
	}

	if c.Ingest.MaxSourceAgeDays <= 0 {
		return fmt.Errorf("ingest.max_source_age_days must be > 0")
	}

	if c.Ingest.RelevanceWindowDays <= 0 {
		return fmt.Errorf("ingest.relevance_window_days must be > 0")
	}

	if c.Ingest.BufferMeters <= 0 {
		return fmt.Errorf("ingest.buffer_meters must be > 0")
	}

	if c.Notify.BatchSize <= 0 {
		return fmt.Errorf("notify.batch_size must be > 0")
	}

	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}

	if c.Limits.Max <= 0 {
		return fmt.Errorf("limits.max must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	return nil
}
