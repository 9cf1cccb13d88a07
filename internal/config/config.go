package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=medwaste port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseDSN string `env:"DATABASE_DSN"` // boşsa defaultDSN
	JWTSecret   string `env:"JWT_SECRET"`
	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS"` // boşsa defaultCORSOrigins
	Timezone    string `env:"APP_TIMEZONE" envDefault:"Europe/Istanbul"`

	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionBackend    string        `env:"SESSION_BACKEND" envDefault:"db"` // db | memory
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"mw_session"`

	// Okuma pencereleri (en yeni N kayıt)
	DashboardWindow     int `env:"DASHBOARD_WINDOW" envDefault:"100"`
	AnalyticsWindow     int `env:"ANALYTICS_WINDOW" envDefault:"1000"`
	CollectionListLimit int `env:"COLLECTION_LIST_LIMIT" envDefault:"200"`

	KPI KPIConfig

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"300"` // 0 = kapalı
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`

	Log LogConfig
}

// KPIConfig: "placeholder" modunda HBYS verisi yerine varsayılan birim sayıları kullanılır.
type KPIConfig struct {
	Mode             string  `env:"KPI_MODE" envDefault:"placeholder"` // placeholder | coefficients
	AssumedBeds      float64 `env:"KPI_ASSUMED_BEDS" envDefault:"100"`
	AssumedSurgeries float64 `env:"KPI_ASSUMED_SURGERIES" envDefault:"50"`
	AssumedProtocols float64 `env:"KPI_ASSUMED_PROTOCOLS" envDefault:"200"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`   // text | json
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"` // stdout | file | both
	Path       string `env:"LOG_PATH" envDefault:"./logs"`
	File       string `env:"LOG_FILE" envDefault:"app.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"` // gün
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load: .env dosyası (varsa) + ortam değişkenleri.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env yoksa sorun değil, ortam değişkenleri yeterli
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config parse edilemedi: %w", err)
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDSN
	}
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = defaultCORSOrigins
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.warnDefaults()
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET en az 32 karakter olmalıdır")
	}
	if c.SessionBackend != "db" && c.SessionBackend != "memory" {
		return fmt.Errorf("SESSION_BACKEND geçersiz: %q", c.SessionBackend)
	}
	if c.KPI.Mode != "placeholder" && c.KPI.Mode != "coefficients" {
		return fmt.Errorf("KPI_MODE geçersiz: %q", c.KPI.Mode)
	}
	if c.DashboardWindow <= 0 || c.AnalyticsWindow <= 0 || c.CollectionListLimit <= 0 {
		return errors.New("okuma pencereleri 0'dan büyük olmalıdır")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE geçersiz: %w", err)
	}
	return nil
}

// Location: toplama saatlerinin yorumlandığı saat dilimi.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) warnDefaults() {
	if c.DatabaseDSN == defaultDSN {
		logrus.Warn("DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		logrus.Warn("CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}
	if c.SessionBackend == "memory" {
		logrus.Warn("SESSION_BACKEND=memory: oturumlar yeniden başlatmada kaybolur.")
	}
}
