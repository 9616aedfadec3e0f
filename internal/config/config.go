package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

// Store drivers.
const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NWS active-alerts feed.
	NWSAlertsURL string
	NWSUserAgent string
	FeedTimeout  time.Duration
	PollInterval time.Duration
	Location     *time.Location

	Breakout Thresholds
	Outbreak Thresholds

	// SPC day 1 outlook.
	OutlookEnabled    bool
	OutlookURL        string
	OutlookTornadoURL string
	OutlookInterval   time.Duration
	OutlookCutoffHour int
	OutlookMinRisk    string

	StoreDriver string
	StorePath   string
	PhrasesFile string

	SMTP SMTPConfig

	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaNotifyTopic string

	CORSAllowOrigins  []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Thresholds is an alert/reset pair for one episode tracker.
type Thresholds struct {
	Alert int
	Reset int
}

// SMTPConfig configures the email notifier. Email is enabled when Host is set.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var p parser
	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NWSAlertsURL: sharedcfg.EnvOrDefault("NWS_ALERTS_URL", "https://api.weather.gov/alerts/active"),
		NWSUserAgent: sharedcfg.EnvOrDefault("NWS_USER_AGENT", "(storm-alert-service, ops@example.com)"),
		FeedTimeout:  p.duration("FEED_TIMEOUT", "20s"),
		PollInterval: p.duration("POLL_INTERVAL", "1m"),

		Breakout: Thresholds{
			Alert: p.integer("BREAKOUT_ALERT_THRESHOLD", 250),
			Reset: p.integer("BREAKOUT_RESET_THRESHOLD", 200),
		},
		Outbreak: Thresholds{
			Alert: p.integer("OUTBREAK_ALERT_THRESHOLD", 7),
			Reset: p.integer("OUTBREAK_RESET_THRESHOLD", 5),
		},

		OutlookEnabled:    p.boolean("OUTLOOK_ENABLED", true),
		OutlookURL:        sharedcfg.EnvOrDefault("OUTLOOK_URL", "https://www.spc.noaa.gov/products/outlook/day1otlk.html"),
		OutlookTornadoURL: sharedcfg.EnvOrDefault("OUTLOOK_TORNADO_URL", "https://www.spc.noaa.gov/products/outlook/day1otlk_torn.lyr.geojson"),
		OutlookInterval:   p.duration("OUTLOOK_INTERVAL", "15m"),
		OutlookCutoffHour: p.integer("OUTLOOK_CUTOFF_HOUR", 7),

		StoreDriver: strings.ToLower(sharedcfg.EnvOrDefault("STORE_DRIVER", StoreDriverFile)),
		StorePath:   sharedcfg.EnvOrDefault("STORE_PATH", "data"),
		PhrasesFile: os.Getenv("PHRASES_FILE"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     p.integer("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     sharedcfg.EnvOrDefault("SMTP_FROM", "storm-alert@localhost"),
			To:       splitList(os.Getenv("SMTP_TO")),
		},

		KafkaEnabled:     p.boolean("KAFKA_ENABLED", false),
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic: sharedcfg.EnvOrDefault("KAFKA_NOTIFY_TOPIC", "storm-alert-notifications"),

		CORSAllowOrigins:  splitList(sharedcfg.EnvOrDefault("CORS_ALLOW_ORIGINS", "*")),
		RateLimitRequests: p.integer("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   p.duration("RATE_LIMIT_WINDOW", "1m"),
	}
	if p.err != nil {
		return nil, p.err
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIMEZONE", "America/Chicago"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	risk, ok := domain.NormalizeRisk(sharedcfg.EnvOrDefault("OUTLOOK_MIN_RISK", domain.RiskEnhanced))
	if !ok {
		return nil, errors.New("invalid OUTLOOK_MIN_RISK: must be a SPC category such as SLGT, ENH or MDT")
	}
	cfg.OutlookMinRisk = risk

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Breakout.Reset >= c.Breakout.Alert {
		return errors.New("BREAKOUT_RESET_THRESHOLD must be below BREAKOUT_ALERT_THRESHOLD")
	}
	if c.Outbreak.Reset >= c.Outbreak.Alert {
		return errors.New("OUTBREAK_RESET_THRESHOLD must be below OUTBREAK_ALERT_THRESHOLD")
	}
	if c.OutlookCutoffHour < 0 || c.OutlookCutoffHour > 23 {
		return errors.New("OUTLOOK_CUTOFF_HOUR must be between 0 and 23")
	}
	if c.StoreDriver != StoreDriverFile && c.StoreDriver != StoreDriverSQLite {
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverFile, StoreDriverSQLite)
	}
	if c.StorePath == "" {
		return errors.New("STORE_PATH is required")
	}
	if c.SMTP.Enabled() && len(c.SMTP.To) == 0 {
		return errors.New("SMTP_TO is required when SMTP_HOST is set")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if c.KafkaEnabled && c.KafkaNotifyTopic == "" {
		return errors.New("KAFKA_NOTIFY_TOPIC is required when KAFKA_ENABLED is true")
	}
	if c.RateLimitRequests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}

// parser accumulates the first parse error so Load can read every variable
// in one struct literal.
type parser struct {
	err error
}

func (p *parser) duration(name, def string) time.Duration {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		p.fail(fmt.Errorf("invalid %s: must be a positive duration", name))
		return 0
	}
	return d
}

func (p *parser) integer(name string, def int) int {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %w", name, err))
		return def
	}
	return n
}

func (p *parser) boolean(name string, def bool) bool {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %w", name, err))
		return def
	}
	return b
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
