package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://api.weather.gov/alerts/active", cfg.NWSAlertsURL)
	assert.NotEmpty(t, cfg.NWSUserAgent)
	assert.Equal(t, 20*time.Second, cfg.FeedTimeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.Equal(t, Thresholds{Alert: 250, Reset: 200}, cfg.Breakout)
	assert.Equal(t, Thresholds{Alert: 7, Reset: 5}, cfg.Outbreak)
	assert.True(t, cfg.OutlookEnabled)
	assert.Equal(t, 15*time.Minute, cfg.OutlookInterval)
	assert.Equal(t, 7, cfg.OutlookCutoffHour)
	assert.Equal(t, "ENH", cfg.OutlookMinRisk)
	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, "data", cfg.StorePath)
	assert.Empty(t, cfg.PhrasesFile)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "storm-alert-notifications", cfg.KafkaNotifyTopic)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 120, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("NWS_ALERTS_URL", "http://localhost:9000/alerts")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("BREAKOUT_ALERT_THRESHOLD", "300")
	t.Setenv("BREAKOUT_RESET_THRESHOLD", "150")
	t.Setenv("OUTLOOK_ENABLED", "false")
	t.Setenv("OUTLOOK_MIN_RISK", "moderate")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("STORE_PATH", "/var/lib/storm/alerts.db")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_TO", "a@example.com, b@example.com")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:9000/alerts", cfg.NWSAlertsURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, Thresholds{Alert: 300, Reset: 150}, cfg.Breakout)
	assert.False(t, cfg.OutlookEnabled)
	assert.Equal(t, "MDT", cfg.OutlookMinRisk)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/var/lib/storm/alerts.db", cfg.StorePath)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.SMTP.To)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"poll interval", map[string]string{"POLL_INTERVAL": "soon"}, "POLL_INTERVAL"},
		{"zero poll interval", map[string]string{"POLL_INTERVAL": "0s"}, "POLL_INTERVAL"},
		{"feed timeout", map[string]string{"FEED_TIMEOUT": "-1s"}, "FEED_TIMEOUT"},
		{"threshold not a number", map[string]string{"OUTBREAK_ALERT_THRESHOLD": "many"}, "OUTBREAK_ALERT_THRESHOLD"},
		{"breakout reset above alert", map[string]string{"BREAKOUT_RESET_THRESHOLD": "300"}, "BREAKOUT_RESET_THRESHOLD"},
		{"outbreak reset equals alert", map[string]string{"OUTBREAK_RESET_THRESHOLD": "7"}, "OUTBREAK_RESET_THRESHOLD"},
		{"cutoff hour", map[string]string{"OUTLOOK_CUTOFF_HOUR": "24"}, "OUTLOOK_CUTOFF_HOUR"},
		{"outlook enabled", map[string]string{"OUTLOOK_ENABLED": "maybe"}, "OUTLOOK_ENABLED"},
		{"min risk", map[string]string{"OUTLOOK_MIN_RISK": "EXTREME"}, "OUTLOOK_MIN_RISK"},
		{"timezone", map[string]string{"TIMEZONE": "Mars/Olympus_Mons"}, "TIMEZONE"},
		{"store driver", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		{"smtp without recipients", map[string]string{"SMTP_HOST": "smtp.example.com"}, "SMTP_TO"},
		{"rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "RATE_LIMIT_REQUESTS"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
