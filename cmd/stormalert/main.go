// Command stormalert watches the NWS active-alerts feed, scores it, and
// sends notifications when severe weather breaks out.
//
// Usage:
//
//	stormalert                 run the service (same as "serve")
//	stormalert serve           run the service
//	stormalert tick            run one aggregation tick and print the snapshot
//	stormalert score FILE      score a saved active-alerts document
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/email"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-alert-service/internal/config"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "stormalert",
		Short:        "Severe weather scoring and notification service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(serveCmd())
	root.AddCommand(tickCmd())
	root.AddCommand(scoreCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, builds the logger, and installs the phrase
// tables. Every subcommand starts here.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.PhrasesFile != "" {
		phrases, err := domain.LoadPhrases(cfg.PhrasesFile)
		if err != nil {
			return nil, nil, err
		}
		domain.SetPhrases(phrases)
		logger.Info("phrase tables loaded", "path", cfg.PhrasesFile)
	}
	return cfg, logger, nil
}

// buildNotifier combines every configured delivery channel. With none
// configured, notifications are only logged. The returned func closes any
// channel that holds a connection.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (pipeline.Notifier, func() error) {
	var channels pipeline.MultiNotifier
	closeFn := func() error { return nil }

	if cfg.SMTP.Enabled() {
		channels = append(channels, email.NewSender(cfg.SMTP, logger))
		logger.Info("email notifications enabled", "host", cfg.SMTP.Host, "recipients", len(cfg.SMTP.To))
	}
	if cfg.KafkaEnabled {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, logger)
		channels = append(channels, writer)
		closeFn = writer.Close
		logger.Info("kafka notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaNotifyTopic)
	}

	if len(channels) == 0 {
		logger.Warn("no notification channel configured, notifications will only be logged")
		return pipeline.LogNotifier{Logger: logger}, closeFn
	}
	return channels, closeFn
}

func aggregatorSettings(cfg *config.Config) pipeline.Settings {
	return pipeline.Settings{
		Interval:      cfg.PollInterval,
		Location:      cfg.Location,
		BreakoutAlert: cfg.Breakout.Alert,
		BreakoutReset: cfg.Breakout.Reset,
		OutbreakAlert: cfg.Outbreak.Alert,
		OutbreakReset: cfg.Outbreak.Reset,
	}
}
