package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/storm-alert-service/internal/adapter/http"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/nws"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/spc"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/store"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the aggregator, outlook checker and HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return err
	}
	logger.Info("store opened", "driver", cfg.StoreDriver, "path", cfg.StorePath)

	notifier, closeNotifier := buildNotifier(cfg, logger)
	dispatcher := pipeline.NewDispatcher(notifier, logger, metrics)
	clock := clockwork.NewRealClock()

	feed := nws.NewClient(cfg.NWSAlertsURL, cfg.NWSUserAgent, cfg.FeedTimeout, logger)
	agg, err := pipeline.NewAggregator(feed, st, dispatcher, clock, aggregatorSettings(cfg), logger, metrics)
	if err != nil {
		_ = st.Close()
		return err
	}

	// Left nil when disabled so the API answers 404 for /outlook.
	var outlookReader httpadapter.OutlookReader
	var checker *pipeline.OutlookChecker
	if cfg.OutlookEnabled {
		source := spc.NewClient(cfg.OutlookURL, cfg.OutlookTornadoURL, cfg.NWSUserAgent, cfg.FeedTimeout, logger)
		checker = pipeline.NewOutlookChecker(source, st, dispatcher, clock, pipeline.OutlookSettings{
			Interval:   cfg.OutlookInterval,
			Location:   cfg.Location,
			CutoffHour: cfg.OutlookCutoffHour,
			MinRisk:    cfg.OutlookMinRisk,
		}, logger, metrics)
		outlookReader = checker
	} else {
		logger.Info("outlook checking disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, agg, outlookReader, agg, httpadapter.Options{
		CORSAllowOrigins:  cfg.CORSAllowOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := agg.Run(ctx); err != nil {
			logger.Error("aggregator error", "error", err)
		}
	}()
	if checker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := checker.Run(ctx); err != nil {
				logger.Error("outlook checker error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	agg.Wait()
	if err := closeNotifier(); err != nil {
		logger.Error("notifier close error", "error", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
