package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/nws"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/store"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
)

func tickCmd() *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one aggregation tick against the live feed and print the snapshot",
		Long: "Fetches the active alerts once, scores them and prints the resulting snapshot as JSON.\n" +
			"Notifications are logged, never delivered. Statistics go to a scratch directory\n" +
			"unless --persist is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			var st store.Store
			if persist {
				st, err = store.Open(cfg.StoreDriver, cfg.StorePath)
				if err != nil {
					return err
				}
			} else {
				dir, err := os.MkdirTemp("", "stormalert-tick-")
				if err != nil {
					return fmt.Errorf("create scratch store: %w", err)
				}
				defer os.RemoveAll(dir)
				st = store.NewFileStore(dir)
			}
			defer st.Close()

			metrics := observability.NewMetricsForTesting()
			dispatcher := pipeline.NewDispatcher(pipeline.LogNotifier{Logger: logger}, logger, metrics)
			feed := nws.NewClient(cfg.NWSAlertsURL, cfg.NWSUserAgent, cfg.FeedTimeout, logger)

			agg, err := pipeline.NewAggregator(feed, st, dispatcher, clockwork.NewRealClock(),
				aggregatorSettings(cfg), logger, metrics)
			if err != nil {
				return err
			}

			snap, err := agg.Tick(cmd.Context())
			agg.Wait()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "record statistics in the configured store")
	return cmd
}
