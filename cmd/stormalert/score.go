package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/nws"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

func scoreCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "score FILE",
		Short: "Score a saved active-alerts GeoJSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			alerts, err := nws.DecodeAlerts(f)
			if err != nil {
				return err
			}
			return printScores(cmd.OutOrStdout(), alerts, now, cfg.Location)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluation time (RFC3339), defaults to now")
	return cmd
}

// printScores writes one row per scoring alert plus the composite total.
func printScores(out io.Writer, alerts []domain.Alert, now time.Time, loc *time.Location) error {
	c := domain.Classify(alerts)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tCATEGORY\tBASE\tBONUSES\tDECAY\tPOINTS\tAREAS")

	total := 0
	for _, a := range c.Scoring {
		b := domain.Explain(a, now, loc)
		total += b.Total
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%s\n",
			a.Event, b.Category, b.Base, formatBonuses(b.Bonuses), b.Decay, b.Total, a.Areas().String())
	}
	fmt.Fprintf(tw, "\t\t\t\t\t%d\tTOTAL (%d alerts, %d tornado warnings)\n", total, len(c.Scoring), len(c.Tornado))
	return tw.Flush()
}

func formatBonuses(bonuses []domain.Bonus) string {
	if len(bonuses) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(bonuses))
	for _, b := range bonuses {
		parts = append(parts, fmt.Sprintf("%s+%d", b.Name, b.Points))
	}
	return strings.Join(parts, ",")
}
