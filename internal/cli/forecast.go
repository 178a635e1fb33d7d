package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studioledger/internal/config"
	"studioledger/internal/core"
	"studioledger/internal/log"
)

var forecastStaff string

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the month-end projection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := log.New(log.DefaultConfig())

		dashboard, err := buildDashboard(cfg, logger)
		if err != nil {
			return err
		}
		defer dashboard.Close()

		if err := dashboard.Hydrate(cmd.Context()); err != nil {
			return fmt.Errorf("hydrate store: %w", err)
		}

		p := dashboard.Forecast(core.StaffCode(forecastStaff))
		out := cmd.OutOrStdout()

		if p.Summary.Entries == 0 {
			fmt.Fprintln(out, "no ledger entries")
			return nil
		}

		fmt.Fprintf(out, "days in month: %d (from %d entries)\n", p.DaysInMonth, p.Summary.Entries)
		fmt.Fprintf(out, "current:   income %d, consumption %d\n",
			p.Summary.CurrentIncome, p.Summary.CurrentConsumption)
		fmt.Fprintf(out, "projected: income %d, consumption %d\n",
			p.Summary.ProjectedIncome, p.Summary.ProjectedConsumption)

		fmt.Fprintln(out, "day  actual    predicted")
		for _, row := range p.Rows {
			actual := "-"
			if row.ActualIncome != nil {
				actual = fmt.Sprintf("%d", *row.ActualIncome)
			}
			fmt.Fprintf(out, "%3d  %-9s %d\n", row.Day, actual, row.PredictedIncome)
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&forecastStaff, "staff", "", "limit the projection to one staff code")
}
