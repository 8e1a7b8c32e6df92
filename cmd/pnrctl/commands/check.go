package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pnr-tracker/internal/domain/model"
	"pnr-tracker/internal/usecase"
)

func newCheckCommand(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		baseline string
		policy   string
	)
	cmd := &cobra.Command{
		Use:   "check <pnr>",
		Short: "Fetch the current status of a PNR",
		Long: `Fetch and print the current status of a 10-digit PNR.
With --against, the fresh passenger statuses are compared to a comma separated
list of previous ones. Only the passenger policy compares passenger statuses,
so --against cannot be combined with the text policy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pnr, err := model.ParsePNR(args[0])
			if err != nil {
				return err
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if policy == "" {
				policy = cfg.Tracker.Policy
			}
			detector, err := usecase.NewChangeDetector(policy)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("against") && detector.Name() != usecase.PolicyPassenger {
				return fmt.Errorf("--against needs the %s policy, got %s", usecase.PolicyPassenger, detector.Name())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			report, err := a.newFetcher(cfg, a.logger()).FetchStatus(ctx, pnr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReport(pnr, report))
			if cmd.Flags().Changed("against") {
				prev := splitStatuses(baseline)
				change := detector.Detect(model.Baseline{Recorded: true, PassengerStatuses: prev}, report)
				fmt.Fprintln(out, renderChange(detector.Name(), change))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "overall fetch timeout")
	cmd.Flags().StringVar(&baseline, "against", "", "previous passenger statuses, e.g. \"WL 5,RAC 12\"")
	cmd.Flags().StringVar(&policy, "policy", "", "change policy: passenger or text (defaults to tracker.policy); --against needs passenger")
	return cmd
}
