package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"pnr-tracker/internal/domain/ports/repository"
)

func newSessionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List every tracked PNR session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			defer st.close()

			sessions, err := st.sessions.ListAll(cmd.Context(), repository.NoTX)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSessions(sessions))
			return nil
		},
	}
}
