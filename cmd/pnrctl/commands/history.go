package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pnr-tracker/internal/domain/ports/repository"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <chat-id>",
		Short: "Show the notifications sent to a chat, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}
			st, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			defer st.close()

			entries, err := st.notifications.ListByChat(cmd.Context(), repository.NoTX, chatID, limit)
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(chatID, entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}
