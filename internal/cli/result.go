package cli

import (
	"github.com/spf13/cobra"
)

func newResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Game result commands",
	}

	cmd.AddCommand(newResultRecordCmd())

	return cmd
}

func newResultRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "record <win|loss|draw>",
		Short:     "Record the outcome of a game",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"win", "loss", "draw"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats
			req := map[string]string{"outcome": args[0]}
			if err := client.Post(cmd.Context(), "/api/v1/accounts/me/results", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
