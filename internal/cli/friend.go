package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFriendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Friend list commands",
	}

	cmd.AddCommand(newFriendListCmd())
	cmd.AddCommand(newFriendAddCmd())
	cmd.AddCommand(newFriendAcceptCmd())
	cmd.AddCommand(newFriendRemoveCmd())

	return cmd
}

func newFriendListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List friends and incoming requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FriendList
			if err := client.Get(cmd.Context(), "/api/v1/accounts/me/friends", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFriendAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <nickname>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Friend
			req := map[string]string{"nickname": args[0]}
			if err := client.Post(cmd.Context(), "/api/v1/accounts/me/friends", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFriendAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <nickname>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Friend
			if err := client.Post(cmd.Context(), friendPath(args[0])+"/accept", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFriendRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <nickname>",
		Short: "Remove a friend or cancel a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), friendPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}
