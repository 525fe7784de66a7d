package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountLogoutCmd())
	cmd.AddCommand(newAccountMeCmd())
	cmd.AddCommand(newAccountUpdateCmd())
	cmd.AddCommand(newAccountDeleteCmd())
	cmd.AddCommand(newAccountListCmd())
	cmd.AddCommand(newAccountShowCmd())
	cmd.AddCommand(newAccountMineCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var nickname, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account with a nickname and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"nickname": nickname,
				"password": password,
			}
			if email != "" {
				req["email"] = email
			}

			var result SessionResult
			if err := client.Post(cmd.Context(), "/api/v1/accounts", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("nickname")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var nickname, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"nickname": nickname,
				"password": password,
			}

			var result SessionResult
			if err := client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("nickname")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAccountLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token != "" {
				err := client.Delete(cmd.Context(), "/api/v1/sessions/current")
				var apiErr *APIError
				// An expired session is as good as logged out.
				if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
					return err
				}
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			NewOutput(cfg.Output).PrintMessage("Logged out")
			return nil
		},
	}
}

func newAccountMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account
			if err := client.Get(cmd.Context(), "/api/v1/accounts/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAccountUpdateCmd() *cobra.Command {
	var nickname, email string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your nickname or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if cmd.Flags().Changed("nickname") {
				req["nickname"] = nickname
			}
			if cmd.Flags().Changed("email") {
				req["email"] = email
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update: pass --nickname and/or --email")
			}

			var result Account
			if err := client.Patch(cmd.Context(), "/api/v1/accounts/me", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "New nickname")
	cmd.Flags().StringVar(&email, "email", "", "New email address (empty to clear)")

	return cmd
}

func newAccountDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete without --yes")
			}

			if err := client.Delete(cmd.Context(), "/api/v1/accounts/me"); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			NewOutput(cfg.Output).PrintMessage("Account deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")

	return cmd
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []PublicAccount
			if err := client.Get(cmd.Context(), "/api/v1/accounts", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAccountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <nickname>",
		Short: "Show another account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PublicAccount
			if err := client.Get(cmd.Context(), accountPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAccountMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Show the newest account registered from this machine's address",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PublicAccount
			if err := client.Get(cmd.Context(), "/api/v1/accounts/by-address", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
