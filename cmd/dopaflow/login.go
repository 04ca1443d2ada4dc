package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token for the board commands",
		Long: `Save a CRM bearer token for the board commands. The token is read from
--token or from the first line of stdin, checked against the backend, and
written to CRM_TOKEN_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if token == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				token = line
			}
			token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))

			if err := session.CheckToken(token, time.Now()); err != nil {
				return err
			}

			api, _, err := newCLIClient(cmd, cfg, session.StaticToken(token))
			if err != nil {
				return err
			}
			user, err := api.CurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			store, err := session.NewFileStore(cfg.TokenFile)
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (#%d).\n", orDash(user.Username), user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token (read from stdin when empty)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			store, err := session.NewFileStore(cfg.TokenFile)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
