package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/store"
)

func newLoginCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for the configured backend",
		Long:  "Verify an API token against the backend and save it in the OS keyring. Use --token - to read it from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := tokenFlag
			if token == "" || token == "-" {
				if token == "" {
					fmt.Fprint(cmd.ErrOrStderr(), "API token: ")
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token is empty")
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
			check := api.New(s.cfg.API.BaseURL, api.WithToken(tok), api.WithTimeout(s.cfg.API.TimeoutDuration()))
			if _, err := check.ListMine(cmd.Context()); err != nil {
				if api.IsAuthExpired(err) {
					return fmt.Errorf("token rejected by %s", s.cfg.API.BaseURL)
				}
				return fmt.Errorf("failed to verify token: %w", err)
			}

			if err := store.NewKeyringTokenStore().SaveToken(s.profile.ID, tok); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "login", BaseURL: s.cfg.API.BaseURL})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", s.cfg.API.BaseURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "API token ('-' reads stdin; prompts when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token and paging state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := store.NewKeyringTokenStore().DeleteToken(s.profile.ID); err != nil {
				// Non-fatal: the paging state is still cleared.
				fmt.Fprintf(os.Stderr, "Warning: could not remove token from keyring: %v\n", err)
			}
			if err := s.db.ClearMailSession(cmd.Context(), s.profile.ID); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "logout", BaseURL: s.cfg.API.BaseURL})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", s.cfg.API.BaseURL)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List known backends and whether a token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			profiles, err := db.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}

			tokens := store.NewKeyringTokenStore()
			loggedIn := make(map[string]bool, len(profiles))
			for _, p := range profiles {
				_, err := tokens.LoadToken(p.ID)
				loggedIn[p.ID] = err == nil
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "Warning: could not read keyring for %s: %v\n", p.BaseURL, err)
				}
			}

			if jsonFlag {
				return printJSON(cmd, toJSONProfiles(profiles, loggedIn))
			}

			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backends used yet. Run 'assist login' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tLOGGED IN\tLAST USED")
			for _, p := range profiles {
				yes := "no"
				if loggedIn[p.ID] {
					yes = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.BaseURL, yes, p.LastUsed.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}
