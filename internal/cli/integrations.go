package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
	"github.com/lu-zhengda/assist/internal/domain"
)

func newIntegrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "integrations",
		Aliases: []string{"int"},
		Short:   "Manage connected providers",
	}
	cmd.AddCommand(newIntegrationsListCmd())
	cmd.AddCommand(newConnectCmd())
	cmd.AddCommand(newDisconnectCmd())
	cmd.AddCommand(newToggleCmd("enable", true))
	cmd.AddCommand(newToggleCmd("disable", false))
	cmd.AddCommand(newConfigureCmd())
	return cmd
}

func newIntegrationsListCmd() *cobra.Command {
	var categoryFlag, searchFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List integration cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			category := domain.Category(categoryFlag)
			if _, ok := domain.CategoryNames[category]; !ok {
				return fmt.Errorf("unknown category: %s", categoryFlag)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ov := app.NewIntegrationService(s.client, nil).Refresh(cmd.Context())
			cards := domain.FilterCards(ov.Cards, category, searchFlag)

			if jsonFlag {
				if err := printJSON(cmd, toJSONCards(cards)); err != nil {
					return err
				}
				return describe(ov.Err, app.PageIntegrations)
			}

			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No integrations match.")
				return describe(ov.Err, app.PageIntegrations)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tNAME\tCATEGORY\tSTATUS\tACTION\tINTEGRATION_ID")
			for _, c := range cards {
				action := c.ActionText()
				if !c.Enabled && !c.ComingSoon {
					action = "-"
				}
				id := c.IntegrationID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ProviderType, c.Name, domain.CategoryNames[c.Category],
					c.StatusText(), action, id,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return describe(ov.Err, app.PageIntegrations)
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", string(domain.CategoryAll), "category filter (all, mail, productivity, family, calendar)")
	cmd.Flags().StringVar(&searchFlag, "search", "", "match name or description")
	return cmd
}

// findCard refreshes the overview and returns the card for providerType.
func findCard(cmd *cobra.Command, svc *app.IntegrationService, providerType string) (domain.Card, error) {
	ov := svc.Refresh(cmd.Context())
	for _, c := range ov.Cards {
		if c.ProviderType == providerType {
			if ov.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", app.Describe(ov.Err, app.PageIntegrations))
			}
			return c, nil
		}
	}
	if ov.Err != nil {
		return domain.Card{}, describe(ov.Err, app.PageIntegrations)
	}
	return domain.Card{}, fmt.Errorf("unknown provider: %s", providerType)
}

func providerArg(args []string) string {
	if len(args) == 0 {
		return domain.ProviderGmail
	}
	return strings.ToLower(args[0])
}

func newConnectCmd() *cobra.Command {
	var waitFlag time.Duration

	cmd := &cobra.Command{
		Use:   "connect [provider]",
		Short: "Connect or reconnect a provider (defaults to gmail)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			cb, err := callback.Listen()
			if err != nil {
				return err
			}
			defer cb.Close()

			reconnector := app.NewReconnector(s.client, printNavigator(cmd.ErrOrStderr()))
			svc := app.NewIntegrationService(s.client, reconnector)
			card, err := findCard(cmd, svc, providerArg(args))
			if err != nil {
				return err
			}

			action, err := svc.PrimaryAction(cmd.Context(), card, cb.RedirectURI())
			if err != nil {
				return describe(err, app.PageIntegrations)
			}
			if action == domain.ActionConfigure {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already connected. Use 'assist integrations configure %s' to change its settings.\n",
					card.Name, card.ProviderType)
				return nil
			}
			if err := awaitRedirect(cmd.Context(), cb, waitFlag); err != nil {
				return err
			}

			card, err = findCard(cmd, svc, card.ProviderType)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: strings.ToLower(string(action)), Provider: card.ProviderType, IntegrationID: card.IntegrationID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s.\n", card.Name, strings.ToLower(card.StatusText()))
			return nil
		},
	}

	cmd.Flags().DurationVar(&waitFlag, "wait", 5*time.Minute, "how long to wait for the browser to return")
	return cmd
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect [provider]",
		Short: "Remove a provider integration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			svc := app.NewIntegrationService(s.client, nil)
			card, err := findCard(cmd, svc, providerArg(args))
			if err != nil {
				return err
			}
			if _, err := svc.Disconnect(cmd.Context(), card); err != nil {
				return describe(err, app.PageIntegrations)
			}

			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: "disconnect", Provider: card.ProviderType, IntegrationID: card.IntegrationID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s disconnected.\n", card.Name)
			return nil
		},
	}
}

func newToggleCmd(name string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [provider]",
		Short: strings.ToUpper(name[:1]) + name[1:] + " syncing for a provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			svc := app.NewIntegrationService(s.client, nil)
			card, err := findCard(cmd, svc, providerArg(args))
			if err != nil {
				return err
			}
			ov, err := svc.SetEnabled(cmd.Context(), card, on)
			if err != nil {
				return describe(err, app.PageIntegrations)
			}

			status := card.Status
			if in, ok := ov.ByProvider[card.ProviderType]; ok {
				status = in.Status
			}
			if jsonFlag {
				return printJSON(cmd, jsonAction{OK: true, Action: name, Provider: card.ProviderType, IntegrationID: card.IntegrationID, Status: string(status)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", card.Name, strings.ToLower(domain.StatusLabel(string(status))))
			return nil
		},
	}
}

func newConfigureCmd() *cobra.Command {
	var queryFlag, labelsFlag, maxFlag string

	cmd := &cobra.Command{
		Use:   "configure [provider]",
		Short: "Change the sync settings of a connected provider",
		Long:  "Change the Gmail query, label IDs (comma separated) and page size. Unset flags keep their current value.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			svc := app.NewIntegrationService(s.client, nil)
			card, err := findCard(cmd, svc, providerArg(args))
			if err != nil {
				return err
			}
			if card.ProviderType != domain.ProviderGmail {
				return describe(app.ErrUnsupportedProvider, app.PageIntegrations)
			}

			var current *domain.Integration
			if in, ok := svc.Last().ByProvider[card.ProviderType]; ok {
				current = &in
			}
			query, labels, maxResults := app.SettingsFields(current)
			if cmd.Flags().Changed("query") {
				query = queryFlag
			}
			if cmd.Flags().Changed("labels") {
				labels = labelsFlag
			}
			if cmd.Flags().Changed("max-results") {
				maxResults = maxFlag
			}

			ov, err := svc.Configure(cmd.Context(), card.ProviderType, app.ParseSettings(query, labels, maxResults))
			if err != nil {
				return describe(err, app.PageIntegrations)
			}

			in := ov.ByProvider[card.ProviderType]
			if jsonFlag {
				return printJSON(cmd, toJSONSettings(&in))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Query:\t%s\n", in.Query())
			fmt.Fprintf(w, "Labels:\t%s\n", strings.Join(in.LabelIDs(), ", "))
			fmt.Fprintf(w, "Max results:\t%d\n", in.MaxResults())
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&queryFlag, "query", "", "Gmail search query applied to every listing")
	cmd.Flags().StringVar(&labelsFlag, "labels", "", "comma separated label IDs")
	cmd.Flags().StringVar(&maxFlag, "max-results", "", "messages per page (1-100)")
	return cmd
}
