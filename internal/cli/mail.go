package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
	"github.com/lu-zhengda/assist/internal/domain"
)

func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Browse the Gmail inbox through the backend",
	}
	cmd.AddCommand(newMailListCmd())
	cmd.AddCommand(newMailShowCmd())
	return cmd
}

// inboxRun is one CLI inbox invocation: a session, a loopback redirect
// target and an inbox service wired to both.
type inboxRun struct {
	s     *session
	cb    *callback.Server
	inbox *app.InboxService
	saved *domain.MailSession
	wait  time.Duration
}

func openInbox(ctx context.Context, wait time.Duration, stderr io.Writer) (*inboxRun, error) {
	s, err := openSession(ctx)
	if err != nil {
		return nil, err
	}
	cb, err := callback.Listen()
	if err != nil {
		s.Close()
		return nil, err
	}
	saved, err := s.db.GetMailSession(ctx, s.profile.ID)
	if err != nil {
		cb.Close()
		s.Close()
		return nil, err
	}
	reconnector := app.NewReconnector(s.client, printNavigator(stderr))
	return &inboxRun{
		s:     s,
		cb:    cb,
		inbox: app.NewInboxService(s.client, reconnector, cb.RedirectURI()),
		saved: saved,
		wait:  wait,
	}, nil
}

func (r *inboxRun) Close() {
	r.cb.Close()
	r.s.Close()
}

// preferred picks the integration to list: the flag, then config, then the
// one used last time.
func (r *inboxRun) preferred(flag string) string {
	for _, id := range []string{flag, r.s.cfg.Mail.Integration, r.saved.IntegrationID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// load fetches the current page. An expired session hands off to the
// consent screen, waits for the redirect and tries once more.
func (r *inboxRun) load(ctx context.Context) error {
	if err := r.inbox.Load(ctx); err != nil {
		return err
	}
	if r.inbox.Pager().State() != app.StateReauthorizing {
		return nil
	}
	if err := awaitRedirect(ctx, r.cb, r.wait); err != nil {
		return err
	}
	if err := r.inbox.LoadIntegrations(ctx, r.inbox.Pager().IntegrationID()); err != nil {
		return err
	}
	return r.inbox.Load(ctx)
}

func (r *inboxRun) save(ctx context.Context) error {
	return r.s.db.SaveMailSession(ctx, r.s.profile.ID, r.inbox.Pager().Session())
}

func newMailListCmd() *cobra.Command {
	var (
		filterFlag  string
		searchFlag  string
		accountFlag string
		nextFlag    bool
		prevFlag    bool
		waitFlag    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of email",
		Long:  "List the first page of email for a filter and search, or move through the last listing with --next and --prev.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.EmailFilter(strings.ToLower(filterFlag))
			switch filter {
			case domain.FilterAll, domain.FilterUnread, domain.FilterTasks:
			default:
				return fmt.Errorf("unknown filter: %s (use all, unread, or tasks)", filterFlag)
			}

			r, err := openInbox(cmd.Context(), waitFlag, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer r.Close()

			pager := r.inbox.Pager()
			paging := nextFlag || prevFlag
			if paging {
				if r.saved.IntegrationID == "" {
					return errors.New("no previous listing; run 'assist mail list' first")
				}
				pager.Restore(*r.saved)
			}
			before := pager.Session()

			if err := r.inbox.LoadIntegrations(cmd.Context(), r.preferred(accountFlag)); err != nil {
				return describe(err, app.PageInbox)
			}
			active := r.inbox.Active()
			if active == nil {
				return describe(app.ErrNoEmailIntegration, app.PageInbox)
			}
			if accountFlag != "" && active.ID != accountFlag {
				return fmt.Errorf("integration not found: %s", accountFlag)
			}

			if paging {
				after := pager.Session()
				if after.IntegrationID != before.IntegrationID || after.BaseQuery != before.BaseQuery {
					return errors.New("the previous listing no longer applies; run 'assist mail list' again")
				}
				if nextFlag && !pager.Next() {
					return errors.New("already on the last page")
				}
				if prevFlag && !pager.Prev() {
					return errors.New("already on the first page")
				}
			} else {
				pager.SetFilter(filter)
				pager.SetSearch(searchFlag)
			}

			if notice := app.Notice(active); notice != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), notice)
			}
			if r.inbox.Unavailable() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Gmail is disconnected. Run 'assist integrations enable' to resume syncing.\n")
			} else if err := r.load(cmd.Context()); err != nil {
				return describe(err, app.PageInbox)
			}

			if err := r.save(cmd.Context()); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, toJSONPage(pager))
			}
			return printPage(cmd, pager, active.AccountLabel(r.inbox.ActiveIndex()))
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", string(domain.FilterAll), "filter (all, unread, tasks)")
	cmd.Flags().StringVar(&searchFlag, "search", "", "free-text search added to the integration's query")
	cmd.Flags().StringVar(&accountFlag, "account", "", "integration ID (defaults to config, then the last one used)")
	cmd.Flags().BoolVar(&nextFlag, "next", false, "show the page after the last listing")
	cmd.Flags().BoolVar(&prevFlag, "prev", false, "show the page before the last listing")
	cmd.Flags().DurationVar(&waitFlag, "wait", 5*time.Minute, "how long to wait for the browser when Gmail access expired")
	cmd.MarkFlagsMutuallyExclusive("next", "prev")
	cmd.MarkFlagsMutuallyExclusive("next", "filter")
	cmd.MarkFlagsMutuallyExclusive("next", "search")
	cmd.MarkFlagsMutuallyExclusive("prev", "filter")
	cmd.MarkFlagsMutuallyExclusive("prev", "search")
	return cmd
}

func printPage(cmd *cobra.Command, pager *app.Paginator, account string) error {
	out := cmd.OutOrStdout()
	items := pager.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No messages found.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNREAD\tFROM\tSUBJECT\tDATE\tID")
	for i := range items {
		m := &items[i]
		unread := " "
		if m.IsUnread() {
			unread = "*"
		}
		from := truncate(m.Sender().DisplayName(), 30)
		subject := truncate(m.SubjectText(), 50)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", unread, from, subject, m.ListDate(now), m.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var nav []string
	if pager.HasPrev() {
		nav = append(nav, "--prev")
	}
	if pager.HasNext() {
		nav = append(nav, "--next")
	}
	footer := fmt.Sprintf("\n%s, page %d", account, pager.PageIndex()+1)
	if len(nav) > 0 {
		footer += " (" + strings.Join(nav, ", ") + ")"
	}
	fmt.Fprintln(out, footer)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func newMailShowCmd() *cobra.Command {
	var waitFlag time.Duration

	cmd := &cobra.Command{
		Use:   "show <message-id>",
		Short: "Show a message from the last listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInbox(cmd.Context(), waitFlag, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer r.Close()

			if r.saved.IntegrationID == "" {
				return errors.New("no previous listing; run 'assist mail list' first")
			}
			pager := r.inbox.Pager()
			pager.Restore(*r.saved)
			if err := r.inbox.LoadIntegrations(cmd.Context(), r.saved.IntegrationID); err != nil {
				return describe(err, app.PageInbox)
			}
			if err := r.load(cmd.Context()); err != nil {
				return describe(err, app.PageInbox)
			}
			if !pager.Select(args[0]) {
				return fmt.Errorf("message %s is not on the current page", args[0])
			}
			msg := pager.Selected()

			if jsonFlag {
				return printJSON(cmd, toJSONEmailDetail(msg))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject: %s\n", msg.SubjectText())
			fmt.Fprintf(out, "From: %s\n", msg.Sender())
			if msg.To != "" {
				fmt.Fprintf(out, "To: %s\n", msg.To)
			}
			fmt.Fprintf(out, "Date: %s\n", msg.DetailDate())
			if len(msg.Labels) > 0 {
				fmt.Fprintf(out, "Labels: %s\n", strings.Join(msg.Labels, ", "))
			}
			fmt.Fprintln(out, strings.Repeat("─", 60))
			fmt.Fprintf(out, "Summary: %s\n", msg.SummaryText())
			fmt.Fprintln(out, strings.Repeat("─", 60))
			fmt.Fprintln(out, strings.Join(msg.Paragraphs(), "\n\n"))
			return nil
		},
	}

	cmd.Flags().DurationVar(&waitFlag, "wait", 5*time.Minute, "how long to wait for the browser when Gmail access expired")
	return cmd
}
