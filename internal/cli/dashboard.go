package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/domain"
)

func newDashboardCmd() *cobra.Command {
	var (
		limitFlag int
		queryFlag string
		latFlag   float64
		lonFlag   float64
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the daily feed: weather, news and a focus prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var lat, lon *float64
			if cmd.Flags().Changed("lat") {
				lat = &latFlag
			}
			if cmd.Flags().Changed("lon") {
				lon = &lonFlag
			}
			limit := s.cfg.Dashboard.NewsLimit
			if cmd.Flags().Changed("limit") {
				limit = limitFlag
			}
			query := s.cfg.Dashboard.Query
			if cmd.Flags().Changed("q") {
				query = queryFlag
			}

			feed, err := s.dashboard(lat, lon).Load(cmd.Context(), limit, query)
			if err != nil {
				return describe(err, app.PageDashboard)
			}

			if jsonFlag {
				return printJSON(cmd, feed)
			}
			printFeed(cmd, feed, s.cfg.Dashboard.Name, time.Now())
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", app.DefaultNewsLimit, "number of news items")
	cmd.Flags().StringVar(&queryFlag, "q", "", "news topic filter")
	cmd.Flags().Float64Var(&latFlag, "lat", 0, "latitude (overrides [location] lat)")
	cmd.Flags().Float64Var(&lonFlag, "lon", 0, "longitude (overrides [location] lon)")
	return cmd
}

func printFeed(cmd *cobra.Command, feed *domain.DailyFeed, name string, now time.Time) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, domain.Greeting(name, now.Hour()))
	fmt.Fprintf(out, "%s  (%s)\n", feed.WeatherLine(), feed.Weather.Location.Timezone)
	fmt.Fprintln(out)

	if feed.Mood.Affirmation != "" {
		fmt.Fprintln(out, feed.Mood.Affirmation)
	}
	if feed.Mood.FocusPrompt != "" {
		fmt.Fprintf(out, "Focus: %s\n", feed.Mood.FocusPrompt)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "News")
	fmt.Fprintln(out, strings.Repeat("─", 60))
	if len(feed.News) == 0 {
		fmt.Fprintln(out, "No news right now.")
		return
	}
	for i, n := range feed.News {
		fmt.Fprintf(out, "%d. %s\n", i+1, n.Headline)
		if n.Source != "" || n.URL != "" {
			fmt.Fprintf(out, "   %s  %s\n", n.Source, n.URL)
		}
	}
}
