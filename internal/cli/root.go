package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/oauth2"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
	"github.com/lu-zhengda/assist/internal/config"
	"github.com/lu-zhengda/assist/internal/domain"
	"github.com/lu-zhengda/assist/internal/store"
	"github.com/lu-zhengda/assist/internal/store/sqlite"
	"github.com/lu-zhengda/assist/internal/tui"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool
)

func NewRootCmd() *cobra.Command {
	var viewFlag string

	root := &cobra.Command{
		Use:     "assist",
		Short:   "Personal assistant dashboard in the terminal",
		Long:    "A terminal client for the personal-assistant backend: dashboard, integrations and Gmail inbox.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(os.Stdout)
				case "zsh":
					return cmd.Root().GenZshCompletion(os.Stdout)
				case "fish":
					return cmd.Root().GenFishCompletion(os.Stdout, true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}

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

			saved, err := s.db.GetMailSession(cmd.Context(), s.profile.ID)
			if err != nil {
				return err
			}

			view := viewFlag
			if view == "" {
				view = s.cfg.UI.DefaultView
			}
			nav := tui.NewNavigator(openURL)
			reconnector := app.NewReconnector(s.client, nav)

			return tui.Run(tui.Options{
				Inbox:        app.NewInboxService(s.client, reconnector, cb.RedirectURI()),
				Integrations: app.NewIntegrationService(s.client, reconnector),
				Dashboard:    s.dashboard(nil, nil),
				Navigator:    nav,
				Callback:     cb,
				RedirectURI:  cb.RedirectURI(),
				Session:      saved,
				SaveSession: func(sess domain.MailSession) error {
					return s.db.SaveMailSession(context.Background(), s.profile.ID, sess)
				},
				PreferredIntegration: s.cfg.Mail.Integration,
				StartView:            view,
				Name:                 s.cfg.Dashboard.Name,
				NewsLimit:            s.cfg.Dashboard.NewsLimit,
				NewsQuery:            s.cfg.Dashboard.Query,
				Debounce:             s.cfg.Mail.DebounceDuration(),
				Theme:                s.cfg.UI.Theme,
			})
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("assist %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.Flags().StringVar(&viewFlag, "view", "", "initial view (dashboard, integrations, inbox)")
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newIntegrationsCmd())
	root.AddCommand(newMailCmd())
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newMockServerCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// session bundles what most commands need: config, local database, the
// backend profile and an authenticated client.
type session struct {
	cfg     *config.Config
	db      *sqlite.DB
	profile *domain.Profile
	client  *api.Client
	logFile *os.File
	tracer  *sdktrace.TracerProvider
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logFile, err := setupLogging()
	if err != nil {
		return nil, err
	}
	db, err := openDB()
	if err != nil {
		closeLog(logFile)
		return nil, err
	}
	profile, err := db.EnsureProfile(ctx, cfg.API.BaseURL)
	if err != nil {
		db.Close()
		closeLog(logFile)
		return nil, err
	}

	opts := []api.Option{
		api.WithDashboardURL(cfg.Dashboard.BaseURL),
		api.WithTimeout(cfg.API.TimeoutDuration()),
	}
	if tok := resolveToken(cfg, profile); tok != nil {
		opts = append(opts, api.WithToken(tok))
	}
	var tp *sdktrace.TracerProvider
	if cfg.API.Trace {
		tp, err = setupTracing(logFile)
		if err != nil {
			db.Close()
			closeLog(logFile)
			return nil, err
		}
		opts = append(opts, api.WithTracerProvider(tp))
	}
	log.Printf("[cli] using backend %s (profile %s)", cfg.API.BaseURL, profile.ID)

	return &session{
		cfg:     cfg,
		db:      db,
		profile: profile,
		client:  api.New(cfg.API.BaseURL, opts...),
		logFile: logFile,
		tracer:  tp,
	}, nil
}

func (s *session) Close() error {
	if s.tracer != nil {
		if err := s.tracer.Shutdown(context.Background()); err != nil {
			log.Printf("[cli] failed to flush traces: %v", err)
		}
	}
	err := s.db.Close()
	closeLog(s.logFile)
	return err
}

// dashboard builds the dashboard service. lat and lon override the
// configured location when non-nil.
func (s *session) dashboard(lat, lon *float64) *app.DashboardService {
	loc := app.StaticLocator{Lat: s.cfg.Location.Lat, Lon: s.cfg.Location.Lon}
	if lat != nil {
		loc.Lat = lat
	}
	if lon != nil {
		loc.Lon = lon
	}
	return app.NewDashboardService(s.client, loc, s.cfg.Location.Timezone)
}

// resolveToken picks the API token: config file or ASSIST_API_TOKEN first,
// then the keyring entry saved by 'assist login'. No token means anonymous
// requests.
func resolveToken(cfg *config.Config, profile *domain.Profile) *oauth2.Token {
	if cfg.API.Token != "" {
		return &oauth2.Token{AccessToken: cfg.API.Token, TokenType: "Bearer"}
	}
	tok, err := store.NewKeyringTokenStore().LoadToken(profile.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[cli] keyring unavailable, continuing without a token: %v", err)
		}
		return nil
	}
	return tok
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "assist.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogging sends the standard logger to <data dir>/assist.log so it
// never draws over the TUI or mixes with command output.
func setupLogging() (*os.File, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "assist.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// setupTracing exports API client spans to the log file and installs the
// provider globally.
func setupTracing(w io.Writer) (*sdktrace.TracerProvider, error) {
	tp, err := api.NewTracerProvider(w)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	log.Printf("[cli] request tracing enabled")
	return tp, nil
}

func closeLog(f *os.File) {
	log.SetOutput(os.Stderr)
	if f != nil {
		f.Close()
	}
}

// pageError carries the user-facing copy for err while keeping it
// inspectable with errors.Is and errors.As.
type pageError struct {
	msg string
	err error
}

func (e *pageError) Error() string { return e.msg }
func (e *pageError) Unwrap() error { return e.err }

func describe(err error, page app.Page) error {
	if err == nil {
		return nil
	}
	return &pageError{msg: app.Describe(err, page), err: err}
}
