package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/assist/internal/mockserver"
)

func newMockServerCmd() *cobra.Command {
	var (
		addrFlag  string
		tokenFlag string
		seedFlag  int
	)

	cmd := &cobra.Command{
		Use:    "mock-server",
		Short:  "Run a local stand-in for the assistant backend",
		Long:   "Serve the integrations, email and daily-feed endpoints from memory, including a fake Gmail consent screen.",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []mockserver.Option{
				mockserver.WithRequestLog(cmd.ErrOrStderr()),
			}
			if tokenFlag != "" {
				opts = append(opts, mockserver.WithToken(tokenFlag))
			}
			if seedFlag > 0 {
				opts = append(opts, mockserver.WithDemoMailbox(seedFlag))
			}
			mock := mockserver.New(opts...)

			srv := &http.Server{
				Addr:              addrFlag,
				Handler:           mock.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "mock backend listening on http://%s\n", addrFlag)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("mock server failed: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to stop mock server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "127.0.0.1:8000", "listen address")
	cmd.Flags().StringVar(&tokenFlag, "token", "", "require this bearer token on /api/v1")
	cmd.Flags().IntVar(&seedFlag, "seed", 45, "connect a demo Gmail integration with this many messages (0 for none)")
	return cmd
}
