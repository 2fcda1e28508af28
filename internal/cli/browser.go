package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"time"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
)

// openURL opens a URL in the user's browser. Tests replace it.
var openURL = openBrowser

func openBrowser(u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		cmd = exec.Command("xdg-open", u)
	}
	_, err := startDetached(cmd)
	return err
}

// startDetached starts cmd and reaps it in the background. The channel
// receives the exit result once the process is gone.
func startDetached(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	return done, nil
}

// printNavigator prints the authorization URL and tries to open it.
func printNavigator(w io.Writer) app.Navigator {
	return app.NavigatorFunc(func(ctx context.Context, authURL string) error {
		fmt.Fprintf(w, "\nOpen this URL in your browser to continue:\n\n  %s\n\nWaiting for authorization...\n", authURL)
		if err := openURL(authURL); err != nil {
			log.Printf("[cli] failed to open browser: %v", err)
		}
		return nil
	})
}

// awaitRedirect blocks until the backend sends the browser back or timeout
// elapses.
func awaitRedirect(ctx context.Context, cb *callback.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := cb.Wait(ctx); err != nil {
		return fmt.Errorf("failed to complete authorization: %w", err)
	}
	return nil
}
