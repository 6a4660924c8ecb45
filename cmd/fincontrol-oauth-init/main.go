// Command fincontrol-oauth-init authorizes the Sheets mirror with a Google
// user account and stores the resulting token in GOOGLE_OAUTH_TOKEN_FILE.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"fincontrol/internal/cli"
	"fincontrol/internal/config"
	"fincontrol/internal/log"
	gsheet "fincontrol/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentSheets)

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger, "OAuth authorization failed", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	clientJSON, err := gsheet.ReadOAuthClient(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return err
	}
	// The OAuth client must list this redirect URI.
	redirectURL := "http://localhost:" + cfg.OAuthRedirectPort + "/callback"
	oauthCfg, err := gsheet.OAuthConfig(clientJSON, redirectURL)
	if err != nil {
		return err
	}

	tokenFile := cfg.GoogleOAuthTokenFile
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", e)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})
	srv := &http.Server{
		Addr:              ":" + cfg.OAuthRedirectPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	fmt.Printf("Open this URL to authorize:\n%s\n", oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	if err := gsheet.SaveToken(tokenFile, tok); err != nil {
		return err
	}
	logger.Info("Saved OAuth token", "path", tokenFile)
	return nil
}
