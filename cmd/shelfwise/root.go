// cmd/shelfwise/root.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
	"github.com/vasujain275/shelfwise-sub000/internal/config"
	"github.com/vasujain275/shelfwise-sub000/internal/session"
)

// app wires the configured API client and session for one invocation.
// The access token persists in a dotfile so successive commands stay
// signed in.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Session
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "shelfwise",
		Short:         "Library circulation console",
		Long:          "ShelfWise is a circulation console for issuing, returning, and renewing library books against the ShelfWise backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd.Name())
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSearchCmd(a),
		newIssueCmd(a),
		newReturnCmd(a),
		newRenewCmd(a),
		newImportCmd(a),
		newReceiptCmd(a),
		newReportCmd(a),
		newBarcodeCmd(a),
	)
	return root
}

func (a *app) initialize(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithLogger(api.NewSlogLogger(logger)),
		api.WithRateLimit(cfg.RateLimitRPS, 5),
	)
	if err != nil {
		return err
	}
	a.client = client
	a.session = session.New(client)

	// Login has no token yet; every other command restores the saved one.
	if command == "login" {
		return nil
	}
	if token, err := loadToken(); err == nil && token != "" {
		client.SetAuthToken(token)
		a.session.InspectToken(token)
	}
	return nil
}

func (a *app) requireLending(cmd *cobra.Command) error {
	if err := a.session.Initialize(cmd.Context()); err != nil {
		return err
	}
	if err := a.session.RequireLendingAccess(); err != nil {
		if err == session.ErrNotSignedIn {
			return fmt.Errorf("not signed in, run `shelfwise login` first")
		}
		return err
	}
	return nil
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".shelfwise", "token"), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func clearToken() {
	if path, err := tokenPath(); err == nil {
		os.Remove(path)
	}
}
