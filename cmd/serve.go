package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/v0gen/v0gen/internal"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the generation HTTP server",
	Long: `Start the HTTP server that exposes the generation workflow.

Endpoints:
  POST /api/generate        Stream a generation run (server-sent events)
  GET  /api/sessions        List stored sessions
  POST /api/sessions/clear  Delete a session and its history
  GET  /health              Liveness probe

With ANTHROPIC_API_KEY set the workflow runs against the live model API;
otherwise a scripted backend replays a canned run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		db, err := internal.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer func() { _ = db.Close() }()

		store := internal.NewSessionStore(db)

		var client internal.ModelClient
		if cfg.LiveBackend() {
			client = internal.NewAnthropicClient(cfg.AnthropicKey)
			internal.LogInfo("Using live model backend (generator: %s)", cfg.GeneratorModel)
		} else {
			client = internal.NewScriptedClient()
			internal.LogWarn("ANTHROPIC_API_KEY not set, using scripted backend")
		}

		backend := internal.NewPipeline(cfg, client)
		runner := internal.NewRunner(store, backend, cfg.RequestTimeout)
		server := internal.NewServer(cfg, store, runner)

		httpServer := &http.Server{
			Addr:              cfg.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			internal.LogInfo("Listening on %s", cfg.Addr)
			errCh <- httpServer.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server exited: %w", err)
		case sig := <-sigCh:
			internal.LogInfo("Received %v, shutting down", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
