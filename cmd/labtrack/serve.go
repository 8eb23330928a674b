// ABOUTME: CLI command that runs the HTTP API.
// ABOUTME: Shuts down cleanly on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/auth"
	"github.com/harperreed/labtrack/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Every route except registration uses HTTP basic auth
with labtrack accounts.

ROUTES:

  POST /api/register               {"username", "password"}
  POST /api/uploads                multipart: category, file
  GET  /api/metrics                ?category=&metric=&limit=
  GET  /api/metrics/{name}/trend
  GET  /api/metrics/{name}/latest
  GET  /api/files                  ?keyword=&category=&after=YYYY-MM-DD
  POST /api/files/{id}/summary
  GET  /healthz

EXAMPLES:

  labtrack serve
  labtrack serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, parser, err := newPipeline()
		if err != nil {
			return err
		}

		sc := cfg.GetServer()
		if serveAddr != "" {
			sc.Addr = serveAddr
		}

		deps := httpapi.Deps{
			Auth:           auth.NewService(repo),
			Uploads:        newUploads(p),
			Store:          repo,
			Pipeline:       p,
			Rules:          parser.Rules(),
			Logger:         logger,
			MaxUploadBytes: int64(sc.MaxUploadMB) << 20,
		}
		if sum, err := newSummarizer(); err == nil {
			deps.Summarizer = sum
		} else {
			logger.Warn("summaries disabled", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		color.Green("✓ Listening on http://%s", sc.Addr)
		err = httpapi.New(deps).ListenAndServe(ctx, sc.Addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}
