// ABOUTME: Builders that wire config into the pipeline, uploads, and summarizer.
// ABOUTME: Shared by the ingest, query, serve, and mcp commands.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/labtrack/internal/filestore"
	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/pipeline"
	"github.com/harperreed/labtrack/internal/summarize"
	"github.com/harperreed/labtrack/internal/textextract"
	"github.com/harperreed/labtrack/internal/upload"
)

// newParser builds the metric extractor from the configured rule table.
func newParser() (*metricparse.Extractor, error) {
	parser, err := metricparse.New(cfg.GetMetricRules(), metricparse.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("invalid metric rules: %w", err)
	}
	return parser, nil
}

// newPipeline builds the orchestrator over repo.
func newPipeline() (*pipeline.Orchestrator, *metricparse.Extractor, error) {
	parser, err := newParser()
	if err != nil {
		return nil, nil, err
	}

	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, nil, err
	}

	reg := textextract.NewDefaultRegistry(cfg.ExtractorOptions())
	p := pipeline.New(reg, parser, repo,
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(timeout),
		pipeline.WithWorkers(cfg.OCR.Workers),
	)
	return p, parser, nil
}

// newUploads wires the file store to p.
func newUploads(p *pipeline.Orchestrator) *upload.Service {
	files := filestore.New(cfg.GetUploadDir(), repo, filestore.WithLogger(logger))
	return upload.NewService(files, p, logger)
}

// newSummarizer reads the API key from the configured environment variable.
func newSummarizer() (*summarize.Client, error) {
	sc := cfg.GetSummarizer()
	key := os.Getenv(sc.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", summarize.ErrNoAPIKey, sc.APIKeyEnv)
	}
	return summarize.New(summarize.Config{
		APIKey:  key,
		BaseURL: sc.BaseURL,
		Model:   sc.Model,
	})
}

// currentUser resolves --user or the configured default and checks it exists.
func currentUser() (string, error) {
	username := flagUser
	if username == "" {
		username = cfg.DefaultUser
	}
	if username == "" {
		return "", fmt.Errorf("no user selected: pass --user or run 'labtrack user login <name> --save'")
	}
	if _, err := repo.GetUser(username); err != nil {
		return "", fmt.Errorf("unknown user %s: %w", username, err)
	}
	return username, nil
}

// unitFor returns the configured unit for name.
func unitFor(name models.MetricName) string {
	for _, r := range cfg.GetMetricRules() {
		if r.Name == name {
			return r.Unit
		}
	}
	return models.MetricUnits[name]
}

// metricArg canonicalizes a metric name typed on the command line.
func metricArg(s string) models.MetricName {
	if n, ok := models.IsKnownMetricName(s); ok {
		return n
	}
	for _, r := range cfg.GetMetricRules() {
		if string(r.Name) == s {
			return r.Name
		}
	}
	return models.MetricName(s)
}
