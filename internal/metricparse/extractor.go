// ABOUTME: Pattern-based metric extractor over raw document text.
// ABOUTME: Applies each rule once, first match wins, stamped with the processing date.
package metricparse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/harperreed/labtrack/internal/models"
	"go.uber.org/zap"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Extractor turns text into ExtractedMetrics using a fixed rule table.
// It is safe for concurrent use.
type Extractor struct {
	rules  []compiledRule
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the processing-date source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithLogger sets the logger used for unparseable captures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New compiles rules into an Extractor. Rule names must be unique.
func New(rules []Rule, opts ...Option) (*Extractor, error) {
	e := &Extractor{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	seen := make(map[models.MetricName]bool, len(rules))
	for _, r := range rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule for metric %s", r.Name)
		}
		seen[r.Name] = true

		re, err := r.compile()
		if err != nil {
			return nil, err
		}
		e.rules = append(e.rules, compiledRule{rule: r, re: re})
	}
	return e, nil
}

// NewDefault returns an Extractor over DefaultRules.
func NewDefault(opts ...Option) *Extractor {
	e, err := New(DefaultRules(), opts...)
	if err != nil {
		panic(fmt.Sprintf("default metric rules: %v", err))
	}
	return e
}

// Rules returns a copy of the configured rules in declaration order.
func (e *Extractor) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, cr := range e.rules {
		out[i] = cr.rule
	}
	return out
}

// Extract scans text with every rule. The result follows rule order, not
// text order, and holds at most one value per metric. No match is not an error.
func (e *Extractor) Extract(text string) []models.ExtractedMetric {
	metrics := []models.ExtractedMetric{}
	if text == "" {
		return metrics
	}

	day := models.Day(e.now())
	for _, cr := range e.rules {
		match := cr.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			e.logger.Warn("unparseable metric value",
				zap.String("metric", string(cr.rule.Name)),
				zap.String("capture", match[1]),
				zap.Error(err))
			continue
		}
		metrics = append(metrics, models.ExtractedMetric{
			Name:         cr.rule.Name,
			Value:        value,
			ObservedDate: day,
		})
	}
	return metrics
}
