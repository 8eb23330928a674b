// ABOUTME: Metric extraction rules: a table from metric name to pattern and unit.
// ABOUTME: Rules are data; new metrics are added by appending entries, not code.
package metricparse

import (
	"fmt"
	"regexp"

	"github.com/harperreed/labtrack/internal/models"
)

// Rule describes how one metric is found in free text.
type Rule struct {
	// Name is the metric name stamped on extracted values.
	Name models.MetricName `json:"name"`

	// Label is the literal text preceding the value. Defaults to Name.
	Label string `json:"label,omitempty"`

	// Pattern overrides the generated expression. It must contain at least
	// one capture group; the first group is parsed as the value.
	Pattern string `json:"pattern,omitempty"`

	// Unit is the literal unit expected after the value.
	Unit string `json:"unit"`
}

// DefaultRules returns the built-in Hemoglobin, Glucose and CRP rules.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(models.AllMetricNames))
	for _, n := range models.AllMetricNames {
		rules = append(rules, Rule{Name: n, Unit: models.MetricUnits[n]})
	}
	return rules
}

// Expression returns the regular expression source used for this rule.
// Generated expressions are case-insensitive: the label, an optional run of
// colons or whitespace, a decimal number, optional whitespace, then the unit.
func (r Rule) Expression() string {
	if r.Pattern != "" {
		return r.Pattern
	}
	label := r.Label
	if label == "" {
		label = string(r.Name)
	}
	return `(?i)` + regexp.QuoteMeta(label) + `[:\s]*(\d+(?:\.\d*)?|\.\d+)\s*` + regexp.QuoteMeta(r.Unit)
}

// compile validates the rule and compiles its expression.
func (r Rule) compile() (*regexp.Regexp, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("rule has no name")
	}
	if r.Pattern == "" && r.Unit == "" {
		return nil, fmt.Errorf("rule %s: unit or pattern required", r.Name)
	}
	re, err := regexp.Compile(r.Expression())
	if err != nil {
		return nil, fmt.Errorf("rule %s: compile pattern: %w", r.Name, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("rule %s: pattern has no capture group", r.Name)
	}
	return re, nil
}
