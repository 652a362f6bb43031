// Package gate decides whether a review blocks the run, based on a
// configured set of blocking severities.
package gate

import (
	"encoding/json"
	"fmt"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

// DefaultBlocking is the safe default used when the configured set
// cannot be parsed at all.
var DefaultBlocking = []review.Severity{
	review.SeverityCritical,
	review.SeveritySecurity,
}

// Evaluator holds the validated blocking severity set
type Evaluator struct {
	blocking map[review.Severity]struct{}
	logger   *loggy.Logger
}

// NewEvaluator creates an Evaluator from a JSON array of severity
// strings (e.g. `["high","critical","security"]`). Malformed JSON is
// recovered with the safe default and logged; an entry outside the
// closed severity set is a configuration error and is not.
func NewEvaluator(configured string, logger *loggy.Logger) (*Evaluator, error) {
	severities := DefaultBlocking

	if configured != "" {
		var raw []string
		if err := json.Unmarshal([]byte(configured), &raw); err != nil {
			logger.Warn("blocking severities config is not valid JSON, using default",
				"config", configured,
				"default", DefaultBlocking,
				"error", err)
		} else {
			severities = make([]review.Severity, 0, len(raw))
			for _, s := range raw {
				sev, ok := review.ParseSeverity(s)
				if !ok {
					return nil, fmt.Errorf("invalid blocking severity %q", s)
				}
				severities = append(severities, sev)
			}
		}
	}

	blocking := make(map[review.Severity]struct{}, len(severities))
	for _, s := range severities {
		blocking[s] = struct{}{}
	}
	return &Evaluator{blocking: blocking, logger: logger}, nil
}

// Blocks reports whether the review fails the gate: true iff at least
// one finding's severity is in the blocking set.
func (e *Evaluator) Blocks(rev review.Review) bool {
	for _, f := range rev.Findings {
		if _, ok := e.blocking[f.Severity]; ok {
			e.logger.Info("gate blocked by finding",
				"severity", f.Severity,
				"title", f.Title,
				"file", f.File)
			return true
		}
	}
	return false
}

// Blocking returns the active blocking set, for display
func (e *Evaluator) Blocking() []review.Severity {
	out := make([]review.Severity, 0, len(e.blocking))
	for _, s := range review.Severities {
		if _, ok := e.blocking[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
