// Package interpret turns an untrusted free-text model response into a
// normalized review.Review through an ordered cascade of parsing
// strategies. Interpretation never fails: when no strategy recognizes
// the input, the result is a loud parse-failure review rather than an
// error or a silent "no issues".
package interpret

import (
	"encoding/json"
	"strings"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

// Interpreter runs the parsing cascade over raw model responses
type Interpreter struct {
	logger *loggy.Logger
}

// NewInterpreter creates a new Interpreter
func NewInterpreter(logger *loggy.Logger) *Interpreter {
	return &Interpreter{logger: logger}
}

// strategy attempts to extract a Review from raw text. The boolean
// reports whether the strategy recognized the input; the first strategy
// to do so wins.
type strategy func(string) (review.Review, bool)

// Interpret resolves raw response text to a Review. It absorbs all
// parse failures: malformed input degrades through the cascade and
// terminates in a visible parse-failure review.
func (i *Interpreter) Interpret(raw string) review.Review {
	strategies := []struct {
		name string
		fn   strategy
	}{
		{"strict-schema", decodeStrict},
		{"embedded-json", decodeEmbedded},
		{"marker-text", decodeMarkers},
	}

	for _, s := range strategies {
		if rev, ok := s.fn(raw); ok {
			i.logger.Debug("response interpreted",
				"strategy", s.name,
				"findings", len(rev.Findings),
				"risk", rev.Risk)
			return rev
		}
	}

	i.logger.Warn("response format not recognized, flagging for manual review",
		"length", len(raw))
	return parseFailureReview()
}

// wireReview mirrors the JSON schema the prompt instructs the model to
// produce. It is shared by the strict and lenient decode paths.
type wireReview struct {
	Summary string          `json:"summary"`
	Risk    string          `json:"overall_risk"`
	Issues  json.RawMessage `json:"issues"`
}

type wireFinding struct {
	File       string          `json:"file"`
	Line       any             `json:"line"`
	Severity   string          `json:"severity"`
	Title      string          `json:"title"`
	Detail     string          `json:"detail"`
	Suggestion string          `json:"suggestion"`
	Tags       json.RawMessage `json:"tags"`
}

// decodeStrict is the "producer honored the contract" path: the entire
// input is one JSON document matching the schema exactly, with every
// closed-set field already a valid member. No coercion is applied.
func decodeStrict(raw string) (review.Review, bool) {
	var wire wireReview
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&wire); err != nil {
		return review.Review{}, false
	}
	// Trailing non-whitespace means the input was not a single document
	if dec.More() {
		return review.Review{}, false
	}

	if strings.TrimSpace(wire.Summary) == "" || wire.Issues == nil {
		return review.Review{}, false
	}
	risk := review.Risk(wire.Risk)
	if !risk.Valid() {
		return review.Review{}, false
	}

	var issues []wireFinding
	if err := json.Unmarshal(wire.Issues, &issues); err != nil {
		return review.Review{}, false
	}

	rev := review.Review{
		Summary:  wire.Summary,
		Risk:     risk,
		Findings: make([]review.Finding, 0, len(issues)),
	}
	for _, w := range issues {
		sev := review.Severity(w.Severity)
		if !sev.Valid() {
			return review.Review{}, false
		}
		f := review.Finding{
			File:       w.File,
			Line:       parseLine(w.Line),
			Severity:   sev,
			Title:      w.Title,
			Detail:     w.Detail,
			Suggestion: w.Suggestion,
			Tags:       parseTags(w.Tags),
		}
		f.Normalize()
		rev.Findings = append(rev.Findings, f)
	}
	return rev, true
}

// decodeEmbedded tolerates prose around the payload: it extracts the
// first balanced top-level JSON object from the text and decodes it
// leniently, filling missing fields with defaults and degrading unknown
// severity and risk tokens instead of failing the record.
func decodeEmbedded(raw string) (review.Review, bool) {
	span, ok := firstJSONObject(raw)
	if !ok {
		return review.Review{}, false
	}

	var wire wireReview
	if err := json.Unmarshal([]byte(span), &wire); err != nil {
		return review.Review{}, false
	}

	// A non-array issues value is degraded to an empty sequence
	var issues []wireFinding
	if wire.Issues != nil {
		if err := json.Unmarshal(wire.Issues, &issues); err != nil {
			issues = nil
		}
	}

	rev := review.Review{
		Summary:  wire.Summary,
		Findings: make([]review.Finding, 0, len(issues)),
	}
	if strings.TrimSpace(rev.Summary) == "" {
		rev.Summary = review.DefaultSummary
	}

	for _, w := range issues {
		f := review.Finding{
			File:       w.File,
			Line:       parseLine(w.Line),
			Severity:   review.MapStringToSeverity(w.Severity),
			Title:      w.Title,
			Detail:     w.Detail,
			Suggestion: w.Suggestion,
			Tags:       parseTags(w.Tags),
		}
		f.Normalize()
		rev.Findings = append(rev.Findings, f)
	}

	if risk, ok := review.ParseRisk(wire.Risk); ok {
		rev.Risk = risk
	} else {
		rev.Risk = review.DeriveRisk(rev.Findings)
	}
	return rev, true
}

// firstJSONObject returns the first balanced top-level {...} span in
// the text. Brace depth is tracked with string and escape awareness so
// braces inside JSON string values do not unbalance the scan.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case !inString && c == '{':
				depth++
			case !inString && c == '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		// Unbalanced from this opening brace; try the next one
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// parseLine accepts a line number as a JSON number or a numeric string
func parseLine(v any) int {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int(n)
		}
	case string:
		line := 0
		for _, c := range n {
			if c < '0' || c > '9' {
				return 0
			}
			line = line*10 + int(c-'0')
		}
		return line
	}
	return 0
}

// parseTags accepts tags only when they are an array of strings
func parseTags(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

// parseFailureReview is the terminal "loud failure" value: a single
// tagged finding so a human always sees that interpretation failed,
// never a silent clean review.
func parseFailureReview() review.Review {
	f := review.Finding{
		File:     review.FileUnknown,
		Severity: review.SeverityMedium,
		Title:    "Unrecognized response format",
		Detail:   "The reviewer's response did not match any supported format, so no findings could be extracted.",
		Tags:     []string{review.TagParseError},
	}
	return review.Review{
		Summary:  "The automated review response could not be interpreted. Manual review is recommended.",
		Risk:     review.RiskMedium,
		Findings: []review.Finding{f},
	}
}
