// Package review defines the normalized result of interpreting one
// model response: a Review holding ordered Findings with closed-set
// severities and an overall risk level.
package review

import (
	"strings"
	"time"
)

// Severity classifies how important a single finding is
type Severity string

const (
	// SeverityInfo represents an informational note
	SeverityInfo Severity = "info"
	// SeverityLow represents a minor issue
	SeverityLow Severity = "low"
	// SeverityMedium represents an issue worth fixing
	SeverityMedium Severity = "medium"
	// SeverityHigh represents a serious issue
	SeverityHigh Severity = "high"
	// SeverityCritical represents an issue that must be fixed
	SeverityCritical Severity = "critical"
	// SeveritySecurity represents a security vulnerability
	SeveritySecurity Severity = "security"
)

// Risk classifies the aggregate risk of a whole review
type Risk string

const (
	// RiskLow indicates the change is safe to merge
	RiskLow Risk = "low"
	// RiskMedium indicates the change needs attention before merge
	RiskMedium Risk = "medium"
	// RiskHigh indicates the change has serious problems
	RiskHigh Risk = "high"
	// RiskCritical indicates the change must not merge as-is
	RiskCritical Risk = "critical"
)

const (
	// FileUnknown is the sentinel file value when no path could be recovered
	FileUnknown = "unknown"

	// TagParseError marks the synthetic finding emitted when no parsing
	// strategy could interpret the model response
	TagParseError = "parsing-error"

	// DefaultTitle is used when a finding carries no usable title
	DefaultTitle = "Unspecified issue"

	// DefaultDetail is used when a finding carries no explanation
	DefaultDetail = "No further detail was provided."

	// DefaultSummary is used when a review carries no summary text
	DefaultSummary = "No summary was provided."
)

// Severities lists every valid severity value
var Severities = []Severity{
	SeverityInfo,
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
	SeveritySecurity,
}

// Valid reports whether s is a member of the closed severity set
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical, SeveritySecurity:
		return true
	}
	return false
}

// Valid reports whether r is a member of the closed risk set
func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Finding represents one normalized problem reported by the model
type Finding struct {
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
	Severity   Severity `json:"severity"`
	Title      string   `json:"title"`
	Detail     string   `json:"detail"`
	Suggestion string   `json:"suggestion,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Review represents the complete normalized result of one analysis run.
// It is constructed once from exactly one raw response string and never
// mutated afterwards.
type Review struct {
	Summary  string    `json:"summary"`
	Risk     Risk      `json:"overall_risk"`
	Findings []Finding `json:"issues"`
}

// Result pairs a Review with the run metadata persisted alongside it
type Result struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Model       string    `json:"model"`
	RawResponse string    `json:"raw_response"`
	Review      Review    `json:"review"`
	Blocked     bool      `json:"blocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParseSeverity converts a free-text severity token into a member of the
// closed set. The boolean reports whether the token was recognized.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Valid() {
		return sev, true
	}
	return SeverityInfo, false
}

// MapStringToSeverity converts a free-text severity token, degrading
// unrecognized input to info rather than dropping or inflating it.
func MapStringToSeverity(s string) Severity {
	sev, _ := ParseSeverity(s)
	return sev
}

// ParseRisk converts a free-text risk token into a member of the closed
// set. The boolean reports whether the token was recognized.
func ParseRisk(s string) (Risk, bool) {
	r := Risk(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, true
	}
	return RiskLow, false
}

// DeriveRisk computes the overall risk implied by a set of findings.
// It is used whenever the source text carried no explicit risk token,
// so the reported risk is never lower than what the findings imply.
func DeriveRisk(findings []Finding) Risk {
	risk := RiskLow
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical, SeveritySecurity:
			return RiskCritical
		case SeverityHigh:
			risk = RiskHigh
		case SeverityMedium:
			if risk != RiskHigh {
				risk = RiskMedium
			}
		}
	}
	return risk
}

// Normalize fills a finding's fallback values so no field escapes the
// parsing boundary empty or out of set.
func (f *Finding) Normalize() {
	if f.File == "" {
		f.File = FileUnknown
	}
	if !f.Severity.Valid() {
		f.Severity = SeverityInfo
	}
	if strings.TrimSpace(f.Title) == "" {
		f.Title = DefaultTitle
	}
	if strings.TrimSpace(f.Detail) == "" {
		f.Detail = DefaultDetail
	}
	if f.Line < 0 {
		f.Line = 0
	}
}

// HasTag reports whether the finding carries the given tag
func (f Finding) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsParseFailure reports whether the review is the loud-failure result
// produced when no strategy could interpret the response, as opposed to
// a genuinely clean review.
func (r Review) IsParseFailure() bool {
	for _, f := range r.Findings {
		if f.HasTag(TagParseError) {
			return true
		}
	}
	return false
}

// CountBySeverity tallies findings per severity
func (r Review) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// NewResult creates a Result for a completed interpretation run
func NewResult(subject, model, raw string, rev Review, blocked bool) *Result {
	return &Result{
		Subject:     subject,
		Model:       model,
		RawResponse: raw,
		Review:      rev,
		Blocked:     blocked,
		CreatedAt:   time.Now(),
	}
}
