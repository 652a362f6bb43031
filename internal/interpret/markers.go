package interpret

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tildaslashalef/reviewgate/internal/review"
)

// Marker grammar for plain-text responses:
//
//	OVERALL RISK: HIGH
//	[SEVERITY] Title - path/to/file.go:42
//	body text
//	Suggestion: remediation text
//
// The path group is an explicit bounded alternation of non-delimiter
// runs joined by single separators. Nesting an unbounded quantifier
// over a generic character class here caused catastrophic backtracking
// in earlier text scrapers of this kind, so the pattern stays bounded.
var (
	markerRe = regexp.MustCompile(
		`(?im)^[ \t]*[*_]{0,3}\[(info|low|medium|high|critical|security)\][*_]{0,3}[ \t]*` +
			`(.*?)` +
			`(?:[ \t]+-[ \t]+((?:[\w.+\-]+[/\\])*[\w.+\-]+)(?::(\d{1,6}))?)?[ \t]*$`)

	riskRe = regexp.MustCompile(
		`(?im)^[ \t]*[*_#]{0,4}[ \t]*OVERALL RISK:[ \t]*[*_]{0,3}(\w+)[*_]{0,3}[ \t]*$`)

	suggestionRe = regexp.MustCompile(`(?im)^[ \t]*suggestion:[ \t]*`)
)

// positivePhrases are the "clean outcome" formulations a reviewer uses
// when it found nothing to report
var positivePhrases = []string{
	"no issues",
	"no findings",
	"no problems",
	"no concerns",
	"looks good",
	"code looks clean",
	"lgtm",
}

// decodeMarkers extracts findings from marker-delimited plain text. It
// recognizes the input when it yields at least one finding, an explicit
// risk token, or positive "nothing to report" phrasing; otherwise the
// cascade falls through to the parse-failure terminal.
func decodeMarkers(raw string) (review.Review, bool) {
	riskToken := ""
	if m := riskRe.FindStringSubmatch(raw); m != nil {
		riskToken = m[1]
	}

	matches := markerRe.FindAllStringSubmatchIndex(raw, -1)

	rev := review.Review{
		Findings: make([]review.Finding, 0, len(matches)),
	}

	for n, m := range matches {
		bodyEnd := len(raw)
		if n+1 < len(matches) {
			bodyEnd = matches[n+1][0]
		}

		f := review.Finding{
			Severity: review.MapStringToSeverity(group(raw, m, 1)),
			Title:    strings.Trim(group(raw, m, 2), "*_ \t"),
			File:     strings.TrimSpace(group(raw, m, 3)),
		}
		if lineStr := group(raw, m, 4); lineStr != "" {
			f.Line, _ = strconv.Atoi(lineStr)
		}

		body := strings.TrimSpace(raw[m[1]:bodyEnd])
		if loc := suggestionRe.FindStringIndex(body); loc != nil {
			f.Detail = strings.TrimSpace(body[:loc[0]])
			f.Suggestion = strings.TrimSpace(body[loc[1]:])
		} else {
			f.Detail = body
		}

		f.Normalize()
		rev.Findings = append(rev.Findings, f)
	}

	// Text preceding the first marker, with the risk line removed,
	// becomes the summary; with no markers the whole text does.
	summaryEnd := len(raw)
	if len(matches) > 0 {
		summaryEnd = matches[0][0]
	}
	summary := strings.TrimSpace(riskRe.ReplaceAllString(raw[:summaryEnd], ""))
	if summary == "" {
		summary = review.DefaultSummary
	}
	rev.Summary = summary

	if risk, ok := review.ParseRisk(riskToken); ok {
		rev.Risk = risk
	} else {
		rev.Risk = review.DeriveRisk(rev.Findings)
	}

	if len(rev.Findings) > 0 || riskToken != "" || soundsClean(raw) {
		return rev, true
	}
	return review.Review{}, false
}

// soundsClean reports whether the text contains positive-outcome phrasing
func soundsClean(raw string) bool {
	lower := strings.ToLower(raw)
	for _, phrase := range positivePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// group returns the submatch text for a FindAllStringSubmatchIndex match
func group(s string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}
