// Package reconcile renders a review into a single display document
// and decides how to reconcile it with previously posted documents.
// The decision is a pure function over (existing comments, marker
// token), separated from the I/O that executes it, so the idempotency
// contract is testable without a live provider.
package reconcile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tildaslashalef/reviewgate/internal/review"
)

// Action says how the rendered document reaches the provider
type Action int

const (
	// ActionCreate posts a new comment
	ActionCreate Action = iota
	// ActionUpdate replaces the prior marker-tagged comment in place
	ActionUpdate
)

// Comment is the provider-agnostic shape of an existing comment
type Comment struct {
	ID   int64
	Body string
}

// Decision is the reconciliation outcome for one run
type Decision struct {
	Action    Action
	CommentID int64 // set for ActionUpdate
}

// DefaultCommentLimit bounds the rendered document size
const DefaultCommentLimit = 60_000

// Marker returns the invisible-in-rendering sentinel embedded in every
// document, keyed by the review subject. It is how a later run finds
// the document it must replace.
func Marker(subject string) string {
	return fmt.Sprintf("<!-- reviewgate:%s -->", subject)
}

// Decide locates a prior document by its marker token. At most one
// visible document per subject exists regardless of how many times the
// pipeline re-runs.
func Decide(existing []Comment, marker string) Decision {
	for _, c := range existing {
		if strings.Contains(c.Body, marker) {
			return Decision{Action: ActionUpdate, CommentID: c.ID}
		}
	}
	return Decision{Action: ActionCreate}
}

// markdownEscaper neutralizes characters with structural meaning in
// markdown so free-text fields cannot smuggle formatting or HTML.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	`|`, `\|`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `&lt;`,
	`>`, `&gt;`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

var riskBadges = map[review.Risk]string{
	review.RiskLow:      "🟢 LOW",
	review.RiskMedium:   "🟡 MEDIUM",
	review.RiskHigh:     "🟠 HIGH",
	review.RiskCritical: "🔴 CRITICAL",
}

// Render produces the markdown document for one review. Documents over
// limit are truncated with a pointer to the persisted audit artifact.
func Render(rev review.Review, marker, auditID string, limit int) string {
	var sb strings.Builder

	sb.WriteString(marker)
	sb.WriteString("\n## Automated code review\n\n")
	fmt.Fprintf(&sb, "**Overall risk:** %s\n\n", riskBadges[rev.Risk])

	if rev.IsParseFailure() {
		sb.WriteString("> ⚠️ The reviewer's response could not be interpreted. ")
		sb.WriteString("The findings below flag this run for manual review.\n\n")
	}

	sb.WriteString(escape(rev.Summary))
	sb.WriteString("\n")

	if len(rev.Findings) == 0 {
		sb.WriteString("\nNo issues found. ✅\n")
	}

	for _, f := range rev.Findings {
		fmt.Fprintf(&sb, "\n### %s `%s` — %s\n\n",
			severityBadge(f.Severity), location(f), escape(f.Title))
		sb.WriteString(escape(f.Detail))
		sb.WriteString("\n")
		if f.Suggestion != "" {
			fmt.Fprintf(&sb, "\n**Suggestion:** %s\n", escape(f.Suggestion))
		}
		if len(f.Tags) > 0 {
			fmt.Fprintf(&sb, "\n*%s*\n", escape(strings.Join(f.Tags, ", ")))
		}
	}

	doc := sb.String()
	if limit > 0 && len(doc) > limit {
		note := fmt.Sprintf("\n\n…truncated. Full review in audit record `%s`.", auditID)
		cut := limit - len(note)
		if cut < 0 {
			cut = 0
		}
		for cut > 0 && !utf8.RuneStart(doc[cut]) {
			cut--
		}
		doc = doc[:cut] + note
	}
	return doc
}

func severityBadge(s review.Severity) string {
	return "[" + strings.ToUpper(string(s)) + "]"
}

// location formats the finding's file reference
func location(f review.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}
