package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tildaslashalef/reviewgate/internal/review"
)

func TestDecide(t *testing.T) {
	marker := Marker("acme/widgets#42")

	t.Run("creates when no prior document exists", func(t *testing.T) {
		d := Decide([]Comment{
			{ID: 1, Body: "unrelated comment"},
			{ID: 2, Body: "another one"},
		}, marker)

		assert.Equal(t, ActionCreate, d.Action)
	})

	t.Run("updates the marker-tagged document in place", func(t *testing.T) {
		d := Decide([]Comment{
			{ID: 1, Body: "unrelated"},
			{ID: 7, Body: marker + "\nold review body"},
			{ID: 9, Body: "later comment"},
		}, marker)

		assert.Equal(t, ActionUpdate, d.Action)
		assert.Equal(t, int64(7), d.CommentID)
	})

	t.Run("a different subject's marker does not match", func(t *testing.T) {
		d := Decide([]Comment{
			{ID: 3, Body: Marker("acme/widgets#41") + "\nbody"},
		}, marker)

		assert.Equal(t, ActionCreate, d.Action)
	})
}

func TestRender(t *testing.T) {
	marker := Marker("acme/widgets#42")

	rev := review.Review{
		Summary: "One real problem.",
		Risk:    review.RiskHigh,
		Findings: []review.Finding{
			{
				File:       "internal/db/query.go",
				Line:       12,
				Severity:   review.SeverityHigh,
				Title:      "SQL injection",
				Detail:     "Input reaches the query unsanitized.",
				Suggestion: "Use parameters.",
				Tags:       []string{"security"},
			},
		},
	}

	t.Run("document embeds the marker and the findings", func(t *testing.T) {
		doc := Render(rev, marker, "aud-1", DefaultCommentLimit)

		assert.True(t, strings.HasPrefix(doc, marker))
		assert.Contains(t, doc, "🟠 HIGH")
		assert.Contains(t, doc, "[HIGH]")
		assert.Contains(t, doc, "internal/db/query.go:12")
		assert.Contains(t, doc, "SQL injection")
		assert.Contains(t, doc, "**Suggestion:** Use parameters.")
	})

	t.Run("structural characters in free text are escaped", func(t *testing.T) {
		hostile := review.Review{
			Summary: "injected <script> and a | pipe and *emphasis*",
			Risk:    review.RiskLow,
		}

		doc := Render(hostile, marker, "aud-2", DefaultCommentLimit)

		assert.Contains(t, doc, "&lt;script&gt;")
		assert.Contains(t, doc, `\| pipe`)
		assert.Contains(t, doc, `\*emphasis\*`)
		assert.NotContains(t, doc, "<script>")
	})

	t.Run("clean review renders a clean notice", func(t *testing.T) {
		doc := Render(review.Review{Summary: "All good", Risk: review.RiskLow}, marker, "aud-3", 0)
		assert.Contains(t, doc, "No issues found")
	})

	t.Run("parse failure is visibly flagged", func(t *testing.T) {
		failed := review.Review{
			Summary: "Could not interpret",
			Risk:    review.RiskMedium,
			Findings: []review.Finding{{
				File:     review.FileUnknown,
				Severity: review.SeverityMedium,
				Title:    "Unrecognized response format",
				Detail:   "d",
				Tags:     []string{review.TagParseError},
			}},
		}

		doc := Render(failed, marker, "aud-4", DefaultCommentLimit)
		assert.Contains(t, doc, "could not be interpreted")
	})

	t.Run("oversized documents are truncated with an audit pointer", func(t *testing.T) {
		big := rev
		big.Summary = strings.Repeat("long summary text ", 200)

		doc := Render(big, marker, "aud-5", 500)

		assert.LessOrEqual(t, len(doc), 500)
		assert.Contains(t, doc, "aud-5")
		assert.Contains(t, doc, "truncated")
	})
}
