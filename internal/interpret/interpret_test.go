package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

func TestInterpretStrictSchema(t *testing.T) {
	interp := NewInterpreter(loggy.NewNoopLogger())

	t.Run("round-trips a contract-honoring response", func(t *testing.T) {
		input := `{
  "summary": "Two problems found",
  "overall_risk": "high",
  "issues": [
    {
      "file": "internal/server/handler.go",
      "line": 42,
      "severity": "high",
      "title": "Unchecked error",
      "detail": "The error from Write is discarded.",
      "suggestion": "Check and log the error.",
      "tags": ["correctness"]
    },
    {
      "file": "internal/server/auth.go",
      "severity": "low",
      "title": "Magic number",
      "detail": "Timeout is hardcoded."
    }
  ]
}`

		result := interp.Interpret(input)

		assert.Equal(t, "Two problems found", result.Summary)
		assert.Equal(t, review.RiskHigh, result.Risk)
		require.Len(t, result.Findings, 2)

		first := result.Findings[0]
		assert.Equal(t, "internal/server/handler.go", first.File)
		assert.Equal(t, 42, first.Line)
		assert.Equal(t, review.SeverityHigh, first.Severity)
		assert.Equal(t, "Unchecked error", first.Title)
		assert.Equal(t, "Check and log the error.", first.Suggestion)
		assert.Equal(t, []string{"correctness"}, first.Tags)

		second := result.Findings[1]
		assert.Equal(t, 0, second.Line)
		assert.Equal(t, review.SeverityLow, second.Severity)
	})

	t.Run("empty issues array is a valid clean review", func(t *testing.T) {
		input := `{"summary": "All clear", "overall_risk": "low", "issues": []}`

		result := interp.Interpret(input)

		assert.Equal(t, "All clear", result.Summary)
		assert.Equal(t, review.RiskLow, result.Risk)
		assert.Empty(t, result.Findings)
		assert.False(t, result.IsParseFailure())
	})

	t.Run("out-of-set risk is not accepted without coercion", func(t *testing.T) {
		// Strategy A must reject this; strategy B then degrades the
		// risk by deriving it from the findings.
		input := `{"summary": "ok", "overall_risk": "severe", "issues": [
			{"severity": "critical", "title": "Bad"}
		]}`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, review.RiskCritical, result.Risk)
	})
}

func TestInterpretEmbeddedJSON(t *testing.T) {
	interp := NewInterpreter(loggy.NewNoopLogger())

	t.Run("extracts object surrounded by prose", func(t *testing.T) {
		input := `I reviewed the change carefully. Here is my conclusion:

{"summary": "One issue", "overall_risk": "medium", "issues": [
  {"file": "main.go", "line": 7, "severity": "medium", "title": "Shadowed variable", "detail": "err is shadowed."}
]}

Let me know if anything is unclear.`

		result := interp.Interpret(input)

		assert.Equal(t, "One issue", result.Summary)
		assert.Equal(t, review.RiskMedium, result.Risk)
		require.Len(t, result.Findings, 1)
		assert.Equal(t, "main.go", result.Findings[0].File)
		assert.Equal(t, 7, result.Findings[0].Line)
	})

	t.Run("fills missing fields with defaults", func(t *testing.T) {
		input := `Result below.
{"issues": [{"title": "Missing almost everything"}]}`

		result := interp.Interpret(input)

		assert.Equal(t, review.DefaultSummary, result.Summary)
		require.Len(t, result.Findings, 1)

		f := result.Findings[0]
		assert.Equal(t, review.FileUnknown, f.File)
		assert.Equal(t, review.SeverityInfo, f.Severity)
		assert.Equal(t, "Missing almost everything", f.Title)
		assert.Equal(t, review.DefaultDetail, f.Detail)
	})

	t.Run("unknown severity degrades to info, never inflates", func(t *testing.T) {
		input := `{"summary": "s", "issues": [{"severity": "catastrophic", "title": "x"}]} trailing`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, review.SeverityInfo, result.Findings[0].Severity)
		assert.Equal(t, review.RiskLow, result.Risk)
	})

	t.Run("non-array issues becomes empty sequence", func(t *testing.T) {
		input := `Note: {"summary": "odd shape", "overall_risk": "low", "issues": "none"}`

		result := interp.Interpret(input)

		assert.Equal(t, "odd shape", result.Summary)
		assert.Empty(t, result.Findings)
	})

	t.Run("braces inside string values do not unbalance the scan", func(t *testing.T) {
		input := `prefix {"summary": "code like func() { return }", "issues": []} suffix`

		result := interp.Interpret(input)

		assert.Equal(t, "code like func() { return }", result.Summary)
	})

	t.Run("line numbers given as strings are accepted", func(t *testing.T) {
		input := `x {"summary": "s", "issues": [{"title": "t", "line": "12", "severity": "low"}]}`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, 12, result.Findings[0].Line)
	})
}

func TestInterpretMarkerText(t *testing.T) {
	interp := NewInterpreter(loggy.NewNoopLogger())

	t.Run("extracts findings from marker lines", func(t *testing.T) {
		input := `The diff has a few problems worth fixing before merge.

OVERALL RISK: HIGH

[HIGH] SQL built by concatenation - internal/store/query.go:88
User input reaches the SQL string unparameterized.
Suggestion: Use placeholder parameters.

[LOW] Inconsistent receiver name - internal/store/query.go
Mixed receiver names in the same type.

**[CRITICAL]** Hardcoded credential - config/secrets.yaml:3
A token literal is committed to the repository.`

		result := interp.Interpret(input)

		assert.Equal(t, "The diff has a few problems worth fixing before merge.", result.Summary)
		assert.Equal(t, review.RiskHigh, result.Risk)
		require.Len(t, result.Findings, 3)

		first := result.Findings[0]
		assert.Equal(t, review.SeverityHigh, first.Severity)
		assert.Equal(t, "SQL built by concatenation", first.Title)
		assert.Equal(t, "internal/store/query.go", first.File)
		assert.Equal(t, 88, first.Line)
		assert.Equal(t, "User input reaches the SQL string unparameterized.", first.Detail)
		assert.Equal(t, "Use placeholder parameters.", first.Suggestion)

		second := result.Findings[1]
		assert.Equal(t, review.SeverityLow, second.Severity)
		assert.Equal(t, "internal/store/query.go", second.File)
		assert.Equal(t, 0, second.Line)
		assert.Empty(t, second.Suggestion)

		third := result.Findings[2]
		assert.Equal(t, review.SeverityCritical, third.Severity)
		assert.Equal(t, "Hardcoded credential", third.Title)
		assert.Equal(t, "config/secrets.yaml", third.File)
		assert.Equal(t, 3, third.Line)
	})

	t.Run("marker without file reference keeps sentinel", func(t *testing.T) {
		input := `[MEDIUM] Whole-change concern
The overall structure duplicates existing helpers.`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, review.FileUnknown, result.Findings[0].File)
		assert.Equal(t, "Whole-change concern", result.Findings[0].Title)
		assert.Equal(t, review.RiskMedium, result.Risk)
	})

	t.Run("derives risk when no explicit token is present", func(t *testing.T) {
		input := `Findings:

[SECURITY] Command injection - cmd/run.go:15
Shell metacharacters are not escaped.`

		result := interp.Interpret(input)

		assert.Equal(t, review.RiskCritical, result.Risk)
	})

	t.Run("clean phrasing without markers is a clean review", func(t *testing.T) {
		input := `I went through the whole diff and found no issues. Looks good to merge.`

		result := interp.Interpret(input)

		assert.Empty(t, result.Findings)
		assert.Equal(t, review.RiskLow, result.Risk)
		assert.Contains(t, result.Summary, "no issues")
		assert.False(t, result.IsParseFailure())
	})

	t.Run("explicit risk token without findings is recognized", func(t *testing.T) {
		input := `OVERALL RISK: LOW
Nothing substantial to report on this change.`

		result := interp.Interpret(input)

		assert.Equal(t, review.RiskLow, result.Risk)
		assert.Empty(t, result.Findings)
		assert.False(t, result.IsParseFailure())
	})

	t.Run("emphasis around title is stripped", func(t *testing.T) {
		input := `[HIGH] **Leaked goroutine** - worker/pool.go:51
The goroutine never observes cancellation.`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, "Leaked goroutine", result.Findings[0].Title)
	})

	t.Run("title containing a dash still resolves the trailing file", func(t *testing.T) {
		input := `[MEDIUM] Off-by-one in range - loop bound - pkg/scan/scan.go:9
The final element is skipped.`

		result := interp.Interpret(input)

		require.Len(t, result.Findings, 1)
		assert.Equal(t, "Off-by-one in range - loop bound", result.Findings[0].Title)
		assert.Equal(t, "pkg/scan/scan.go", result.Findings[0].File)
		assert.Equal(t, 9, result.Findings[0].Line)
	})
}

func TestInterpretFallback(t *testing.T) {
	interp := NewInterpreter(loggy.NewNoopLogger())

	t.Run("unrecognizable text produces a loud parse failure", func(t *testing.T) {
		input := `Certainly! Reviewing code is an important part of the
software development lifecycle. Here are some thoughts about reviews
in general, without reference to any particular change.`

		result := interp.Interpret(input)

		assert.True(t, result.IsParseFailure())
		assert.Equal(t, review.RiskMedium, result.Risk)
		require.Len(t, result.Findings, 1)

		f := result.Findings[0]
		assert.Equal(t, review.FileUnknown, f.File)
		assert.Equal(t, review.SeverityMedium, f.Severity)
		assert.Contains(t, f.Tags, review.TagParseError)
		assert.Contains(t, result.Summary, "Manual review")
	})

	t.Run("empty input produces a loud parse failure", func(t *testing.T) {
		result := interp.Interpret("")

		assert.True(t, result.IsParseFailure())
	})

	t.Run("pathological marker-like input stays bounded", func(t *testing.T) {
		// A long run of dashes and brackets must not blow up the
		// marker scan; it still resolves to the fallback quickly.
		input := "[" + string(make([]byte, 0))
		for i := 0; i < 2000; i++ {
			input += "- a"
		}

		result := interp.Interpret(input)
		assert.True(t, result.IsParseFailure())
	})
}
