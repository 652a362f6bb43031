package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
		ok    bool
	}{
		{"critical", SeverityCritical, true},
		{"SECURITY", SeveritySecurity, true},
		{"  High  ", SeverityHigh, true},
		{"info", SeverityInfo, true},
		{"blocker", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSeverity(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMapStringToSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, MapStringToSeverity("high"))
	// Anything outside the closed set degrades rather than failing.
	assert.Equal(t, SeverityInfo, MapStringToSeverity("catastrophic"))
	assert.Equal(t, SeverityInfo, MapStringToSeverity(""))
}

func TestDeriveRisk(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     Risk
	}{
		{"no findings", nil, RiskLow},
		{"only info", []Finding{{Severity: SeverityInfo}}, RiskLow},
		{"low and medium", []Finding{{Severity: SeverityLow}, {Severity: SeverityMedium}}, RiskMedium},
		{"high present", []Finding{{Severity: SeverityMedium}, {Severity: SeverityHigh}}, RiskHigh},
		{"critical wins", []Finding{{Severity: SeverityHigh}, {Severity: SeverityCritical}}, RiskCritical},
		{"security counts as critical", []Finding{{Severity: SeveritySecurity}}, RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRisk(tt.findings))
		})
	}
}

func TestFindingNormalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		f := Finding{Severity: SeverityLow}
		f.Normalize()

		assert.Equal(t, FileUnknown, f.File)
		assert.Equal(t, DefaultTitle, f.Title)
		assert.Equal(t, DefaultDetail, f.Detail)
		assert.Zero(t, f.Line)
	})

	t.Run("clamps negative line", func(t *testing.T) {
		f := Finding{Severity: SeverityLow, File: "a.go", Line: -4, Title: "t", Detail: "d"}
		f.Normalize()
		assert.Zero(t, f.Line)
	})

	t.Run("keeps populated fields", func(t *testing.T) {
		f := Finding{Severity: SeverityHigh, File: "a.go", Line: 12, Title: "Leak", Detail: "unclosed body"}
		f.Normalize()

		assert.Equal(t, "a.go", f.File)
		assert.Equal(t, 12, f.Line)
		assert.Equal(t, "Leak", f.Title)
	})
}

func TestReviewIsParseFailure(t *testing.T) {
	clean := Review{Summary: "fine", Risk: RiskLow}
	assert.False(t, clean.IsParseFailure())

	failed := Review{
		Summary:  "The model response could not be interpreted.",
		Risk:     RiskMedium,
		Findings: []Finding{{Severity: SeverityInfo, Tags: []string{TagParseError}}},
	}
	assert.True(t, failed.IsParseFailure())
}

func TestCountBySeverity(t *testing.T) {
	rev := Review{Findings: []Finding{
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeveritySecurity},
	}}

	counts := rev.CountBySeverity()
	assert.Equal(t, 2, counts[SeverityHigh])
	assert.Equal(t, 1, counts[SeveritySecurity])
	assert.Zero(t, counts[SeverityLow])
}
