package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

func TestNewEvaluator(t *testing.T) {
	logger := loggy.NewNoopLogger()

	t.Run("valid configuration", func(t *testing.T) {
		e, err := NewEvaluator(`["high","critical"]`, logger)
		require.NoError(t, err)
		assert.Equal(t, []review.Severity{review.SeverityHigh, review.SeverityCritical}, e.Blocking())
	})

	t.Run("empty configuration uses the default", func(t *testing.T) {
		e, err := NewEvaluator("", logger)
		require.NoError(t, err)
		assert.Equal(t, []review.Severity{review.SeverityCritical, review.SeveritySecurity}, e.Blocking())
	})

	t.Run("malformed JSON recovers with the default", func(t *testing.T) {
		e, err := NewEvaluator(`high,critical`, logger)
		require.NoError(t, err)
		assert.Equal(t, []review.Severity{review.SeverityCritical, review.SeveritySecurity}, e.Blocking())
	})

	t.Run("out-of-set severity is a fatal configuration error", func(t *testing.T) {
		_, err := NewEvaluator(`["high","urgent"]`, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "urgent")
	})
}

func TestBlocks(t *testing.T) {
	logger := loggy.NewNoopLogger()
	e, err := NewEvaluator(`["critical","security"]`, logger)
	require.NoError(t, err)

	t.Run("blocks when a finding matches the set", func(t *testing.T) {
		rev := review.Review{Findings: []review.Finding{
			{Severity: review.SeverityLow, Title: "minor"},
			{Severity: review.SeveritySecurity, Title: "injection"},
		}}
		assert.True(t, e.Blocks(rev))
	})

	t.Run("passes when nothing matches", func(t *testing.T) {
		rev := review.Review{Findings: []review.Finding{
			{Severity: review.SeverityHigh, Title: "still passes"},
		}}
		assert.False(t, e.Blocks(rev))
	})

	t.Run("zero findings always pass", func(t *testing.T) {
		assert.False(t, e.Blocks(review.Review{}))
	})
}
