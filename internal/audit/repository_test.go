package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

func sampleResult() *review.Result {
	return &review.Result{
		ID:          "aud-01TEST",
		Subject:     "acme/widgets#42",
		Model:       "claude-test",
		RawResponse: `{"summary":"ok"}`,
		Review: review.Review{
			Summary: "ok",
			Risk:    review.RiskLow,
		},
		Blocked:   false,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, loggy.NewNoopLogger())

	t.Run("inserts one row", func(t *testing.T) {
		result := sampleResult()

		mock.ExpectExec("INSERT INTO review_audits").
			WithArgs(result.ID, result.Subject, result.Model, result.RawResponse,
				sqlmock.AnyArg(), result.Blocked, result.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.SaveResult(context.Background(), result)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigns an ID when missing", func(t *testing.T) {
		result := sampleResult()
		result.ID = ""

		mock.ExpectExec("INSERT INTO review_audits").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.SaveResult(context.Background(), result)
		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)
	})
}

func TestGetResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, loggy.NewNoopLogger())

	t.Run("round-trips the stored review", func(t *testing.T) {
		want := sampleResult()

		rows := sqlmock.NewRows([]string{"id", "subject", "model", "raw_response", "review", "blocked", "created_at"}).
			AddRow(want.ID, want.Subject, want.Model, want.RawResponse,
				[]byte(`{"summary":"ok","overall_risk":"low","issues":null}`),
				want.Blocked, want.CreatedAt)

		mock.ExpectQuery("SELECT (.+) FROM review_audits").
			WithArgs(want.ID).
			WillReturnRows(rows)

		got, err := repo.GetResult(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.Subject, got.Subject)
		assert.Equal(t, review.RiskLow, got.Review.Risk)
	})

	t.Run("missing artifact is an error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM review_audits").
			WithArgs("aud-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "model", "raw_response", "review", "blocked", "created_at"}))

		_, err := repo.GetResult(context.Background(), "aud-missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
