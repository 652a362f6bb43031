// Package audit persists one artifact per analysis run: the raw model
// response, the normalized review, the verdict, and the model used.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/review"
	"github.com/tildaslashalef/reviewgate/internal/ulid"
)

// Repository defines operations for the audit store
type Repository interface {
	// SaveResult persists a completed run's artifact
	SaveResult(ctx context.Context, result *review.Result) error

	// GetResult retrieves an artifact by ID
	GetResult(ctx context.Context, id string) (*review.Result, error)

	// ListBySubject retrieves artifacts for one review subject,
	// newest first
	ListBySubject(ctx context.Context, subject string, limit int) ([]*review.Result, error)
}

// SQLRepository implements Repository using a SQL database
type SQLRepository struct {
	db     *sql.DB
	logger *loggy.Logger
}

// NewSQLRepository creates a new SQL repository
func NewSQLRepository(db *sql.DB, logger *loggy.Logger) *SQLRepository {
	return &SQLRepository{db: db, logger: logger}
}

// SaveResult persists a completed run's artifact
func (r *SQLRepository) SaveResult(ctx context.Context, result *review.Result) error {
	if result.ID == "" {
		result.ID = ulid.AuditID()
	}

	reviewJSON, err := json.Marshal(result.Review)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	q := squirrel.Insert("review_audits").
		Columns("id", "subject", "model", "raw_response", "review", "blocked", "created_at").
		Values(result.ID, result.Subject, result.Model, result.RawResponse, reviewJSON, result.Blocked, result.CreatedAt)

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building save audit query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("executing save audit query: %w", err)
	}

	r.logger.Debug("audit artifact saved", "id", result.ID, "subject", result.Subject)
	return nil
}

// GetResult retrieves an artifact by ID
func (r *SQLRepository) GetResult(ctx context.Context, id string) (*review.Result, error) {
	q := squirrel.Select("id", "subject", "model", "raw_response", "review", "blocked", "created_at").
		From("review_audits").
		Where(squirrel.Eq{"id": id})

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get audit query: %w", err)
	}

	result, err := scanResult(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("audit artifact not found: %s", id)
		}
		return nil, fmt.Errorf("executing get audit query: %w", err)
	}
	return result, nil
}

// ListBySubject retrieves artifacts for one subject, newest first
func (r *SQLRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*review.Result, error) {
	q := squirrel.Select("id", "subject", "model", "raw_response", "review", "blocked", "created_at").
		From("review_audits").
		Where(squirrel.Eq{"subject": subject}).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list audits query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing list audits query: %w", err)
	}
	defer rows.Close()

	var results []*review.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*review.Result, error) {
	var result review.Result
	var reviewJSON []byte
	if err := s.Scan(
		&result.ID,
		&result.Subject,
		&result.Model,
		&result.RawResponse,
		&reviewJSON,
		&result.Blocked,
		&result.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(reviewJSON) > 0 {
		if err := json.Unmarshal(reviewJSON, &result.Review); err != nil {
			return nil, fmt.Errorf("unmarshaling review: %w", err)
		}
	}
	return &result, nil
}
