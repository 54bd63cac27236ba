package db

import (
	"database/sql"
	"time"

	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
)

// Run is one recorded digest generation.
type Run struct {
	ID               string
	SourceFile       string
	DigestFile       string
	SourceFormat     string
	DigestFormat     string
	Profile          string
	OriginalTokens   int
	DigestTokens     int
	CompressionRatio float64
	Duration         time.Duration
	CreatedAt        time.Time
}

// NewRun builds a history row from a generated digest and its metrics,
// reusing the metrics ULID as the row id.
func NewRun(d *digest.Digest, m *digest.TokenMetrics, sourceFormat spec.Format, digestFile string) *Run {
	return &Run{
		ID:               m.RunID,
		SourceFile:       d.Source.FilePath,
		DigestFile:       digestFile,
		SourceFormat:     string(sourceFormat),
		DigestFormat:     string(d.Format),
		Profile:          d.Metadata.OptimizationProfile,
		OriginalTokens:   m.OriginalTokens,
		DigestTokens:     m.DigestTokens,
		CompressionRatio: d.CompressionRatio,
		Duration:         m.ProcessingTime,
		CreatedAt:        m.Timestamp,
	}
}

// InsertRun stores a run record.
func InsertRun(db *sql.DB, r *Run) error {
	query := `
		INSERT INTO runs (
			id, source_file, digest_file, source_format, digest_format,
			profile, original_tokens, digest_tokens, compression_ratio,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		r.ID, r.SourceFile, r.DigestFile, r.SourceFormat, r.DigestFormat,
		r.Profile, r.OriginalTokens, r.DigestTokens, r.CompressionRatio,
		r.Duration.Milliseconds(), r.CreatedAt.Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetRun retrieves a run by its ULID.
func GetRun(db *sql.DB, id string) (*Run, error) {
	row := db.QueryRow(selectColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first. A sourceFile filter
// narrows results to one specification; limit <= 0 means no limit.
func ListRuns(db *sql.DB, sourceFile string, limit int) ([]*Run, error) {
	query := selectColumns + " FROM runs"
	var args []any
	if sourceFile != "" {
		query += " WHERE source_file = ?"
		args = append(args, sourceFile)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return runs, nil
}

const selectColumns = `
	SELECT id, source_file, digest_file, source_format, digest_format,
		profile, original_tokens, digest_tokens, compression_ratio,
		duration_ms, created_at`

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r          Run
		durationMS int64
		createdAt  int64
	)
	err := s.Scan(
		&r.ID, &r.SourceFile, &r.DigestFile, &r.SourceFormat, &r.DigestFormat,
		&r.Profile, &r.OriginalTokens, &r.DigestTokens, &r.CompressionRatio,
		&durationMS, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}
