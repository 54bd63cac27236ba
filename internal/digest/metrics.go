package digest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/specpress/specpress/internal/engine"
	"github.com/specpress/specpress/internal/errors"
)

// SectionMetrics records what happened to a single section.
type SectionMetrics struct {
	Name             string
	OriginalTokens   int
	DigestTokens     int
	ReductionPercent float64
	Action           engine.Action
}

// TokenMetrics is the transient per-run report. It lives in memory only and
// is never persisted inside the digest file.
type TokenMetrics struct {
	RunID          string
	OriginalTokens int
	DigestTokens   int
	PercentSaved   float64
	ProcessingTime time.Duration
	Timestamp      time.Time
	SourceFile     string
	DigestFile     string
	Sections       []SectionMetrics
}

// NewTokenMetrics builds a validated report: digest tokens must be positive
// and strictly below original, percent saved in [0, 1], duration
// non-negative. A fresh ULID identifies the run.
func NewTokenMetrics(originalTokens, digestTokens int, percentSaved float64, elapsed time.Duration, sourceFile string, sections []SectionMetrics) (*TokenMetrics, error) {
	if originalTokens <= 0 {
		return nil, errors.NewValidation(fmt.Sprintf("original tokens must be positive, got %d", originalTokens))
	}
	if digestTokens <= 0 {
		return nil, errors.NewValidation(fmt.Sprintf("digest tokens must be positive, got %d", digestTokens))
	}
	if digestTokens >= originalTokens {
		return nil, errors.NewValidation(fmt.Sprintf(
			"digest tokens (%d) must be less than original tokens (%d)", digestTokens, originalTokens))
	}
	if percentSaved < 0.0 || percentSaved > 1.0 {
		return nil, errors.NewValidation(fmt.Sprintf("percent saved must be between 0.0 and 1.0, got %v", percentSaved))
	}
	if elapsed < 0 {
		return nil, errors.NewValidation("processing time must be non-negative")
	}
	return &TokenMetrics{
		RunID:          ulid.Make().String(),
		OriginalTokens: originalTokens,
		DigestTokens:   digestTokens,
		PercentSaved:   percentSaved,
		ProcessingTime: elapsed,
		Timestamp:      time.Now(),
		SourceFile:     sourceFile,
		Sections:       sections,
	}, nil
}

// sectionJSON mirrors SectionMetrics for export.
type sectionJSON struct {
	Section          string  `json:"section"`
	OriginalTokens   int     `json:"original_tokens"`
	DigestTokens     int     `json:"digest_tokens"`
	ReductionPercent float64 `json:"reduction_percent"`
	Action           string  `json:"action"`
}

// ToJSON serializes the report for logging or export.
func (m *TokenMetrics) ToJSON() (string, error) {
	sections := make([]sectionJSON, len(m.Sections))
	for i, s := range m.Sections {
		sections[i] = sectionJSON{
			Section:          s.Name,
			OriginalTokens:   s.OriginalTokens,
			DigestTokens:     s.DigestTokens,
			ReductionPercent: s.ReductionPercent,
			Action:           string(s.Action),
		}
	}

	data := map[string]any{
		"run_id":             m.RunID,
		"source_file":        m.SourceFile,
		"digest_file":        m.DigestFile,
		"timestamp":          m.Timestamp.Format(time.RFC3339),
		"original_tokens":    m.OriginalTokens,
		"digest_tokens":      m.DigestTokens,
		"tokens_saved":       m.OriginalTokens - m.DigestTokens,
		"percent_saved":      m.PercentSaved,
		"processing_time_ms": m.ProcessingTime.Milliseconds(),
		"section_breakdown":  sections,
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(out), nil
}
