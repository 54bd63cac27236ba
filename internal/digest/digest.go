// Package digest assembles, persists, and reloads compressed specification
// digests with embedded provenance metadata.
package digest

import (
	"fmt"
	"time"

	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
)

// FormatVersion is the on-disk digest metadata format version.
const FormatVersion = "1.0"

// GeneratorVersion is stamped into digest metadata. Overridden via -ldflags
// at build time.
var GeneratorVersion = "0.1.0"

// MinimumReduction is the policy floor for an acceptable digest. The
// assembler never enforces it; callers decide how to treat a miss.
const MinimumReduction = 0.30

// Metadata is the provenance block embedded in every persisted digest.
type Metadata struct {
	SourceHash          string
	FormatVersion       string
	OptimizationProfile string
	SectionsCompressed  []string
	SectionsPreserved   []string
	GeneratorVersion    string
	Timestamp           time.Time
}

// Digest is the compressed output document. Immutable once constructed; it
// holds a read-only reference to its source specification for savings math,
// which must outlive the digest.
type Digest struct {
	Content          string
	Format           spec.Format
	TokenCount       int
	CompressionRatio float64
	Metadata         Metadata
	Source           *spec.Specification
	CreatedAt        time.Time
}

// New constructs a Digest, enforcing its invariants: non-empty content, a
// positive token count strictly below the source's, and a ratio in [0, 1].
func New(content string, format spec.Format, tokenCount int, ratio float64, meta Metadata, source *spec.Specification) (*Digest, error) {
	if content == "" {
		return nil, errors.NewValidation("digest content must not be empty")
	}
	if tokenCount <= 0 {
		return nil, errors.NewValidation(fmt.Sprintf("digest token count must be positive, got %d", tokenCount))
	}
	if source == nil {
		return nil, errors.NewValidation("digest requires a source specification")
	}
	if tokenCount >= source.TokenCount {
		return nil, errors.NewValidation(fmt.Sprintf(
			"digest token count (%d) must be less than source token count (%d)", tokenCount, source.TokenCount))
	}
	if ratio < 0.0 || ratio > 1.0 {
		return nil, errors.NewValidation(fmt.Sprintf("compression ratio must be between 0.0 and 1.0, got %v", ratio))
	}
	return &Digest{
		Content:          content,
		Format:           format,
		TokenCount:       tokenCount,
		CompressionRatio: ratio,
		Metadata:         meta,
		Source:           source,
		CreatedAt:        time.Now(),
	}, nil
}

// MeetsMinimumReduction reports whether the digest reached the 30% floor.
func (d *Digest) MeetsMinimumReduction() bool {
	return d.CompressionRatio >= MinimumReduction
}

// Savings returns the absolute number of tokens removed.
func (d *Digest) Savings() int {
	return d.Source.TokenCount - d.TokenCount
}
