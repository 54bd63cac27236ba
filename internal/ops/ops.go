// Package ops implements the shared operations behind the CLI and the MCP
// server. Both surfaces translate their inputs to these functions so the
// behavior cannot drift between them.
package ops

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/db"
	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/hook"
	"github.com/specpress/specpress/internal/profile"
	"github.com/specpress/specpress/internal/render"
	"github.com/specpress/specpress/internal/spec"
)

// DigestInput carries the parameters of one digest run.
type DigestInput struct {
	Path   string // source specification
	Level  string // compression level; empty uses the configured default
	Output string // digest path; empty derives one from Path
	Format string // output format; empty keeps the input format
	Force  bool   // overwrite an existing digest file
	DryRun bool   // generate and measure without writing
}

// DigestOutput reports one completed digest run.
type DigestOutput struct {
	RunID            string
	SourceFile       string
	DigestFile       string
	Profile          string
	OriginalTokens   int
	DigestTokens     int
	PercentSaved     float64
	ProcessingTimeMS int64
	MeetsMinimum     bool
	Sections         []digest.SectionMetrics
}

// Digest runs the full pipeline for one file: load, compress, write, and
// record. It returns normally even when the result misses the minimum
// reduction floor; callers inspect MeetsMinimum to classify that outcome.
func Digest(database *sql.DB, cfg *config.Config, in DigestInput) (*DigestOutput, error) {
	s, p, err := loadAndProfile(cfg, in.Path, in.Level)
	if err != nil {
		return nil, err
	}

	var outputFormat spec.Format
	if in.Format != "" {
		outputFormat, err = spec.ParseFormat(in.Format)
		if err != nil {
			return nil, err
		}
	}

	d, m, err := digest.Generate(s, p, outputFormat)
	if err != nil {
		return nil, err
	}

	outPath := in.Output
	if outPath == "" {
		outPath = hook.OutputPath(cfg, in.Path)
	}

	if !in.DryRun {
		if !in.Force {
			if _, err := os.Stat(outPath); err == nil {
				return nil, errors.NewValidation(fmt.Sprintf(
					"digest file already exists: %s (use --force to overwrite)", outPath))
			}
		}
		if err := d.ToFile(outPath); err != nil {
			return nil, err
		}
		m.DigestFile = outPath

		if database != nil {
			if err := db.InsertRun(database, db.NewRun(d, m, s.Format, outPath)); err != nil {
				return nil, err
			}
		}
	}

	return &DigestOutput{
		RunID:            m.RunID,
		SourceFile:       s.FilePath,
		DigestFile:       outPath,
		Profile:          p.Name,
		OriginalTokens:   m.OriginalTokens,
		DigestTokens:     m.DigestTokens,
		PercentSaved:     m.PercentSaved,
		ProcessingTimeMS: m.ProcessingTime.Milliseconds(),
		MeetsMinimum:     d.MeetsMinimumReduction(),
		Sections:         m.Sections,
	}, nil
}

// Metrics generates a digest in memory and returns the per-section report
// without touching the filesystem.
func Metrics(cfg *config.Config, path, level string) (*digest.TokenMetrics, error) {
	s, p, err := loadAndProfile(cfg, path, level)
	if err != nil {
		return nil, err
	}
	_, m, err := digest.Generate(s, p, "")
	if err != nil {
		return nil, err
	}
	return m, nil
}

// History lists recorded digest runs, newest first.
func History(database *sql.DB, sourceFile string, limit int) ([]*db.Run, error) {
	if database == nil {
		return nil, errors.NewDependency("history database is not available", nil)
	}
	return db.ListRuns(database, sourceFile, limit)
}

// Preview reloads a digest file and renders it as a standalone HTML page.
func Preview(path string) (string, error) {
	d, err := digest.FromFile(path)
	if err != nil {
		return "", err
	}
	return render.Preview(d, path)
}

func loadAndProfile(cfg *config.Config, path, level string) (*spec.Specification, *profile.Profile, error) {
	s, err := spec.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if level == "" {
		level = cfg.DefaultLevel
	}
	lv, err := profile.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	p := profile.ForLevel(lv)
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return s, p, nil
}
