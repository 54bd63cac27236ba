package digest

import (
	"sort"
	"time"

	"github.com/specpress/specpress/internal/engine"
	"github.com/specpress/specpress/internal/parser"
	"github.com/specpress/specpress/internal/profile"
	"github.com/specpress/specpress/internal/spec"
	"github.com/specpress/specpress/internal/token"
)

// Generate runs the full pipeline for one specification: parse, compress
// every section or key under the profile, re-serialize, measure, and package
// the result. outputFormat defaults to the input format when empty.
//
// The minimum-reduction floor is deliberately not checked here: a digest
// below the floor is a valid, reportable outcome for the caller to classify.
func Generate(s *spec.Specification, p *profile.Profile, outputFormat spec.Format) (*Digest, *TokenMetrics, error) {
	start := time.Now()

	doc, err := parser.Parse(s.Content, s.Format)
	if err != nil {
		return nil, nil, err
	}

	var (
		optimized *parser.Document
		sections  []SectionMetrics
	)
	if s.Format == spec.FormatMarkdown {
		optimized, sections, err = optimizeMarkdown(doc, p)
	} else {
		optimized, sections, err = optimizeStructured(doc, p)
	}
	if err != nil {
		return nil, nil, err
	}

	if outputFormat == "" {
		outputFormat = s.Format
	}

	content, err := parser.Serialize(optimized, outputFormat)
	if err != nil {
		return nil, nil, err
	}

	digestTokens, err := token.Count(content)
	if err != nil {
		return nil, nil, err
	}
	ratio, err := token.Ratio(s.TokenCount, digestTokens)
	if err != nil {
		return nil, nil, err
	}

	var compressed, preserved []string
	for _, sm := range sections {
		if sm.Action == engine.ActionPreserved {
			preserved = append(preserved, sm.Name)
		} else {
			compressed = append(compressed, sm.Name)
		}
	}

	meta := Metadata{
		SourceHash:          s.Hash,
		FormatVersion:       FormatVersion,
		OptimizationProfile: p.Name,
		SectionsCompressed:  compressed,
		SectionsPreserved:   preserved,
		GeneratorVersion:    GeneratorVersion,
		Timestamp:           time.Now(),
	}

	d, err := New(content, outputFormat, digestTokens, ratio, meta, s)
	if err != nil {
		return nil, nil, err
	}

	metrics, err := NewTokenMetrics(s.TokenCount, digestTokens, ratio, time.Since(start), s.FilePath, sections)
	if err != nil {
		return nil, nil, err
	}

	return d, metrics, nil
}

// optimizeMarkdown compresses each parsed section in order, keeping only
// non-empty results. Sections whose original content measured zero tokens
// are skipped in the metrics report.
func optimizeMarkdown(doc *parser.Document, p *profile.Profile) (*parser.Document, []SectionMetrics, error) {
	out := &parser.Document{Title: doc.Title}
	var sections []SectionMetrics

	for _, sec := range doc.Sections {
		originalTokens, err := token.Count(sec.Body)
		if err != nil {
			return nil, nil, err
		}

		optimized, action := engine.OptimizeSection(sec.Name, sec.Body, p)
		optimizedTokens, err := token.Count(optimized)
		if err != nil {
			return nil, nil, err
		}

		if optimized != "" {
			out.SetSection(sec.Name, optimized)
		}

		if originalTokens > 0 {
			reduction, err := token.Ratio(originalTokens, optimizedTokens)
			if err != nil {
				return nil, nil, err
			}
			sections = append(sections, SectionMetrics{
				Name:             sec.Name,
				OriginalTokens:   originalTokens,
				DigestTokens:     optimizedTokens,
				ReductionPercent: reduction,
				Action:           action,
			})
		}
	}

	return out, sections, nil
}

// optimizeStructured walks a key/value tree. String values compress exactly
// like markdown sections, with the priority looked up by key name; nested
// mappings recurse; arrays and every other value type pass through
// unmodified, since they may hold structured data whose shape must survive.
func optimizeStructured(doc *parser.Document, p *profile.Profile) (*parser.Document, []SectionMetrics, error) {
	var sections []SectionMetrics
	data, err := optimizeMapping(doc.Data, p, &sections)
	if err != nil {
		return nil, nil, err
	}
	return &parser.Document{Data: data}, sections, nil
}

func optimizeMapping(data map[string]any, p *profile.Profile, sections *[]SectionMetrics) (map[string]any, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(data))
	for _, key := range keys {
		switch value := data[key].(type) {
		case string:
			originalTokens, err := token.Count(value)
			if err != nil {
				return nil, err
			}

			optimized, action := engine.OptimizeSection(key, value, p)
			optimizedTokens, err := token.Count(optimized)
			if err != nil {
				return nil, err
			}

			if optimized != "" {
				out[key] = optimized
			}

			if originalTokens > 0 {
				reduction, err := token.Ratio(originalTokens, optimizedTokens)
				if err != nil {
					return nil, err
				}
				*sections = append(*sections, SectionMetrics{
					Name:             key,
					OriginalTokens:   originalTokens,
					DigestTokens:     optimizedTokens,
					ReductionPercent: reduction,
					Action:           action,
				})
			}
		case map[string]any:
			nested, err := optimizeMapping(value, p, sections)
			if err != nil {
				return nil, err
			}
			out[key] = nested
		default:
			out[key] = value
		}
	}
	return out, nil
}
