package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
	"github.com/specpress/specpress/internal/token"
)

// metadataKey is the reserved sibling key for structured digests.
const metadataKey = "_digest_metadata"

// frontMatterKey wraps the metadata block in markdown front-matter.
const frontMatterKey = "digest_metadata"

// DefaultOutputPath derives the digest path from the input path:
// spec.md -> spec.digest.md.
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	return stem + ".digest" + ext
}

// metadataMap flattens the digest's metadata and measurements into the
// serialized field set.
func (d *Digest) metadataMap() map[string]any {
	return map[string]any{
		"source_hash":          d.Metadata.SourceHash,
		"format_version":       d.Metadata.FormatVersion,
		"optimization_profile": d.Metadata.OptimizationProfile,
		"sections_compressed":  d.Metadata.SectionsCompressed,
		"sections_preserved":   d.Metadata.SectionsPreserved,
		"generator_version":    d.Metadata.GeneratorVersion,
		"timestamp":            d.Metadata.Timestamp.Format(time.RFC3339),
		"original_tokens":      d.Source.TokenCount,
		"digest_tokens":        d.TokenCount,
		"compression_ratio":    d.CompressionRatio,
		"source_file":          d.Source.FilePath,
	}
}

// ToFile writes the digest to disk with metadata embedded by format:
// markdown gets a leading front-matter block, YAML and JSON get a reserved
// top-level key. Parent directories are created on demand.
func (d *Digest) ToFile(outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			if os.IsPermission(err) {
				return errors.NewPermission(outputPath, err)
			}
			return errors.NewIO("failed to create output directory", err)
		}
	}

	full, err := d.renderWithMetadata()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(full), 0644); err != nil {
		if os.IsPermission(err) {
			return errors.NewPermission(outputPath, err)
		}
		return errors.NewIO(fmt.Sprintf("failed to write digest to %s", outputPath), err)
	}
	return nil
}

func (d *Digest) renderWithMetadata() (string, error) {
	switch d.Format {
	case spec.FormatMarkdown:
		block, err := yaml.Marshal(map[string]any{frontMatterKey: d.metadataMap()})
		if err != nil {
			return "", errors.NewInternal(err)
		}
		return "---\n" + string(block) + "---\n\n" + d.Content, nil

	case spec.FormatYAML:
		var data map[string]any
		if err := yaml.Unmarshal([]byte(d.Content), &data); err != nil {
			return "", errors.NewValidationCause("digest content is not valid YAML", err)
		}
		data[metadataKey] = d.metadataMap()
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", errors.NewInternal(err)
		}
		return string(out), nil

	case spec.FormatJSON:
		var data map[string]any
		if err := json.Unmarshal([]byte(d.Content), &data); err != nil {
			return "", errors.NewValidationCause("digest content is not valid JSON", err)
		}
		data[metadataKey] = d.metadataMap()
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", errors.NewInternal(err)
		}
		return string(out), nil
	}

	// Compact digests carry no embedded metadata.
	return d.Content, nil
}

// FromFile reloads a digest: the metadata block or key is detected,
// stripped, and reconstructed. The original specification is only partially
// recoverable; its token count and hash survive in metadata.
func FromFile(path string) (*Digest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(path)
		}
		if os.IsPermission(err) {
			return nil, errors.NewPermission(path, err)
		}
		return nil, errors.NewIO("failed to read digest file", err)
	}
	content := string(raw)

	metaMap, body := extractMetadata(content)
	if metaMap == nil {
		return nil, errors.NewValidation("file does not contain digest metadata; not a valid digest file")
	}

	meta, err := metadataFromMap(metaMap)
	if err != nil {
		return nil, err
	}

	format := formatFromExtension(path)
	digestTokens, err := token.Count(body)
	if err != nil {
		return nil, err
	}

	source := spec.Placeholder(
		asString(metaMap["source_file"]),
		meta.SourceHash,
		asInt(metaMap["original_tokens"]),
	)

	return New(body, format, digestTokens, asFloat(metaMap["compression_ratio"]), meta, source)
}

// extractMetadata finds and removes the embedded metadata, returning the
// metadata fields and the remaining digest body. Returns a nil map when the
// file carries no metadata.
func extractMetadata(content string) (map[string]any, string) {
	// Markdown front-matter.
	if strings.HasPrefix(content, "---\n") {
		parts := strings.SplitN(content, "---\n", 3)
		if len(parts) == 3 {
			var front map[string]any
			if err := yaml.Unmarshal([]byte(parts[1]), &front); err == nil {
				if dm, ok := front[frontMatterKey].(map[string]any); ok {
					return dm, strings.TrimSpace(parts[2])
				}
			}
		}
	}

	// Embedded key, JSON first.
	var jsonData map[string]any
	if err := json.Unmarshal([]byte(content), &jsonData); err == nil {
		if dm, ok := jsonData[metadataKey].(map[string]any); ok {
			delete(jsonData, metadataKey)
			if out, err := json.MarshalIndent(jsonData, "", "  "); err == nil {
				return dm, string(out)
			}
		}
		return nil, content
	}

	// Then YAML.
	var yamlData map[string]any
	if err := yaml.Unmarshal([]byte(content), &yamlData); err == nil {
		if dm, ok := yamlData[metadataKey].(map[string]any); ok {
			delete(yamlData, metadataKey)
			if out, err := yaml.Marshal(yamlData); err == nil {
				return dm, string(out)
			}
		}
	}

	return nil, content
}

func metadataFromMap(m map[string]any) (Metadata, error) {
	ts, err := time.Parse(time.RFC3339, asString(m["timestamp"]))
	if err != nil {
		return Metadata{}, errors.NewValidationCause("digest metadata has an invalid timestamp", err)
	}
	return Metadata{
		SourceHash:          asString(m["source_hash"]),
		FormatVersion:       asString(m["format_version"]),
		OptimizationProfile: asString(m["optimization_profile"]),
		SectionsCompressed:  asStringSlice(m["sections_compressed"]),
		SectionsPreserved:   asStringSlice(m["sections_preserved"]),
		GeneratorVersion:    asString(m["generator_version"]),
		Timestamp:           ts,
	}, nil
}

func formatFromExtension(path string) spec.Format {
	if f, err := spec.DetectFormat(path); err == nil {
		return f
	}
	return spec.FormatMarkdown
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
