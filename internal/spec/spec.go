// Package spec models the input specification document being compressed.
package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/token"
)

// Format identifies a supported document format.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	// FormatCompact is an output-only format: compressed markdown without
	// a corresponding input extension.
	FormatCompact Format = "compact"
)

// extensionFormats maps file extensions to formats. Order of supportedExtensions
// is fixed for stable error messages.
var extensionFormats = map[string]Format{
	".yaml":     FormatYAML,
	".yml":      FormatYAML,
	".json":     FormatJSON,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

var supportedExtensions = []string{".yaml", ".yml", ".json", ".md", ".markdown"}

// ParseFormat converts a user-supplied format string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "markdown":
		return FormatMarkdown, nil
	case "compact":
		return FormatCompact, nil
	}
	return "", errors.NewValidation(fmt.Sprintf("unsupported format %q; use one of: yaml, json, markdown, compact", s))
}

// DetectFormat determines the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensionFormats[ext]
	if !ok {
		return "", errors.NewValidation(fmt.Sprintf(
			"unsupported format %q; supported extensions: %s", ext, strings.Join(supportedExtensions, ", ")))
	}
	return f, nil
}

// Specification is an immutable snapshot of an input document: its content,
// detected format, token count, and integrity hash.
type Specification struct {
	FilePath   string
	Format     Format
	Content    string
	TokenCount int
	Hash       string // sha256 hex over raw bytes, 64 chars
	SizeBytes  int64
	CreatedAt  time.Time
}

// Load reads a specification from disk, detecting the format from the
// extension and computing the token count and content hash.
func Load(path string) (*Specification, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(path)
		}
		return nil, errors.NewIO("failed to stat file", err)
	}
	if info.IsDir() {
		return nil, errors.NewValidation(fmt.Sprintf("path is not a file: %s", path))
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.NewPermission(path, err)
		}
		return nil, errors.NewIO("failed to read file", err)
	}
	if len(raw) == 0 {
		return nil, errors.NewValidation(fmt.Sprintf("file is empty: %s", path))
	}
	if !utf8.Valid(raw) {
		return nil, errors.NewValidation(fmt.Sprintf("file is not UTF-8 encoded: %s", path))
	}
	content := string(raw)

	tokens, err := token.Count(content)
	if err != nil {
		return nil, err
	}
	if tokens <= 0 {
		return nil, errors.NewValidation(fmt.Sprintf("token count must be positive, got %d", tokens))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Specification{
		FilePath:   abs,
		Format:     format,
		Content:    content,
		TokenCount: tokens,
		Hash:       Hash(content),
		SizeBytes:  info.Size(),
		CreatedAt:  time.Now(),
	}, nil
}

// Placeholder builds a partial Specification reconstructed from digest
// metadata. Original content is not recoverable; only its token count and
// hash survive.
func Placeholder(sourceFile, hash string, tokenCount int) *Specification {
	return &Specification{
		FilePath:   sourceFile,
		Format:     FormatMarkdown,
		Content:    "# Original specification (content not preserved in digest)",
		TokenCount: tokenCount,
		Hash:       hash,
		CreatedAt:  time.Now(),
	}
}

// Hash computes the sha256 hex digest of content.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
