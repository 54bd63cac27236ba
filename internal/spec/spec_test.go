package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specpress/specpress/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"spec.yaml", FormatYAML, false},
		{"spec.yml", FormatYAML, false},
		{"spec.json", FormatJSON, false},
		{"spec.md", FormatMarkdown, false},
		{"spec.markdown", FormatMarkdown, false},
		{"SPEC.MD", FormatMarkdown, false},
		{"spec.txt", "", true},
		{"spec", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, errors.ErrValidation) {
					t.Errorf("error = %v, want VALIDATION", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("Compact"); err != nil || f != FormatCompact {
		t.Errorf("ParseFormat(Compact) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "spec.md", "# Title\n\n## Requirements\n\n- **FR-001**: The system MUST parse files.\n")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.Format != FormatMarkdown {
		t.Errorf("Format = %q, want markdown", s.Format)
	}
	if s.TokenCount <= 0 {
		t.Errorf("TokenCount = %d, want > 0", s.TokenCount)
	}
	if len(s.Hash) != 64 {
		t.Errorf("Hash length = %d, want 64", len(s.Hash))
	}
	if s.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want > 0", s.SizeBytes)
	}
	if !filepath.IsAbs(s.FilePath) {
		t.Errorf("FilePath = %q, want absolute", s.FilePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.md"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.md", "")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Load(empty) error = %v, want VALIDATION", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "spec.txt", "content")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Load(.txt) error = %v, want VALIDATION", err)
	}
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Load(dir) error = %v, want VALIDATION", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	a := Hash("same content")
	b := Hash("same content")
	if a != b {
		t.Error("Hash should be deterministic")
	}
	if a == Hash("different content") {
		t.Error("different content should hash differently")
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("/old/spec.md", "abc123", 500)
	if p.TokenCount != 500 {
		t.Errorf("TokenCount = %d, want 500", p.TokenCount)
	}
	if p.Hash != "abc123" {
		t.Errorf("Hash = %q, want abc123", p.Hash)
	}
	if p.Content == "" {
		t.Error("placeholder content should not be empty")
	}
}
