package parser

import (
	"strings"
	"testing"

	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
)

const sampleMarkdown = `Intro text before any heading.

# Widget Spec

## Requirements *(mandatory)*

- **FR-001**: The system MUST parse files.
- **FR-002**: The system MUST count tokens.

## Assumptions

Users have Go installed.

### Sub-detail

This stays inside Assumptions.

# Appendix

Extra material.
`

func findSection(doc *Document, name string) *Section {
	for i := range doc.Sections {
		if doc.Sections[i].Name == name {
			return &doc.Sections[i]
		}
	}
	return nil
}

func TestParseMarkdownTitle(t *testing.T) {
	doc, err := Parse(sampleMarkdown, spec.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Widget Spec" {
		t.Errorf("Title = %q, want 'Widget Spec'", doc.Title)
	}
}

func TestParseMarkdownPreamble(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	pre := findSection(doc, PreambleSection)
	if pre == nil {
		t.Fatal("preamble section missing")
	}
	if !strings.Contains(pre.Body, "Intro text") {
		t.Errorf("preamble body = %q", pre.Body)
	}
}

func TestParseMarkdownAnnotationStripped(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	if findSection(doc, "Requirements") == nil {
		t.Errorf("expected 'Requirements' section (annotation stripped); have %v", sectionNames(doc))
	}
}

func TestParseMarkdownH3StaysInSection(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	assumptions := findSection(doc, "Assumptions")
	if assumptions == nil {
		t.Fatal("Assumptions section missing")
	}
	if !strings.Contains(assumptions.Body, "### Sub-detail") {
		t.Error("level-3 heading should remain literal text inside the section")
	}
	if findSection(doc, "Sub-detail") != nil {
		t.Error("level-3 heading must not start a new section")
	}
}

func TestParseMarkdownSecondH1IsSection(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	if findSection(doc, "Appendix") == nil {
		t.Errorf("second H1 should start a section; have %v", sectionNames(doc))
	}
}

func TestParseMarkdownNoTitle(t *testing.T) {
	doc, _ := Parse("just a paragraph\n", spec.FormatMarkdown)
	if doc.Title != "Untitled" {
		t.Errorf("Title = %q, want 'Untitled'", doc.Title)
	}
}

func TestSerializeMarkdownRawPassthrough(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	out, err := Serialize(doc, spec.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if out != sampleMarkdown {
		t.Error("serialization with Raw set should be an identity passthrough")
	}
}

func TestMarkdownRoundTripWithoutRaw(t *testing.T) {
	doc, _ := Parse(sampleMarkdown, spec.FormatMarkdown)
	doc.Raw = ""
	out, err := Serialize(doc, spec.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}

	reparsed, err := Parse(out, spec.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if reparsed.Title != doc.Title {
		t.Errorf("round-trip title = %q, want %q", reparsed.Title, doc.Title)
	}
	for _, s := range doc.Sections {
		got := findSection(reparsed, s.Name)
		if got == nil {
			t.Errorf("round-trip lost section %q", s.Name)
			continue
		}
		if strings.TrimSpace(got.Body) != strings.TrimSpace(s.Body) {
			t.Errorf("section %q body changed:\n got: %q\nwant: %q", s.Name, got.Body, s.Body)
		}
	}
}

func TestSerializeMarkdownSkipsPreambleHeading(t *testing.T) {
	doc := &Document{
		Title: "Doc",
		Sections: []Section{
			{Name: PreambleSection, Body: "intro"},
			{Name: "Body", Body: "text"},
		},
	}
	out, _ := Serialize(doc, spec.FormatMarkdown)
	if strings.Contains(out, "## preamble") {
		t.Error("preamble must not get a heading line")
	}
	if !strings.Contains(out, "## Body") {
		t.Error("named section heading missing")
	}
}

func TestCompactSerializesAsMarkdown(t *testing.T) {
	doc := &Document{Title: "Doc", Sections: []Section{{Name: "A", Body: "text"}}}
	md, _ := Serialize(doc, spec.FormatMarkdown)
	compact, err := Serialize(doc, spec.FormatCompact)
	if err != nil {
		t.Fatal(err)
	}
	if compact != md {
		t.Error("compact output should use the markdown path")
	}
}

func TestParseYAML(t *testing.T) {
	doc, err := Parse("description: verbose text\ncount: 3\n", spec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Data["description"] != "verbose text" {
		t.Errorf("description = %v", doc.Data["description"])
	}
}

func TestParseYAMLNonMappingWrapped(t *testing.T) {
	doc, err := Parse("- one\n- two\n", spec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Data[wrapKey]; !ok {
		t.Errorf("non-mapping YAML should wrap under %q, got %v", wrapKey, doc.Data)
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	doc, err := Parse("", spec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Data) != 0 {
		t.Errorf("empty YAML should parse to empty mapping, got %v", doc.Data)
	}
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := Parse("key: [unclosed\n  bad: {", spec.FormatYAML)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("invalid YAML error = %v, want VALIDATION", err)
	}
}

func TestParseJSONNonMappingWrapped(t *testing.T) {
	doc, err := Parse(`[1, 2, 3]`, spec.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Data[wrapKey]; !ok {
		t.Errorf("non-mapping JSON should wrap under %q", wrapKey)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := Parse(`{"key": `, spec.FormatJSON)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("invalid JSON error = %v, want VALIDATION", err)
	}
}

func TestSerializeJSONKeepsUnicodeLiteral(t *testing.T) {
	doc := &Document{Data: map[string]any{"name": "café", "cmp": "a < b"}}
	out, err := Serialize(doc, spec.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "café") {
		t.Errorf("unicode should stay literal: %s", out)
	}
	if strings.Contains(out, `<`) {
		t.Errorf("HTML characters should stay literal: %s", out)
	}
	if !strings.Contains(out, "a < b") {
		t.Errorf("comparison text altered: %s", out)
	}
	if !strings.Contains(out, "  \"") {
		t.Errorf("expected 2-space indentation: %s", out)
	}
}

func TestSerializeYAMLRoundTrip(t *testing.T) {
	doc := &Document{Data: map[string]any{"a": "one", "b": map[string]any{"c": "two"}}}
	out, err := Serialize(doc, spec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(out, spec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if back.Data["a"] != "one" {
		t.Errorf("round-trip a = %v", back.Data["a"])
	}
	nested, ok := back.Data["b"].(map[string]any)
	if !ok || nested["c"] != "two" {
		t.Errorf("round-trip nested = %v", back.Data["b"])
	}
}

func TestNormalizeSectionName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Requirements *(mandatory)*", "Requirements"},
		{"Assumptions *(optional)", "Assumptions"},
		{"  Plain  ", "Plain"},
		{"No annotation", "No annotation"},
	}
	for _, tt := range tests {
		if got := NormalizeSectionName(tt.in); got != tt.want {
			t.Errorf("NormalizeSectionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSerializeStructuredAsMarkdown(t *testing.T) {
	doc, err := Parse("service: cache\ndescription: stores sessions\nports:\n  - 6379\n", spec.FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := Serialize(doc, spec.FormatMarkdown)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	for _, want := range []string{"## description", "stores sessions", "## ports", "## service", "cache"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
	// Keys are sorted for deterministic output.
	if strings.Index(out, "## description") > strings.Index(out, "## service") {
		t.Error("sections not in sorted key order")
	}
}

func sectionNames(doc *Document) []string {
	names := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		names[i] = s.Name
	}
	return names
}
