package parser

import (
	"regexp"
	"strings"
)

// PreambleSection is the reserved name for text appearing before the first
// heading. It serializes without a heading line.
const PreambleSection = "preamble"

// annotationPattern matches a trailing emphasized parenthetical on a heading,
// e.g. "Requirements *(mandatory)*".
var annotationPattern = regexp.MustCompile(`\s*\*\([^)]+\)\*?\s*$`)

// NormalizeSectionName strips a trailing parenthesized annotation and
// surrounding whitespace from a heading name.
func NormalizeSectionName(name string) string {
	return strings.TrimSpace(annotationPattern.ReplaceAllString(name, ""))
}

// parseMarkdown splits content into a title and named sections.
//
// The first level-1 heading becomes the title; later level-1 headings start
// new sections named by their text. Level-2 headings start new sections.
// Level-3 and deeper headings stay inside the current section as literal
// text. Lines before the first heading collect under the preamble section.
func parseMarkdown(content string) *Document {
	doc := &Document{Raw: content}

	current := PreambleSection
	var buf []string
	sawLines := false

	flush := func() {
		if sawLines {
			doc.SetSection(current, strings.TrimSpace(strings.Join(buf, "\n")))
		}
		buf = buf[:0]
		sawLines = false
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(line[2:])
			} else {
				flush()
				current = NormalizeSectionName(strings.TrimSpace(line[2:]))
			}
		case strings.HasPrefix(line, "## "):
			flush()
			current = NormalizeSectionName(strings.TrimSpace(line[3:]))
		default:
			buf = append(buf, line)
			sawLines = true
		}
	}
	flush()

	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	return doc
}

// serializeMarkdown emits the document as markdown. When Raw is present the
// original content passes through verbatim. Structured documents render
// each top-level key as a section.
func serializeMarkdown(doc *Document) string {
	if doc.Raw != "" {
		return doc.Raw
	}
	if doc.Data != nil {
		return mappingMarkdown(doc.Data)
	}

	var lines []string
	if doc.Title != "" {
		lines = append(lines, "# "+doc.Title, "")
	}
	for _, s := range doc.Sections {
		if s.Name != PreambleSection {
			lines = append(lines, "## "+s.Name, "")
		}
		lines = append(lines, s.Body, "")
	}
	return strings.Join(lines, "\n")
}
