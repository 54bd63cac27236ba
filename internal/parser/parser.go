// Package parser converts raw document bytes into a normalized in-memory
// tree and back. Markdown documents become a title plus ordered named
// sections; YAML and JSON become a generic key/value mapping.
package parser

import (
	"fmt"

	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
)

// Section is a named, independently compressible unit of a markdown document.
type Section struct {
	Name string
	Body string
}

// Document is the normalized in-memory tree for a parsed document.
// Markdown documents populate Title, Sections, and Raw; structured
// documents populate Data.
type Document struct {
	Title    string
	Sections []Section
	// Raw holds the original markdown content. When set, markdown
	// serialization is an identity passthrough.
	Raw  string
	Data map[string]any
}

// SetSection stores a section body, replacing the body of an existing
// section with the same name while keeping its original position.
func (d *Document) SetSection(name, body string) {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			d.Sections[i].Body = body
			return
		}
	}
	d.Sections = append(d.Sections, Section{Name: name, Body: body})
}

// Parse converts content into a Document according to format.
func Parse(content string, format spec.Format) (*Document, error) {
	switch format {
	case spec.FormatYAML:
		return parseYAML(content)
	case spec.FormatJSON:
		return parseJSON(content)
	case spec.FormatMarkdown:
		return parseMarkdown(content), nil
	}
	return nil, errors.NewValidation(fmt.Sprintf("unsupported format for parsing: %s", format))
}

// Serialize converts a Document back to text in the target format.
// Compact output serializes through the markdown path.
func Serialize(doc *Document, format spec.Format) (string, error) {
	switch format {
	case spec.FormatYAML:
		return serializeYAML(doc.structuredData())
	case spec.FormatJSON:
		return serializeJSON(doc.structuredData())
	case spec.FormatMarkdown, spec.FormatCompact:
		return serializeMarkdown(doc), nil
	}
	return "", errors.NewValidation(fmt.Sprintf("unsupported format for serialization: %s", format))
}

// structuredData returns the document as a mapping. A markdown document
// converts to {title, sections} so it can cross formats.
func (d *Document) structuredData() map[string]any {
	if d.Data != nil {
		return d.Data
	}
	sections := make(map[string]any, len(d.Sections))
	for _, s := range d.Sections {
		sections[s.Name] = s.Body
	}
	return map[string]any{"title": d.Title, "sections": sections}
}
