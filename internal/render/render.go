// Package render produces HTML previews of digests.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/spec"
)

var pageTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
.meta { color: #555; font-size: 0.85rem; border-bottom: 1px solid #ddd; padding-bottom: 0.75rem; margin-bottom: 1.5rem; }
pre { background: #f6f6f6; padding: 0.75rem; overflow-x: auto; }
</style>
</head>
<body>
<div class="meta">
<strong>{{.Title}}</strong> &middot; profile {{.Profile}} &middot; {{.DigestTokens}} of {{.OriginalTokens}} tokens ({{.SavedPercent}} saved)
</div>
{{.Body}}
</body>
</html>
`))

type pageData struct {
	Title          string
	Profile        string
	OriginalTokens int
	DigestTokens   int
	SavedPercent   string
	Body           template.HTML
}

// Markdown converts markdown text to HTML.
func Markdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", errors.NewInternal(err)
	}
	return template.HTML(buf.String()), nil
}

// Preview renders a digest as a standalone HTML page with a summary banner.
// Structured digests are shown verbatim inside a code block.
func Preview(d *digest.Digest, title string) (string, error) {
	var body template.HTML
	switch d.Format {
	case spec.FormatMarkdown, spec.FormatCompact:
		html, err := Markdown(d.Content)
		if err != nil {
			return "", err
		}
		body = html
	default:
		body = template.HTML("<pre>" + template.HTMLEscapeString(d.Content) + "</pre>")
	}

	data := pageData{
		Title:          title,
		Profile:        d.Metadata.OptimizationProfile,
		OriginalTokens: d.Source.TokenCount,
		DigestTokens:   d.TokenCount,
		SavedPercent:   fmt.Sprintf("%.0f%%", d.CompressionRatio*100),
		Body:           body,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", errors.NewInternal(err)
	}
	return buf.String(), nil
}
