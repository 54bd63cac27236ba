// Package engine implements priority-driven text reduction. Compression is a
// pure function over the input text: no state survives a call, so a shared
// read-only profile can drive concurrent runs.
//
// Pattern order matters. The abbreviation, contraction, and filler passes run
// before structural-marker stripping because several of their patterns depend
// on the surrounding markdown punctuation still being present.
package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/specpress/specpress/internal/profile"
)

// rewrite is one pattern -> replacement step in a reduction pipeline. Kept as
// ordered data so profiles can grow rules without touching engine code.
type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func (r rewrite) apply(s string) string {
	return r.re.ReplaceAllString(s, r.repl)
}

// metaRewrites remove labeled meta-commentary blocks up to the next heading
// or blank-line boundary. The boundary is captured and restored since RE2 has
// no lookahead.
var metaRewrites = []rewrite{
	{regexp.MustCompile(`(?s)\*\*Why this priority\*\*:.*?(\n\n|\n\*\*|$)`), "$1"},
	{regexp.MustCompile(`(?s)\*\*Independent Test\*\*:.*?(\n\n|\n\*\*|$)`), "$1"},
	{regexp.MustCompile(`(?s)\*\*Rationale\*\*:.*?(\n\n|\n\*\*|$)`), "$1"},
	{regexp.MustCompile(`(?s)\*\*Note\*\*:.*?(\n\n|\n\*\*|$)`), "$1"},
	{regexp.MustCompile(`(?s)###?\s*Edge Cases.*?(\n###|\n##|$)`), "$1"},
	{regexp.MustCompile(`(?s)###?\s*Assumptions.*?(\n###|\n##|$)`), "$1"},
}

// contractionRewrites compact verbose phrasing to shorter equivalents.
var contractionRewrites = []rewrite{
	{regexp.MustCompile(`(?i)\bA (developer|user|person|team member) wants to\b`), "$1:"},
	{regexp.MustCompile(`(?i)\bThe (system|tool|CLI|application) (MUST|SHOULD|MAY|CAN)\b`), "$2"},
	{regexp.MustCompile(`(?i)\b(so that|so they can|in order to)\b`), "to"},
	{regexp.MustCompile(`(?i)\b(is able to|are able to)\b`), "can"},
	{regexp.MustCompile(`(?i)\b(will be able to)\b`), "can"},
	{regexp.MustCompile(`(?i)\b(has the ability to)\b`), "can"},
	{regexp.MustCompile(`(?i)\bwithout manual setup each time\b`), ""},
	{regexp.MustCompile(`(?i)\bacross multiple projects\b`), "globally"},
	{regexp.MustCompile(`(?i)\bthe latest version\b`), "latest"},
	{regexp.MustCompile(`(?i)\bAcceptance Scenarios\b`), "Acceptance"},
	{regexp.MustCompile(`(?i)\(Priority:\s*P\d+\)`), ""},
	{regexp.MustCompile(`(?i)\bUser Story\b`), "US"},
	{regexp.MustCompile(`(?i)\bFunctional Requirements\b`), "Requirements"},
	{regexp.MustCompile(`(?i)\bcommand-line\b`), "CLI"},
	{regexp.MustCompile(`(?i)\bvia\b`), "w/"},
	{regexp.MustCompile(`(?i)\bprovide\b`), "give"},
	{regexp.MustCompile(`(?i)\binformation\b`), "info"},
}

// fillerRewrites drop words and phrases that carry no meaning.
var fillerRewrites = []rewrite{
	{regexp.MustCompile(`(?i)\b(basically|essentially|actually|literally|really|very|quite|rather|somewhat)\b`), ""},
	{regexp.MustCompile(`(?i)\b(in order to|in terms of|with regard to|with respect to)\b`), ""},
	{regexp.MustCompile(`(?i)\b(it is important to note that|it should be noted that|please note that)\b`), ""},
	{regexp.MustCompile(`(?i)\b(in other words|that is to say|as a matter of fact)\b`), ""},
	{regexp.MustCompile(`(?i)\b(for example|for instance|such as)\b`), ""},
}

// mediumFillerRewrites extend the filler set for the compress pipeline.
var mediumFillerRewrites = append(fillerRewrites[:4:4],
	rewrite{regexp.MustCompile(`(?i)\b(for example|for instance|such as|including but not limited to)\b`), ""},
)

// articleRewrites drop redundant articles before nouns whose reference is
// clear in specification prose.
var articleRewrites = []rewrite{
	{regexp.MustCompile(`(?i)\b(a|an|the)\s+(specification|file|command|tool|system|user|developer|digest|version|output|input|flag)\b`), "$2"},
	{regexp.MustCompile(`(?i)\bfile path\b`), "path"},
	{regexp.MustCompile(`(?i)\bfile name\b`), "name"},
}

var (
	boldMarkup    = rewrite{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"}
	italicMarkup  = rewrite{regexp.MustCompile(`_([^_]+)_`), "$1"}
	linkMarkup    = rewrite{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"}
	numberedList  = rewrite{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), "• "}
	anyListMarker = rewrite{regexp.MustCompile(`(?m)^\s*(?:\d+\.|[-*\x{2022}])\s+`), ""}
	horizontal    = rewrite{regexp.MustCompile(`(?m)^\s*---+\s*$`), ""}
	level3Header  = rewrite{regexp.MustCompile(`(?m)^###\s+`), ""}
	anyHeader     = rewrite{regexp.MustCompile(`(?m)^#+\s+`), ""}
	sectionLabel  = rewrite{regexp.MustCompile(`(?m)^(Functional|Non-Functional|Technical)\s+(Requirements|Constraints):?\s*$`), ""}

	blankLines   = rewrite{regexp.MustCompile(`\n\n+`), "\n"}
	blankToOne   = rewrite{regexp.MustCompile(`\n\n+`), "\n\n"}
	doubleSpaces = rewrite{regexp.MustCompile(`  +`), " "}
)

// Compress reduces text according to its priority. Critical text is only
// whitespace-normalized; high-priority text is summarized; medium-priority
// text is compressed; low-priority text is dropped.
func Compress(text string, prio profile.Priority, abbrevs map[string]string) string {
	if text == "" {
		return text
	}

	switch prio {
	case profile.PriorityCritical:
		out := blankToOne.apply(text)
		out = doubleSpaces.apply(out)
		return strings.TrimSpace(out)

	case profile.PriorityHigh:
		return strings.TrimSpace(summarize(text, abbrevs))

	case profile.PriorityMedium:
		return strings.TrimSpace(compact(text, abbrevs))

	case profile.PriorityLow:
		return ""
	}
	return strings.TrimSpace(text)
}

// summarize strips meta-commentary and verbose phrasing while keeping the
// section's structure readable.
func summarize(text string, abbrevs map[string]string) string {
	out := text
	for _, r := range metaRewrites {
		out = r.apply(out)
	}
	out = applyAbbreviations(out, abbrevs)
	for _, r := range contractionRewrites {
		out = r.apply(out)
	}
	for _, r := range fillerRewrites {
		out = r.apply(out)
	}
	for _, r := range articleRewrites {
		out = r.apply(out)
	}
	out = boldMarkup.apply(out)
	out = italicMarkup.apply(out)
	out = numberedList.apply(out)
	out = horizontal.apply(out)
	out = level3Header.apply(out)
	out = sectionLabel.apply(out)
	out = blankLines.apply(out)
	out = doubleSpaces.apply(out)
	return out
}

// compact aggressively flattens the text: no markdown, no list markers, no
// headings.
func compact(text string, abbrevs map[string]string) string {
	out := applyAbbreviations(text, abbrevs)
	for _, r := range mediumFillerRewrites {
		out = r.apply(out)
	}
	out = boldMarkup.apply(out)
	out = italicMarkup.apply(out)
	out = linkMarkup.apply(out)
	out = anyListMarker.apply(out)
	out = anyHeader.apply(out)
	out = blankLines.apply(out)
	out = doubleSpaces.apply(out)
	return out
}

// applyAbbreviations substitutes whole-word, case-insensitive occurrences of
// each full phrase with its short form. Keys are walked in sorted order for
// deterministic output.
func applyAbbreviations(text string, abbrevs map[string]string) string {
	if len(abbrevs) == 0 {
		return text
	}
	keys := make([]string, 0, len(abbrevs))
	for k := range abbrevs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := text
	for _, full := range keys {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(full) + `\b`)
		out = re.ReplaceAllString(out, abbrevs[full])
	}
	return out
}
