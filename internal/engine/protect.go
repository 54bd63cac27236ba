package engine

import (
	"fmt"
	"strings"

	"github.com/specpress/specpress/internal/profile"
)

// placeholderID identifies one protected span. The rendered token uses an
// alphabet that no compression substitution or markdown construct produces,
// so it survives every reduction pass untouched.
type placeholderID int

func (id placeholderID) token() string {
	return fmt.Sprintf("XPRESERVE%04dX", int(id))
}

// spanTable maps placeholder ids to the original matched text.
type spanTable struct {
	spans map[placeholderID]string
	next  placeholderID
}

// protect replaces every match of the preserve-action rules with a unique
// placeholder token. Matches are replaced in reverse position order so
// earlier offsets stay valid while rewriting.
func protect(text string, rules []profile.PreserveRule) (string, *spanTable) {
	table := &spanTable{spans: make(map[placeholderID]string)}

	working := text
	for _, rule := range rules {
		if rule.Action != profile.ActionPreserve {
			continue
		}
		matches := rule.Pattern.FindAllStringIndex(working, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			start, end := matches[i][0], matches[i][1]
			id := table.claim(text)
			table.spans[id] = working[start:end]
			working = working[:start] + id.token() + working[end:]
		}
	}
	return working, table
}

// claim hands out the next placeholder id whose token does not already occur
// in the source text, so content that happens to resemble a placeholder can
// never be confused with one.
func (t *spanTable) claim(source string) placeholderID {
	for strings.Contains(source, t.next.token()) {
		t.next++
	}
	id := t.next
	t.next++
	return id
}

// restore substitutes each placeholder back with its original span, verbatim,
// regardless of what the surrounding compression did.
func (t *spanTable) restore(text string) string {
	out := text
	for id, original := range t.spans {
		out = strings.ReplaceAll(out, id.token(), original)
	}
	return out
}
