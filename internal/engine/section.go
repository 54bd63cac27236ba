package engine

import "github.com/specpress/specpress/internal/profile"

// Action records what the engine did to a section.
type Action string

const (
	ActionPreserved  Action = "preserved"
	ActionSummarized Action = "summarized"
	ActionCompressed Action = "compressed"
	ActionOmitted    Action = "omitted"
)

// OptimizeSection compresses one section's content under the profile's
// priority for that section name, protecting preserve-rule matches from
// alteration. Returns the optimized text and the action taken.
//
// The action reflects what happened to the text, not the priority's intent:
// a section that comes back byte-identical is reported preserved even when
// its priority allowed compression.
func OptimizeSection(name, content string, p *profile.Profile) (string, Action) {
	if content == "" {
		return "", ActionOmitted
	}

	prio := p.PriorityFor(name)

	working, table := protect(content, p.PreserveRules)
	optimized := Compress(working, prio, p.Abbreviations)
	optimized = table.restore(optimized)

	switch {
	case prio == profile.PriorityCritical || optimized == content:
		return optimized, ActionPreserved
	case prio == profile.PriorityHigh:
		return optimized, ActionSummarized
	case prio == profile.PriorityMedium:
		return optimized, ActionCompressed
	default:
		return optimized, ActionOmitted
	}
}
