// Package profile holds the static compression configuration: per-section
// priorities, preserve rules, abbreviations, and level targets.
package profile

import (
	"fmt"
	"regexp"

	"github.com/specpress/specpress/internal/errors"
)

// Priority governs how aggressively a section's text is reduced.
type Priority string

const (
	PriorityCritical Priority = "critical" // whitespace normalization only
	PriorityHigh     Priority = "high"     // summarize
	PriorityMedium   Priority = "medium"   // compress
	PriorityLow      Priority = "low"      // omit entirely
)

// Level selects a compression aggressiveness tier.
type Level string

const (
	LevelLow    Level = "low"    // ~30-35% reduction
	LevelMedium Level = "medium" // ~40-50% reduction, the default
	LevelHigh   Level = "high"   // ~55-65% reduction
)

// levelRanges maps each level to its expected target-reduction range.
var levelRanges = map[Level][2]float64{
	LevelLow:    {0.30, 0.35},
	LevelMedium: {0.40, 0.50},
	LevelHigh:   {0.55, 0.65},
}

// ParseLevel converts a user-supplied level string to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return Level(s), nil
	}
	return "", errors.NewValidation(fmt.Sprintf("invalid compression level %q; use one of: low, medium, high", s))
}

// Rule actions.
const (
	ActionPreserve = "preserve"
	ActionCompress = "compress"
	ActionOmit     = "omit"
)

// PreserveRule marks content whose matches must survive compression unchanged.
type PreserveRule struct {
	Pattern *regexp.Regexp
	Action  string
	Reason  string
}

func (r PreserveRule) validate() error {
	switch r.Action {
	case ActionPreserve, ActionCompress, ActionOmit:
	default:
		return errors.NewValidation(fmt.Sprintf("rule action must be preserve, compress, or omit; got %q", r.Action))
	}
	if r.Pattern == nil || r.Pattern.String() == "" {
		return errors.NewValidation("preserve rule pattern cannot be empty")
	}
	return nil
}

// Profile is an immutable compression configuration. Safe to share across
// concurrent generation runs.
type Profile struct {
	Name              string
	Level             Level
	TargetReduction   float64
	SectionPriorities map[string]Priority
	PreserveRules     []PreserveRule
	// Abbreviations maps full phrases to short forms; nil disables the
	// abbreviation pass.
	Abbreviations map[string]string
}

// New constructs a Profile, enforcing construction invariants: target within
// [0, 0.9] and a non-empty section priority map.
func New(name string, level Level, target float64, priorities map[string]Priority, rules []PreserveRule, abbrevs map[string]string) (*Profile, error) {
	if target < 0.0 || target > 0.9 {
		return nil, errors.NewValidation(fmt.Sprintf("target reduction must be between 0.0 and 0.9, got %.2f", target))
	}
	if len(priorities) == 0 {
		return nil, errors.NewValidation("section priorities cannot be empty")
	}
	return &Profile{
		Name:              name,
		Level:             level,
		TargetReduction:   target,
		SectionPriorities: priorities,
		PreserveRules:     rules,
		Abbreviations:     abbrevs,
	}, nil
}

// PriorityFor returns the priority assigned to a section name, defaulting to
// medium for unlisted sections.
func (p *Profile) PriorityFor(section string) Priority {
	if prio, ok := p.SectionPriorities[section]; ok {
		return prio
	}
	return PriorityMedium
}

// Validate checks internal consistency: the target must fall inside the
// expected range for the profile's level, and every rule must be well formed.
func (p *Profile) Validate() error {
	r, ok := levelRanges[p.Level]
	if !ok {
		return errors.NewValidation(fmt.Sprintf("unknown compression level %q", p.Level))
	}
	if p.TargetReduction < r[0] || p.TargetReduction > r[1] {
		return errors.NewValidation(fmt.Sprintf(
			"target reduction %.2f is outside expected range [%.2f, %.2f] for %s compression",
			p.TargetReduction, r[0], r[1], p.Level))
	}
	for _, rule := range p.PreserveRules {
		if err := rule.validate(); err != nil {
			return err
		}
	}
	return nil
}
