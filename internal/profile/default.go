package profile

import "regexp"

// defaultPriorities assigns priorities to the section names that commonly
// appear in specification documents. Requirement-bearing sections summarize;
// explanatory sections compress or drop.
var defaultPriorities = map[string]Priority{
	"Functional Requirements":  PriorityHigh,
	"Requirements":             PriorityHigh,
	"User Stories":             PriorityHigh,
	"User Scenarios & Testing": PriorityHigh,
	"Acceptance Criteria":      PriorityHigh,
	"Acceptance Scenarios":     PriorityHigh,
	"Success Criteria":         PriorityHigh,

	"Measurable Outcomes": PriorityMedium,
	"Edge Cases":          PriorityMedium,
	"Key Entities":        PriorityMedium,

	"Assumptions":            PriorityLow,
	"Implementation Details": PriorityLow,
	"Examples":               PriorityLow,
	"Technical Context":      PriorityLow,
	"Rationale":              PriorityLow,
	"Background":             PriorityLow,
	"Overview":               PriorityLow,
	"Notes":                  PriorityLow,
	"References":             PriorityLow,
}

// defaultRules protect requirement identifiers and BDD acceptance blocks from
// any alteration.
var defaultRules = []PreserveRule{
	{
		Pattern: regexp.MustCompile(`(?m)^\s*-\s+\*\*FR-\d+\*\*:`),
		Action:  ActionPreserve,
		Reason:  "Functional requirements must be intact",
	},
	{
		Pattern: regexp.MustCompile(`(?m)^\s*-\s+\*\*SC-\d+\*\*:`),
		Action:  ActionPreserve,
		Reason:  "Success criteria must be intact",
	},
	{
		Pattern: regexp.MustCompile(`\*\*Given\*\*.*\*\*When\*\*.*\*\*Then\*\*`),
		Action:  ActionPreserve,
		Reason:  "Acceptance criteria (BDD format)",
	},
}

var defaultAbbreviations = map[string]string{
	"Functional Requirement": "FR",
	"User Story":             "US",
	"Acceptance Criteria":    "AC",
	"Success Criteria":       "SC",
	"specification":          "spec",
	"implementation":         "impl",
	"configuration":          "config",
	"application":            "app",
}

// Default returns the medium-level profile used when no level is selected.
func Default() *Profile {
	return &Profile{
		Name:              "default",
		Level:             LevelMedium,
		TargetReduction:   0.40,
		SectionPriorities: defaultPriorities,
		PreserveRules:     defaultRules,
		Abbreviations:     defaultAbbreviations,
	}
}

// ForLevel returns the profile derivative for a compression level. Low
// compression skips the abbreviation table.
func ForLevel(level Level) *Profile {
	switch level {
	case LevelLow:
		return &Profile{
			Name:              "low",
			Level:             LevelLow,
			TargetReduction:   0.32,
			SectionPriorities: defaultPriorities,
			PreserveRules:     defaultRules,
		}
	case LevelHigh:
		return &Profile{
			Name:              "high",
			Level:             LevelHigh,
			TargetReduction:   0.60,
			SectionPriorities: defaultPriorities,
			PreserveRules:     defaultRules,
			Abbreviations:     defaultAbbreviations,
		}
	default:
		return Default()
	}
}
