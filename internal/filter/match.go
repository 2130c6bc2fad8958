package filter

import (
	"sort"
	"strings"
)

// Action is the enforcement action configured on a rule.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionWarn    Action = "warn"
	ActionTimeout Action = "timeout"
	ActionKick    Action = "kick"
	ActionBan     Action = "ban"
	ActionLogOnly Action = "log_only"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionDelete, ActionWarn, ActionTimeout, ActionKick, ActionBan, ActionLogOnly:
		return true
	}
	return false
}

// Confidence describes whether a rule matched the literal text or only a
// normalized variant of it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// FilterRule is a guild-scoped content rule.
type FilterRule struct {
	ID               int64
	GuildID          string
	Name             string
	Pattern          string
	MatchType        MatchType
	Action           Action
	Severity         int
	CaseSensitive    bool
	CheckObfuscation bool
	ActionDuration   int64 // seconds, timeout action only
	WarnMessage      string
	Enabled          bool
	ExemptRoleIDs    map[string]struct{}
	ExemptChannelIDs map[string]struct{}
}

// MatchResult is produced per message check and consumed immediately by the
// enforcement coordinator; it is never persisted.
type MatchResult struct {
	Rule          *FilterRule
	Variant       string
	Matches       []string
	Confidence    Confidence
	WasObfuscated bool
}

// CheckFilter runs a single rule against text. When the rule checks
// obfuscation the full variant set is tried in order; otherwise only the raw
// lowercase text. Returns nil when nothing matches.
func (c *Compiler) CheckFilter(text string, rule *FilterRule) (*MatchResult, error) {
	lower := strings.ToLower(text)

	var variants []string
	if rule.CheckObfuscation {
		variants = Normalize(text)
	} else {
		variants = []string{lower}
	}

	m, err := c.Compile(rule.Pattern, rule.MatchType, rule.CaseSensitive)
	if err != nil {
		return nil, err
	}

	for _, variant := range variants {
		matches := m.Find(variant)
		if len(matches) == 0 {
			continue
		}

		confidence := ConfidenceHigh
		obfuscated := false
		if variant != lower {
			confidence = ConfidenceMedium
			obfuscated = true
		}

		return &MatchResult{
			Rule:          rule,
			Variant:       variant,
			Matches:       matches,
			Confidence:    confidence,
			WasObfuscated: obfuscated,
		}, nil
	}

	return nil, nil
}

// CheckFilters evaluates rules in severity-descending, then name-ascending
// order and returns the first match. The ordering is a caller contract: it
// decides which rule wins when several would match the same message.
// Disabled rules are skipped; per-rule compile failures skip that rule only.
func (c *Compiler) CheckFilters(text string, rules []FilterRule) (*MatchResult, error) {
	ordered := make([]FilterRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity != ordered[j].Severity {
			return ordered[i].Severity > ordered[j].Severity
		}
		return ordered[i].Name < ordered[j].Name
	})

	var firstErr error
	for i := range ordered {
		rule := &ordered[i]
		if !rule.Enabled {
			continue
		}

		result, err := c.CheckFilter(text, rule)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if result != nil {
			return result, nil
		}
	}

	return nil, firstErr
}
