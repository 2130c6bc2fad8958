package filter

import (
	"fmt"
	"sync"
	"time"
)

// RuleSource supplies guild-scoped rules from one backing store. The
// structured rule table and the JSON word list attached to guild settings
// are both adapters of this interface.
type RuleSource interface {
	Rules(guildID string) ([]FilterRule, error)
}

// RuleWriter persists rule mutations to the structured rule table.
type RuleWriter interface {
	InsertRule(rule *FilterRule) error
	UpdateRule(rule *FilterRule) error
	DeleteRule(guildID, name string) error
}

// DefaultCacheTTL bounds how stale a guild's cached rule set may get.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	rules     []FilterRule
	fetchedAt time.Time
}

// Store owns the merged per-guild rule set with a short-TTL read cache so the
// hot message path avoids a database round trip per message. Mutations
// invalidate the guild's cache entry before returning, so an immediate
// re-read observes the change.
type Store struct {
	table    RuleSource
	settings RuleSource
	writer   RuleWriter
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewStore(table, settings RuleSource, writer RuleWriter, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		table:    table,
		settings: settings,
		writer:   writer,
		ttl:      ttl,
		cache:    make(map[string]cacheEntry),
	}
}

// Rules returns the merged rule set for a guild, served from cache unless the
// entry is stale, missing, or forceRefresh is set.
func (s *Store) Rules(guildID string, forceRefresh bool) ([]FilterRule, error) {
	if !forceRefresh {
		s.mu.RLock()
		entry, ok := s.cache[guildID]
		s.mu.RUnlock()
		if ok && time.Since(entry.fetchedAt) < s.ttl {
			return entry.rules, nil
		}
	}

	merged, err := s.fetch(guildID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[guildID] = cacheEntry{rules: merged, fetchedAt: time.Now()}
	s.mu.Unlock()

	return merged, nil
}

// fetch unions both sources. Table-sourced rules take precedence over
// settings-sourced rules with the same name; dashboards may only populate
// the settings-side JSON list, so neither source can be dropped.
func (s *Store) fetch(guildID string) ([]FilterRule, error) {
	tableRules, err := s.table.Rules(guildID)
	if err != nil {
		return nil, fmt.Errorf("rule table fetch: %w", err)
	}

	var settingsRules []FilterRule
	if s.settings != nil {
		settingsRules, err = s.settings.Rules(guildID)
		if err != nil {
			return nil, fmt.Errorf("settings rule fetch: %w", err)
		}
	}

	byName := make(map[string]struct{}, len(tableRules))
	merged := make([]FilterRule, 0, len(tableRules)+len(settingsRules))
	for _, r := range tableRules {
		byName[r.Name] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range settingsRules {
		if _, shadowed := byName[r.Name]; shadowed {
			continue
		}
		merged = append(merged, r)
	}

	return merged, nil
}

// ClearCache drops the cached rule set for a guild.
func (s *Store) ClearCache(guildID string) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}

// AddRule validates and persists a new rule, then invalidates the guild's
// cache. Unsafe regex patterns are rejected here and never stored.
func (s *Store) AddRule(rule *FilterRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.writer.InsertRule(rule); err != nil {
		return fmt.Errorf("insert rule %q: %w", rule.Name, err)
	}
	s.ClearCache(rule.GuildID)
	return nil
}

// UpdateRule validates and persists a rule change, then invalidates the
// guild's cache.
func (s *Store) UpdateRule(rule *FilterRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.writer.UpdateRule(rule); err != nil {
		return fmt.Errorf("update rule %q: %w", rule.Name, err)
	}
	s.ClearCache(rule.GuildID)
	return nil
}

// RemoveRule deletes a rule by name and invalidates the guild's cache.
func (s *Store) RemoveRule(guildID, name string) error {
	if err := s.writer.DeleteRule(guildID, name); err != nil {
		return fmt.Errorf("delete rule %q: %w", name, err)
	}
	s.ClearCache(guildID)
	return nil
}

func validateRule(rule *FilterRule) error {
	if rule.Name == "" {
		return &CompileError{Pattern: rule.Pattern, Reason: "rule name is empty"}
	}
	if rule.Pattern == "" {
		return &CompileError{Pattern: rule.Pattern, Reason: "pattern is empty"}
	}
	if !rule.MatchType.Valid() {
		return &CompileError{Pattern: rule.Pattern, Reason: fmt.Sprintf("unknown match type %q", rule.MatchType)}
	}
	if !rule.Action.Valid() {
		return &CompileError{Pattern: rule.Pattern, Reason: fmt.Sprintf("unknown action %q", rule.Action)}
	}
	if rule.Severity < 0 || rule.Severity > 100 {
		return &CompileError{Pattern: rule.Pattern, Reason: "severity out of range 0-100"}
	}
	if rule.MatchType == MatchRegex {
		if err := ValidateRegex(rule.Pattern); err != nil {
			return err
		}
	}
	return nil
}
