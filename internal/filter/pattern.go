package filter

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// MatchType selects how a rule pattern is applied to message text.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchPartial    MatchType = "partial"
	MatchRegex      MatchType = "regex"
	MatchStartsWith MatchType = "startswith"
	MatchEndsWith   MatchType = "endswith"
)

// Valid reports whether mt is a known match type.
func (mt MatchType) Valid() bool {
	switch mt {
	case MatchExact, MatchPartial, MatchRegex, MatchStartsWith, MatchEndsWith:
		return true
	}
	return false
}

// CompileError is returned when a rule pattern is rejected at creation time.
type CompileError struct {
	Pattern string
	Reason  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pattern %q rejected: %s", e.Pattern, e.Reason)
}

// Matcher is a compiled, reusable pattern matcher.
type Matcher struct {
	re *regexp.Regexp
}

// Find returns all matches of the pattern in text.
func (m *Matcher) Find(text string) []string {
	return m.re.FindAllString(text, -1)
}

// Matches reports whether the pattern matches text at all.
func (m *Matcher) Matches(text string) bool {
	return m.re.MatchString(text)
}

type matcherKey struct {
	pattern       string
	matchType     MatchType
	caseSensitive bool
}

// Compiler compiles (pattern, matchType, caseSensitive) triples into matchers
// and caches them, since the same rules run against every message.
type Compiler struct {
	mu    sync.RWMutex
	cache map[matcherKey]*Matcher
}

func NewCompiler() *Compiler {
	return &Compiler{
		cache: make(map[matcherKey]*Matcher),
	}
}

// Compile returns a cached matcher for the triple, building it on first use.
// Regex-type patterns are used verbatim and are assumed to have passed
// ValidateRegex at rule-creation time; they are not re-validated here.
func (c *Compiler) Compile(pattern string, matchType MatchType, caseSensitive bool) (*Matcher, error) {
	key := matcherKey{pattern, matchType, caseSensitive}

	c.mu.RLock()
	m, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	expr, err := buildExpression(pattern, matchType)
	if err != nil {
		return nil, err
	}
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Reason: err.Error()}
	}

	m = &Matcher{re: re}

	c.mu.Lock()
	c.cache[key] = m
	c.mu.Unlock()

	return m, nil
}

func buildExpression(pattern string, matchType MatchType) (string, error) {
	switch matchType {
	case MatchExact:
		// Whole word: bounded by non-word characters or string edges.
		return `\b` + regexp.QuoteMeta(pattern) + `\b`, nil
	case MatchPartial:
		return regexp.QuoteMeta(pattern), nil
	case MatchStartsWith:
		return `^` + regexp.QuoteMeta(pattern), nil
	case MatchEndsWith:
		return regexp.QuoteMeta(pattern) + `$`, nil
	case MatchRegex:
		return pattern, nil
	default:
		return "", &CompileError{Pattern: pattern, Reason: fmt.Sprintf("unknown match type %q", matchType)}
	}
}

const (
	regexProbeLen    = 4096
	regexProbeBudget = 50 * time.Millisecond
)

// ValidateRegex checks a candidate regex pattern at rule-creation time. The
// pattern must compile, and executing it against a worst-case probe string (a
// long single-character run with a trailing mismatch) must finish within a
// short wall-clock budget. This is a heuristic guard against pathological
// patterns, not a proof of safety.
func ValidateRegex(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &CompileError{Pattern: pattern, Reason: err.Error()}
	}

	probe := strings.Repeat("a", regexProbeLen) + "!"

	start := time.Now()
	re.FindAllString(probe, -1)
	if elapsed := time.Since(start); elapsed > regexProbeBudget {
		return &CompileError{
			Pattern: pattern,
			Reason:  fmt.Sprintf("probe execution took %v, budget is %v", elapsed, regexProbeBudget),
		}
	}

	return nil
}
