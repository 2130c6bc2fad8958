package tracker

import (
	"sync"
	"time"
)

// Result reports the window evaluation after one tracked action. Violated is
// true only on the call that crosses the limit; later calls while still over
// the threshold report false until the key is reset, so a single burst fires
// mitigation exactly once.
type Result struct {
	Violated bool
	Count    int
	Limit    int
}

type counterKey struct {
	guildID string
	actorID string
	action  ActionType
}

type window struct {
	stamps  []time.Time
	tripped bool
}

// Tracker counts dangerous actions per (guild, actor, action type) within
// sliding time windows. All state is owned by the instance so tests can run
// independent trackers without cross-test leakage.
type Tracker struct {
	limits LimitProvider
	now    func() time.Time

	mu      sync.Mutex
	windows map[counterKey]*window
}

func New(limits LimitProvider) *Tracker {
	return &Tracker{
		limits:  limits,
		now:     time.Now,
		windows: make(map[counterKey]*window),
	}
}

// SetClock replaces the time source, for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Track records one action and evaluates the pruned window against the
// configured limit. Prune, append and evaluate happen under one lock so
// concurrent events from the same actor cannot undercount.
func (t *Tracker) Track(guildID, actorID string, action ActionType) Result {
	limit := t.limits.Limit(guildID, action)
	now := t.now()
	key := counterKey{guildID: guildID, actorID: actorID, action: action}

	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[key]
	if !ok {
		w = &window{}
		t.windows[key] = w
	}

	cutoff := now.Add(-limit.Window)
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = append(kept, now)

	// Window emptied naturally since the last crossing: arm it again.
	if len(w.stamps) == 1 {
		w.tripped = false
	}

	count := len(w.stamps)
	violated := count >= limit.Max && !w.tripped
	if violated {
		w.tripped = true
	}

	return Result{Violated: violated, Count: count, Limit: limit.Max}
}

// Count returns the current pruned count for a key without recording an
// action.
func (t *Tracker) Count(guildID, actorID string, action ActionType) int {
	limit := t.limits.Limit(guildID, action)
	now := t.now()
	key := counterKey{guildID: guildID, actorID: actorID, action: action}

	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[key]
	if !ok {
		return 0
	}

	cutoff := now.Add(-limit.Window)
	count := 0
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

// Reset clears all action windows for one actor in one guild, used after a
// mitigation fires or when the actor leaves.
func (t *Tracker) Reset(guildID, actorID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, action := range AllActionTypes {
		delete(t.windows, counterKey{guildID: guildID, actorID: actorID, action: action})
	}
}

// ResetGuild clears every actor's windows for a guild, used when the bot
// (re)joins a guild.
func (t *Tracker) ResetGuild(guildID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.windows {
		if key.guildID == guildID {
			delete(t.windows, key)
		}
	}
}
