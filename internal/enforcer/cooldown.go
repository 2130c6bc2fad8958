package enforcer

import (
	"sync"
	"time"
)

// DefaultCooldown suppresses repeated punitive action on rapid-fire
// violations from the same actor.
const DefaultCooldown = 5 * time.Second

// Cooldown tracks the last enforcement per actor per guild. Check and record
// happen under one lock so a burst of concurrent messages from the same
// actor cannot each claim a fresh enforcement slot.
type Cooldown struct {
	mu       sync.Mutex
	last     map[string]map[string]time.Time
	duration time.Duration
	now      func() time.Time
}

func NewCooldown(duration time.Duration) *Cooldown {
	if duration <= 0 {
		duration = DefaultCooldown
	}
	return &Cooldown{
		last:     make(map[string]map[string]time.Time),
		duration: duration,
		now:      time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *Cooldown) SetClock(now func() time.Time) {
	c.now = now
}

// Allow reports whether a full enforcement may run for this actor and, when
// it may, records the execution in the same critical section.
func (c *Cooldown) Allow(guildID, actorID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	guild, ok := c.last[guildID]
	if !ok {
		guild = make(map[string]time.Time)
		c.last[guildID] = guild
	}

	if last, ok := guild[actorID]; ok && now.Sub(last) < c.duration {
		return false
	}

	guild[actorID] = now
	return true
}

// Reset clears cooldown state for a guild.
func (c *Cooldown) Reset(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, guildID)
}
