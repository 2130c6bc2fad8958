package bot

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/guard"
	"modguard/pkg/util"
)

// auditCacheTTL bounds how long a pushed audit entry may answer lookups
// before a fresh REST fetch is required.
const auditCacheTTL = 5 * time.Second

type cachedEntry struct {
	entry    guard.AuditEntry
	cachedAt time.Time
}

// AuditFetcher answers "who did the latest X in guild Y" from the gateway's
// pushed GuildAuditLogEntryCreate stream when possible, falling back to a
// REST audit log fetch. Pushed entries arrive before most direct events, so
// the cache usually saves the round trip on the hot path.
type AuditFetcher struct {
	session *discordgo.Session

	mu    sync.RWMutex
	cache map[string]cachedEntry
}

func NewAuditFetcher(session *discordgo.Session) *AuditFetcher {
	return &AuditFetcher{
		session: session,
		cache:   make(map[string]cachedEntry),
	}
}

// LatestEntry implements the guard's audit source.
func (f *AuditFetcher) LatestEntry(guildID string, actionCode int) (*guard.AuditEntry, error) {
	key := guildID + ":" + strconv.Itoa(actionCode)

	f.mu.RLock()
	cached, ok := f.cache[key]
	f.mu.RUnlock()
	if ok && time.Since(cached.cachedAt) < auditCacheTTL {
		entry := cached.entry
		return &entry, nil
	}

	audit, err := f.session.GuildAuditLog(guildID, "", "", actionCode, 1)
	if err != nil {
		return nil, err
	}
	if len(audit.AuditLogEntries) == 0 {
		return nil, nil
	}

	raw := audit.AuditLogEntries[0]
	createdAt := util.SnowflakeTime(raw.ID)
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	entry := guard.AuditEntry{
		ActorID:   raw.UserID,
		TargetID:  raw.TargetID,
		CreatedAt: createdAt,
	}
	for _, user := range audit.Users {
		if user.ID == raw.UserID {
			entry.ActorIsBot = user.Bot
			break
		}
	}

	f.store(key, entry)
	return &entry, nil
}

// Push records an entry delivered over the gateway so subsequent lookups
// skip the REST fetch.
func (f *AuditFetcher) Push(guildID string, actionCode int, actorID, targetID string) {
	key := guildID + ":" + strconv.Itoa(actionCode)
	f.store(key, guard.AuditEntry{
		ActorID:   actorID,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	})
}

func (f *AuditFetcher) store(key string, entry guard.AuditEntry) {
	now := time.Now()

	f.mu.Lock()
	f.cache[key] = cachedEntry{entry: entry, cachedAt: now}
	for k, v := range f.cache {
		if now.Sub(v.cachedAt) > auditCacheTTL {
			delete(f.cache, k)
		}
	}
	f.mu.Unlock()
}
