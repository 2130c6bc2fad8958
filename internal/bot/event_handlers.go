package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"

	"modguard/internal/database"
	"modguard/internal/enforcer"
	"modguard/internal/guard"
	"modguard/internal/logging"
	"modguard/internal/tracker"
)

// Handlers routes gateway events into the enforcement and guard pipelines.
type Handlers struct {
	enforcer *enforcer.Coordinator
	guard    *guard.Coordinator
	audit    *AuditFetcher
	db       *database.Database
	botID    string

	// Last known permission bits per role, needed to diff role updates;
	// the gateway only delivers the new state.
	mu        sync.Mutex
	rolePerms map[string]uint64
}

func NewHandlers(enf *enforcer.Coordinator, grd *guard.Coordinator, audit *AuditFetcher, db *database.Database, botID string) *Handlers {
	return &Handlers{
		enforcer:  enf,
		guard:     grd,
		audit:     audit,
		db:        db,
		botID:     botID,
		rolePerms: make(map[string]uint64),
	}
}

// Register attaches every gateway handler to the session.
func (h *Handlers) Register(s *Session) {
	s.AddHandler(h.onReady)
	s.AddHandler(h.onGuildCreate)
	s.AddHandler(h.onMessageCreate)
	s.AddHandler(h.onAuditLogEntry)
	s.AddHandler(h.onChannelCreate)
	s.AddHandler(h.onChannelDelete)
	s.AddHandler(h.onRoleCreate)
	s.AddHandler(h.onRoleUpdate)
	s.AddHandler(h.onRoleDelete)
	s.AddHandler(h.onBanAdd)
	s.AddHandler(h.onBanRemove)
	s.AddHandler(h.onMemberAdd)
	s.AddHandler(h.onWebhooksUpdate)
	logging.Info("Gateway event handlers registered")
}

func (h *Handlers) onReady(sess *discordgo.Session, r *discordgo.Ready) {
	logging.Info("Ready: %s across %d guilds", r.User.Username, len(r.Guilds))

	// A reconnect may have missed events; stale counters would attribute old
	// activity to the new session, so start every guild clean.
	for _, g := range r.Guilds {
		h.guard.ResetGuild(g.ID)
	}
}

func (h *Handlers) onGuildCreate(sess *discordgo.Session, g *discordgo.GuildCreate) {
	logging.Info("Guild available: %s (%s)", g.Name, g.ID)
	h.guard.ResetGuild(g.ID)

	h.mu.Lock()
	for _, role := range g.Roles {
		h.rolePerms[g.ID+":"+role.ID] = uint64(role.Permissions)
	}
	h.mu.Unlock()

	// Persist a settings row so dashboards and commands see the guild.
	row, err := h.db.GetGuildSettings(g.ID)
	if err != nil {
		logging.Warn("Settings read failed for guild %s: %v", g.ID, err)
		return
	}
	if err := h.db.UpsertGuildSettings(row); err != nil {
		logging.Warn("Settings init failed for guild %s: %v", g.ID, err)
	}
}

func (h *Handlers) onMessageCreate(sess *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == h.botID {
		return
	}

	msg := &enforcer.Message{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		Content:     m.Content,
		AuthorIsBot: m.Author.Bot,
	}
	if m.Member != nil {
		msg.AuthorRoles = m.Member.Roles
	}
	msg.AuthorIsModerator = h.isModerator(sess, m.Author.ID, m.ChannelID)

	h.enforcer.HandleMessage(msg)
}

// isModerator reports whether the author can manage messages or administer
// the guild. Unresolvable permissions read as not-moderator so filtering
// still applies.
func (h *Handlers) isModerator(sess *discordgo.Session, userID, channelID string) bool {
	perms, err := sess.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageMessages) != 0
}

func (h *Handlers) onAuditLogEntry(sess *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
	if e.GuildID == "" || e.ActionType == nil {
		return
	}

	h.audit.Push(e.GuildID, int(*e.ActionType), e.UserID, e.TargetID)

	// Kicks have no dedicated gateway event; the audit stream is the only
	// trigger.
	if *e.ActionType == discordgo.AuditLogActionMemberKick {
		h.guard.HandleEvent(e.GuildID, tracker.ActionMemberKick)
	}
}

func (h *Handlers) onChannelCreate(sess *discordgo.Session, c *discordgo.ChannelCreate) {
	if c.GuildID == "" {
		return
	}
	h.guard.HandleEvent(c.GuildID, tracker.ActionChannelCreate)
}

func (h *Handlers) onChannelDelete(sess *discordgo.Session, c *discordgo.ChannelDelete) {
	if c.GuildID == "" {
		return
	}
	h.guard.HandleEvent(c.GuildID, tracker.ActionChannelDelete)
}

func (h *Handlers) onRoleCreate(sess *discordgo.Session, r *discordgo.GuildRoleCreate) {
	if r.GuildID == "" {
		return
	}
	// Managed roles are created by Discord for bots and integrations.
	if r.Role.Managed {
		return
	}

	h.mu.Lock()
	h.rolePerms[r.GuildID+":"+r.Role.ID] = uint64(r.Role.Permissions)
	h.mu.Unlock()

	h.guard.HandleEvent(r.GuildID, tracker.ActionRoleCreate)
}

func (h *Handlers) onRoleUpdate(sess *discordgo.Session, r *discordgo.GuildRoleUpdate) {
	if r.GuildID == "" || r.Role == nil {
		return
	}

	key := r.GuildID + ":" + r.Role.ID
	newPerms := uint64(r.Role.Permissions)

	h.mu.Lock()
	oldPerms, known := h.rolePerms[key]
	h.rolePerms[key] = newPerms
	h.mu.Unlock()

	// Without a baseline every bit would look newly granted; record and
	// wait for the next update.
	if !known {
		return
	}

	h.guard.HandleRoleUpdate(r.GuildID, oldPerms, newPerms)
}

func (h *Handlers) onRoleDelete(sess *discordgo.Session, r *discordgo.GuildRoleDelete) {
	if r.GuildID == "" {
		return
	}

	h.mu.Lock()
	delete(h.rolePerms, r.GuildID+":"+r.RoleID)
	h.mu.Unlock()

	h.guard.HandleEvent(r.GuildID, tracker.ActionRoleDelete)
}

func (h *Handlers) onBanAdd(sess *discordgo.Session, b *discordgo.GuildBanAdd) {
	if b.GuildID == "" {
		return
	}
	h.guard.HandleEvent(b.GuildID, tracker.ActionBanAdd)
}

func (h *Handlers) onBanRemove(sess *discordgo.Session, b *discordgo.GuildBanRemove) {
	if b.GuildID == "" || b.User == nil {
		return
	}

	// A moderator reversed the ban: clear tracked state and the mitigation
	// record so the actor starts clean.
	h.guard.ResetActor(b.GuildID, b.User.ID)
	if err := h.db.RemoveMitigatedUser(b.GuildID, b.User.ID); err != nil {
		logging.Warn("Failed to clear mitigation record for %s: %v", b.User.ID, err)
	}
	logging.Info("Cleared tracked state for unbanned user %s in guild %s", b.User.ID, b.GuildID)
}

func (h *Handlers) onMemberAdd(sess *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.GuildID == "" || m.User == nil {
		return
	}

	if m.User.Bot {
		h.guard.HandleEvent(m.GuildID, tracker.ActionBotAdd)
		return
	}

	// A previously mitigated human rejoining gets a fresh start; only new
	// violations count.
	if h.db.IsMitigatedUser(m.GuildID, m.User.ID) {
		if err := h.db.RemoveMitigatedUser(m.GuildID, m.User.ID); err != nil {
			logging.Warn("Failed to clear mitigation record for rejoining %s: %v", m.User.ID, err)
		}
		h.guard.ResetActor(m.GuildID, m.User.ID)
		logging.Info("Rejoining user %s in guild %s given a clean slate", m.User.ID, m.GuildID)
	}
}

func (h *Handlers) onWebhooksUpdate(sess *discordgo.Session, w *discordgo.WebhooksUpdate) {
	if w.GuildID == "" {
		return
	}
	// The gateway event fires for create, update and delete alike; the
	// guard's audit lookup filters to creations.
	h.guard.HandleEvent(w.GuildID, tracker.ActionWebhookCreate)
}
