package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"modguard/internal/filter"
	"modguard/internal/logging"
)

// Record is the persisted, privacy-safe trail of one enforcement decision.
// It carries a one-way content hash, never the raw message text.
type Record struct {
	ID             string
	GuildID        string
	RuleID         int64
	RuleName       string
	ActorID        string
	ChannelID      string
	ContentHash    string
	MatchedPattern string
	Confidence     string
	WasObfuscated  bool
	ActionTaken    string
	Timestamp      time.Time
}

// Store persists violation records.
type Store interface {
	InsertViolation(rec *Record) error
}

// Reporter delivers a best-effort human-readable report of a violation. The
// redacted excerpt appears only here, never in the persisted record.
type Reporter interface {
	Report(guildID string, rec *Record, excerpt string) error
}

// Sink turns enforcement decisions into durable records plus optional
// human-facing reports. The record is written before any report is sent;
// report failures never roll back or fail the pipeline.
type Sink struct {
	store    Store
	reporter Reporter
}

func NewSink(store Store, reporter Reporter) *Sink {
	return &Sink{store: store, reporter: reporter}
}

// Emit builds and persists the violation record, then attempts the report.
// A failed insert is a broken structural assumption: it is logged at error
// severity and the enforcement stands as "acted but not recorded".
func (s *Sink) Emit(guildID, actorID, channelID, rawContent, actionTaken string, match *filter.MatchResult) *Record {
	matched := match.Rule.Pattern
	excerptSeed := matched
	if len(match.Matches) > 0 {
		excerptSeed = match.Matches[0]
	}

	rec := &Record{
		ID:             uuid.NewString(),
		GuildID:        guildID,
		RuleID:         match.Rule.ID,
		RuleName:       match.Rule.Name,
		ActorID:        actorID,
		ChannelID:      channelID,
		ContentHash:    filter.ContentHash(rawContent),
		MatchedPattern: matched,
		Confidence:     string(match.Confidence),
		WasObfuscated:  match.WasObfuscated,
		ActionTaken:    actionTaken,
		Timestamp:      time.Now(),
	}

	if err := s.store.InsertViolation(rec); err != nil {
		logging.Error("Violation record insert failed for guild %s rule %s: %v", guildID, rec.RuleName, err)
	}

	if s.reporter != nil {
		excerpt := filter.Excerpt(rawContent, excerptSeed)
		// Report delivery is best effort; the record above is the durable
		// source of truth.
		if err := s.reporter.Report(guildID, rec, excerpt); err != nil {
			logging.Warn("Violation report delivery failed for guild %s: %v", guildID, err)
		}
	}

	return rec
}

// Summary renders a short line for plain logs.
func (r *Record) Summary() string {
	return fmt.Sprintf("rule=%s actor=%s action=%s confidence=%s obfuscated=%t hash=%s",
		r.RuleName, r.ActorID, r.ActionTaken, r.Confidence, r.WasObfuscated, r.ContentHash)
}
