package db

import (
	"time"
)

// User table. Interests/Career/Mood feed the matchmaking engine; an empty
// Career or Mood means the user never set one.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Interests    []string  `gorm:"serializer:json;type:text"`
	Career       string    `gorm:"size:64"`
	Mood         string    `gorm:"size:32"`
	LastActiveAt time.Time `gorm:"index:idx_users_last_active,sort:desc"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// ActionEvent is one occurrence of a rate-limited action. Rows are immutable:
// inserted after the gated action succeeds, deleted only by the cleanup sweep
// once older than the longest configured window.
//
// Indexes:
//   - idx_events_user_action_ts(user_id, action, timestamp)
//     Optimizes the sliding-window range query behind every quota check.
//   - idx_events_ts(timestamp)
//     Optimizes the cleanup sweep's cutoff scan.
type ActionEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index:idx_events_user_action_ts,priority:1"`
	Action    string    `gorm:"size:64;not null;index:idx_events_user_action_ts,priority:2"`
	Timestamp time.Time `gorm:"not null;index:idx_events_user_action_ts,priority:3;index:idx_events_ts"`
}

// Match is one completed matchmaking outcome, recorded from the initiator's
// perspective only (UserID matched with MatchedUserID; the reverse direction
// is not implied). Rows are never updated and are retained indefinitely for
// history and stats.
//
// Indexes:
//   - idx_matches_user_created(user_id, created_at DESC)
//     Optimizes the 24h anti-repeat scan and recent-match pages.
//   - idx_matches_user_target(user_id, matched_user_id)
//     Optimizes HasRecentMatch lookups.
type Match struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	UserID          uint64    `gorm:"not null;index:idx_matches_user_created,priority:1;index:idx_matches_user_target,priority:1"`
	MatchedUserID   uint64    `gorm:"not null;index:idx_matches_user_target,priority:2"`
	Score           float64   `gorm:"not null"`
	SharedInterests []string  `gorm:"serializer:json;type:text"`
	CreatedAt       time.Time `gorm:"not null;index:idx_matches_user_created,priority:2,sort:desc"`
}
