package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
)

// ActionEventRepository provides data access methods for the ActionEvent model.
// It is the append-only event log the rate limiter derives quota state from:
// no row is ever updated, only inserted and eventually swept.
type ActionEventRepository struct {
	db *gorm.DB
}

// NewActionEventRepository creates a new repository bound to the given DB connection.
func NewActionEventRepository(database *gorm.DB) *ActionEventRepository {
	return &ActionEventRepository{db: database}
}

// Insert appends one action occurrence to the log.
//
// Example:
//
//	repo.Insert(ctx, 42, "send-whisper", time.Now()) // user 42 sent a whisper
func (r *ActionEventRepository) Insert(
	ctx context.Context,
	userID uint64,
	action string,
	at time.Time,
) error {
	event := db.ActionEvent{
		UserID:    userID,
		Action:    action,
		Timestamp: at,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

// CountSince returns how many times the user performed the action at or after
// the given window start. This is the sliding-window range query behind every
// quota check; cost is bounded by the policy limit plus a small margin.
func (r *ActionEventRepository) CountSince(
	ctx context.Context,
	userID uint64,
	action string,
	since time.Time,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ActionEvent{}).
		Where("user_id = ? AND action = ? AND timestamp >= ?", userID, action, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// OldestSince returns the oldest event inside the window, or nil if the
// window is empty. The caller derives the quota reset instant from it.
func (r *ActionEventRepository) OldestSince(
	ctx context.Context,
	userID uint64,
	action string,
	since time.Time,
) (*db.ActionEvent, error) {
	var event db.ActionEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ? AND timestamp >= ?", userID, action, since).
		Order("timestamp ASC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteOlderThan removes at most batchSize events with timestamp before the
// cutoff and returns how many were removed. IDs are selected first and deleted
// by primary key so the batch bound works on both MySQL and SQLite.
func (r *ActionEventRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
	batchSize int,
) (int64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.ActionEvent{}).
		Where("timestamp < ?", cutoff).
		Order("timestamp ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Delete(&db.ActionEvent{}, ids)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
