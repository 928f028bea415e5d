package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/utils/pagination"
)

// MatchRepository provides data access methods for the Match model.
// Match rows are append-only: created once per successful matchmaking call,
// never mutated, retained indefinitely for history and stats.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create records one matchmaking outcome from the initiator's perspective.
func (r *MatchRepository) Create(ctx context.Context, match *db.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

// MatchedUserIDs returns the counterpart ids of all matches the user initiated
// after the given instant. Feeds the anti-repeat exclusion set.
//
// Example:
//
//	repo.MatchedUserIDs(ctx, 42, now.Add(-24*time.Hour))
func (r *MatchRepository) MatchedUserIDs(
	ctx context.Context,
	userID uint64,
	after time.Time,
) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ? AND created_at > ?", userID, after).
		Pluck("matched_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistsSince reports whether the user matched the target after the given
// instant.
func (r *MatchRepository) ExistsSince(
	ctx context.Context,
	userID, targetUserID uint64,
	after time.Time,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ? AND matched_user_id = ? AND created_at > ?", userID, targetUserID, after).
		Count(&count).Error
	return count > 0, err
}

// Recent returns a page of the user's matches, newest first.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.Recent(ctx, 42, nil, 20) // first 20 matches for user 42
func (r *MatchRepository) Recent(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	var matches []db.Match

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.MatchID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.MatchID,
		)
	}

	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			MatchID:     last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// AllByUser returns the user's entire match history in chronological order.
// Used by the stats aggregation, which needs first-seen interest ordering.
func (r *MatchRepository) AllByUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
