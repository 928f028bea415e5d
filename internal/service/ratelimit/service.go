package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	svcErr "github.com/Adeolu5678/EchoinWhispr-sub001/internal/errors"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/repository"
)

// cleanupBatchSize bounds how many expired events a single sweep invocation
// may delete.
const cleanupBatchSize = 500

// Service decides whether a user may perform a gated action right now, and
// durably records that it did. Quota state is derived from the event log on
// every check rather than cached in a counter, so there is nothing to
// desynchronize; the cost is one range query per check, bounded by the
// policy limit.
//
// Concurrency: check-then-record is not atomic. Two concurrent callers for
// the same user/action can both observe allowed=true and both record,
// overshooting the limit by one. This is an accepted soft limit.
type Service struct {
	appCtx   *app.AppContext
	events   *repository.ActionEventRepository
	policies PolicySet
}

// QuotaStatus is the result of a quota check.
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Reason    string    `json:"reason,omitempty"`
}

// NewService creates a rate limiter over the given policy table.
func NewService(appCtx *app.AppContext, policies PolicySet) *Service {
	return &Service{
		appCtx:   appCtx,
		events:   repository.NewActionEventRepository(appCtx.DB),
		policies: policies,
	}
}

// CheckQuota computes the current quota state for (userID, action) without
// side effects.
//
// Behavior:
//   - Counts events inside the sliding window [now - policy.Window, now].
//   - Remaining = max(0, limit - count).
//   - ResetAt = oldest in-window event + window (when quota frees by one),
//     or now if the window is empty.
//   - When not allowed, Reason carries the wait estimate in whole minutes,
//     rounded up.
func (s *Service) CheckQuota(ctx context.Context, userID uint64, action Action, now time.Time) (QuotaStatus, error) {
	policy, ok := s.policies[action]
	if !ok {
		return QuotaStatus{}, svcErr.UnknownAction(string(action))
	}

	windowStart := now.Add(-policy.Window)

	count, err := s.events.CountSince(ctx, userID, string(action), windowStart)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("count events: %w", err)
	}

	resetAt := now
	oldest, err := s.events.OldestSince(ctx, userID, string(action), windowStart)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("oldest event: %w", err)
	}
	if oldest != nil {
		resetAt = oldest.Timestamp.Add(policy.Window)
	}

	status := QuotaStatus{
		Allowed:   count < int64(policy.Limit),
		Remaining: remaining(policy.Limit, count),
		ResetAt:   resetAt,
	}
	if !status.Allowed {
		status.Reason = fmt.Sprintf(
			"Rate limit exceeded for %s. Try again in %d minute(s).",
			action, waitMinutes(now, resetAt),
		)
	}
	return status, nil
}

// EnforceQuota fails with a RateLimitError if the action is not currently
// allowed. Call it before performing the gated action; call RecordAction
// after the action has succeeded so a failed action does not consume quota.
func (s *Service) EnforceQuota(ctx context.Context, userID uint64, action Action, now time.Time) error {
	status, err := s.CheckQuota(ctx, userID, action, now)
	if err != nil {
		return err
	}
	if !status.Allowed {
		s.appCtx.Logger.Debug("rate limit exceeded",
			"user_id", userID, "action", action, "reset_at", status.ResetAt)
		return svcErr.RateLimitExceeded(status.Reason)
	}
	return nil
}

// RecordAction appends one occurrence to the event log.
func (s *Service) RecordAction(ctx context.Context, userID uint64, action Action, now time.Time) error {
	return s.events.Insert(ctx, userID, string(action), now)
}

// CleanupExpired deletes events older than the longest configured window, at
// most one batch per invocation, and returns how many were removed.
func (s *Service) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.policies.MaxWindow())
	deleted, err := s.events.DeleteOlderThan(ctx, cutoff, cleanupBatchSize)
	if err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}
	return deleted, nil
}

// RunCleanup invokes CleanupExpired on the given interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.CleanupExpired(ctx, time.Now())
			if err != nil {
				s.appCtx.Logger.Error("cleanup sweep failed", "err", err)
				continue
			}
			if deleted > 0 {
				s.appCtx.Logger.Info("cleanup sweep", "deleted", deleted)
			}
		}
	}
}

func remaining(limit int, count int64) int {
	r := limit - int(count)
	if r < 0 {
		return 0
	}
	return r
}

// waitMinutes is the number of minutes until resetAt, rounded up to the next
// whole minute, never below 1.
func waitMinutes(now, resetAt time.Time) int {
	mins := int(math.Ceil(resetAt.Sub(now).Minutes()))
	if mins < 1 {
		mins = 1
	}
	return mins
}
