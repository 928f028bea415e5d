package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/app"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
	svcErr "github.com/Adeolu5678/EchoinWhispr-sub001/internal/errors"
	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/repository"
)

const (
	// poolLimit caps the candidate universe at the most-recently-active
	// profiles. Cost bound, not a correctness requirement.
	poolLimit = 100

	// topSliceSize is how many of the highest-scored candidates the random
	// pick draws from.
	topSliceSize = 10

	// antiRepeatWindow is how long a previously matched user stays excluded.
	antiRepeatWindow = 24 * time.Hour

	weeklyWindow = 7 * 24 * time.Hour

	topInterestsCap = 5

	// recentMatchesMax bounds the page size of GetRecentMatches.
	recentMatchesMax = 50

	statsCacheTTL = time.Hour
)

// Service implements the matchmaking engine: candidate selection, scoring,
// anti-repeat filtering, the randomized pick among near-equally-strong
// candidates, and the read-side history/stats queries.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	matches *repository.MatchRepository

	// rng drives the pick from the top slice. rand.Rand is not safe for
	// concurrent use, so pick() serializes access with rngMu.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// Result is a matchmaking outcome as exposed to callers. Deliberately
// identity-minimal: no username or other profile fields beyond career/mood.
type Result struct {
	MatchedUserID   uint64   `json:"matched_user_id"`
	Score           float64  `json:"score"`
	SharedInterests []string `json:"shared_interests"`
	MatchCareer     string   `json:"match_career,omitempty"`
	MatchMood       string   `json:"match_mood,omitempty"`
}

// Stats is the aggregation over a user's entire match history.
type Stats struct {
	TotalMatches  int      `json:"total_matches"`
	AvgScore      float64  `json:"avg_score"`
	TopInterests  []string `json:"top_interests"`
	WeeklyMatches int      `json:"weekly_matches"`
}

type scoredCandidate struct {
	profile db.User
	score   float64
	shared  []string
}

// NewService creates a matchmaking service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand swaps the pick source. A fixed seed makes picks reproducible.
func (s *Service) WithRand(r *rand.Rand) *Service {
	s.rng = r
	return s
}

func (s *Service) pick(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// FindMatch selects a compatible counterpart for the user and records the
// outcome.
//
// Behavior:
//  1. Resolves the caller's profile (ErrUserNotFound if absent).
//  2. Excludes everyone matched within the last 24h.
//  3. Scores the filtered candidate pool and sorts it score-descending with
//     a stable sort, so ties keep most-recently-active-first order.
//  4. Picks uniformly at random from the top min(10, n) candidates and
//     records the match.
//
// Returns (nil, nil) when no eligible candidate exists. That is a normal
// outcome, distinct from failure.
func (s *Service) FindMatch(ctx context.Context, userID uint64, now time.Time) (*Result, error) {
	caller, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrUserNotFound
		}
		return nil, fmt.Errorf("load caller profile: %w", err)
	}

	recentIDs, err := s.matches.MatchedUserIDs(ctx, userID, now.Add(-antiRepeatWindow))
	if err != nil {
		return nil, fmt.Errorf("load recent matches: %w", err)
	}
	exclude := make(map[uint64]struct{}, len(recentIDs))
	for _, id := range recentIDs {
		exclude[id] = struct{}{}
	}

	profiles, err := s.users.MostRecentlyActive(ctx, poolLimit)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	pool := SelectPool(profiles, caller.ID, exclude)
	if len(pool) == 0 {
		s.appCtx.Logger.Debug("no match candidates", "user_id", userID, "excluded", len(exclude))
		return nil, nil
	}

	scored := make([]scoredCandidate, 0, len(pool))
	for i := range pool {
		score, shared := Score(caller, &pool[i])
		scored = append(scored, scoredCandidate{profile: pool[i], score: score, shared: shared})
	}

	// stable: ties keep pool order (most recently active first)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	top := topSliceSize
	if len(scored) < top {
		top = len(scored)
	}
	chosen := scored[s.pick(top)]

	record := &db.Match{
		UserID:          caller.ID,
		MatchedUserID:   chosen.profile.ID,
		Score:           chosen.score,
		SharedInterests: chosen.shared,
		CreatedAt:       now,
	}
	if err := s.matches.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record match: %w", err)
	}

	// best effort, stats are recomputed from history on the next miss
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForMatchStats(caller.ID))

	s.appCtx.Logger.Debug("match found",
		"user_id", userID, "matched_user_id", chosen.profile.ID,
		"score", chosen.score, "pool", len(pool))

	return &Result{
		MatchedUserID:   chosen.profile.ID,
		Score:           chosen.score,
		SharedInterests: chosen.shared,
		MatchCareer:     chosen.profile.Career,
		MatchMood:       chosen.profile.Mood,
	}, nil
}

// HasRecentMatch reports whether the user matched the target within the
// anti-repeat window.
func (s *Service) HasRecentMatch(ctx context.Context, userID, targetUserID uint64, now time.Time) (bool, error) {
	return s.matches.ExistsSince(ctx, userID, targetUserID, now.Add(-antiRepeatWindow))
}

// GetRecentMatches returns a page of the user's matches, newest first. The
// limit is clamped to recentMatchesMax; zero or negative means the maximum.
func (s *Service) GetRecentMatches(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.Match, *string, error) {
	if limit <= 0 || limit > recentMatchesMax {
		limit = recentMatchesMax
	}
	return s.matches.Recent(ctx, userID, paginationToken, limit)
}

// GetMatchStats aggregates the user's entire match history.
// Cache-first strategy:
//  1. Attempts to read the JSON blob from Redis (match:stats:userID).
//  2. On miss, recomputes from the DB and stores with a 1h TTL.
//
// FindMatch invalidates the key when it records a new match.
func (s *Service) GetMatchStats(ctx context.Context, userID uint64, now time.Time) (Stats, error) {
	key := s.appCtx.RedisCache.KeyForMatchStats(userID)

	// try cache first
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return stats, nil
		}
	}

	history, err := s.matches.AllByUser(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("load match history: %w", err)
	}

	stats := aggregateStats(history, now)

	if blob, err := json.Marshal(stats); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, string(blob), statsCacheTTL)
	}

	return stats, nil
}

// aggregateStats folds a chronological match history into Stats. TopInterests
// ranks shared interests by frequency, ties broken by first appearance.
func aggregateStats(history []db.Match, now time.Time) Stats {
	stats := Stats{TopInterests: []string{}}
	stats.TotalMatches = len(history)
	if len(history) == 0 {
		return stats
	}

	var total float64
	freq := make(map[string]int)
	firstSeen := []string{}
	weekAgo := now.Add(-weeklyWindow)

	for _, m := range history {
		total += m.Score
		if m.CreatedAt.After(weekAgo) {
			stats.WeeklyMatches++
		}
		for _, interest := range m.SharedInterests {
			if _, ok := freq[interest]; !ok {
				firstSeen = append(firstSeen, interest)
			}
			freq[interest]++
		}
	}

	avg := total / float64(len(history))
	stats.AvgScore = math.Round(avg*10) / 10

	// firstSeen already orders ties; the stable sort keeps that order
	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return freq[ranked[i]] > freq[ranked[j]]
	})
	if len(ranked) > topInterestsCap {
		ranked = ranked[:topInterestsCap]
	}
	stats.TopInterests = ranked

	return stats
}
