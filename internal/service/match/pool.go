package match

import "github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"

// SelectPool filters the source pool of candidates for a user.
//
// The input is expected in most-recently-active-first order (how the user
// repository returns it) and that order is preserved. Dropped candidates:
// the user themselves, anyone in exclude (recently matched), and anyone
// with no interests, since they can never contribute a shared interest.
//
// An empty result means "no candidates available", not an error.
func SelectPool(profiles []db.User, excludeUserID uint64, exclude map[uint64]struct{}) []db.User {
	pool := make([]db.User, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == excludeUserID {
			continue
		}
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		if len(p.Interests) == 0 {
			continue
		}
		pool = append(pool, p)
	}
	return pool
}
