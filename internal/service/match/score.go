package match

import (
	"strings"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
)

// Score weights per compatibility dimension.
const (
	sharedInterestPoints    = 3.0
	sharedCareerPoints      = 2.0
	sameMoodPoints          = 1.0
	complementaryMoodPoints = 0.5
)

// complementaryMoods lists, per mood, the counterpart moods that earn the
// half-point bonus. The check is one-directional: only the initiator's mood
// is looked up.
var complementaryMoods = map[string][]string{
	"anxious":   {"calm", "supportive"},
	"curious":   {"knowledgeable", "excited"},
	"lonely":    {"friendly", "outgoing"},
	"motivated": {"ambitious", "driven"},
}

// Score computes the compatibility score between two profiles and the list
// of interests they share, in the order the interests appear in a's list.
//
// Dimensions:
//   - each case-insensitively shared interest: +3
//   - same career (case-insensitive, both set): +2
//   - same mood (exact, both set): +1; otherwise a complementary mood per
//     the table above: +0.5
//
// Pure and deterministic; the score is unbounded and never negative.
func Score(a, b *db.User) (float64, []string) {
	var score float64
	shared := []string{}

	theirs := make(map[string]struct{}, len(b.Interests))
	for _, interest := range b.Interests {
		theirs[strings.ToLower(interest)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a.Interests))
	for _, interest := range a.Interests {
		key := strings.ToLower(interest)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := theirs[key]; ok {
			shared = append(shared, interest)
			score += sharedInterestPoints
		}
	}

	if a.Career != "" && b.Career != "" && strings.EqualFold(a.Career, b.Career) {
		score += sharedCareerPoints
	}

	if a.Mood != "" && b.Mood != "" {
		if a.Mood == b.Mood {
			score += sameMoodPoints
		} else if moodsComplement(a.Mood, b.Mood) {
			score += complementaryMoodPoints
		}
	}

	return score, shared
}

func moodsComplement(mood, otherMood string) bool {
	for _, m := range complementaryMoods[mood] {
		if m == otherMood {
			return true
		}
	}
	return false
}
