package ratelimit

import "time"

// Action is one member of the fixed enumeration of rate-limited operations.
type Action string

const (
	ActionSendWhisper                Action = "send-whisper"
	ActionSendFriendRequest          Action = "send-friend-request"
	ActionSendMysteryWhisper         Action = "send-mystery-whisper"
	ActionSendMessage                Action = "send-message"
	ActionCreateGroupSpace           Action = "create-group-space"
	ActionScheduleWhisper            Action = "schedule-whisper"
	ActionRequestAdminPromotion      Action = "request-admin-promotion"
	ActionRequestSuperAdminPromotion Action = "request-super-admin-promotion"
)

// Policy is the static per-action quota: at most Limit occurrences per
// sliding Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// PolicySet maps each action kind to its policy. Injected into the service
// rather than read from process globals so tests can supply isolated tables.
type PolicySet map[Action]Policy

// DefaultPolicies returns the production quota table.
func DefaultPolicies() PolicySet {
	return PolicySet{
		ActionSendWhisper:                {Limit: 20, Window: time.Hour},
		ActionSendFriendRequest:          {Limit: 30, Window: 24 * time.Hour},
		ActionSendMysteryWhisper:         {Limit: 3, Window: 24 * time.Hour},
		ActionSendMessage:                {Limit: 100, Window: time.Hour},
		ActionCreateGroupSpace:           {Limit: 10, Window: time.Hour},
		ActionScheduleWhisper:            {Limit: 5, Window: time.Hour},
		ActionRequestAdminPromotion:      {Limit: 3, Window: 24 * time.Hour},
		ActionRequestSuperAdminPromotion: {Limit: 3, Window: 24 * time.Hour},
	}
}

// MaxWindow returns the largest window across the set. Events older than this
// can never influence a quota check and are safe to sweep.
func (p PolicySet) MaxWindow() time.Duration {
	var max time.Duration
	for _, policy := range p {
		if policy.Window > max {
			max = policy.Window
		}
	}
	return max
}
