package ratelimit

import (
	"errors"
	"time"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

// Thresholds mirror the authoritative backend rules exactly so the
// countdowns shown to clients never diverge from server-side rejection.
const (
	GroupLimit           = 20
	GroupCooldownSeconds = 60
	MatchCooldownSeconds = 10
)

var (
	ErrLimitExceeded  = errors.New("group limit reached")
	ErrCooldownActive = errors.New("cooldown active")
)

// Decision reports the outcome of a rate-limit check. RetryAfter is
// populated on cooldown denials; Remaining only applies to group
// creation, which carries a cumulative cap.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retryAfter"`
}

// RetryAfterSeconds rounds the wait up to whole seconds for countdown
// displays.
func (d Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Second - 1) / time.Second)
}

// checkGroupCreate applies the cumulative cap before the cooldown: a
// user at the cap is rejected no matter how much time has passed.
func checkGroupCreate(record foosball.RateLimitRecord, now time.Time) (Decision, error) {
	if record.GroupCount >= GroupLimit {
		return Decision{Remaining: 0}, ErrLimitExceeded
	}

	if d, err := checkCooldown(record.LastGroupCreation, GroupCooldownSeconds*time.Second, now); err != nil {
		d.Remaining = GroupLimit - record.GroupCount
		return d, err
	}

	return Decision{
		Allowed:   true,
		Remaining: GroupLimit - record.GroupCount - 1,
	}, nil
}

func checkMatchCreate(record foosball.MatchRateLimitRecord, now time.Time) (Decision, error) {
	if d, err := checkCooldown(record.LastMatchCreation, MatchCooldownSeconds*time.Second, now); err != nil {
		return d, err
	}
	return Decision{Allowed: true}, nil
}

func checkCooldown(last time.Time, cooldown time.Duration, now time.Time) (Decision, error) {
	if last.IsZero() {
		return Decision{Allowed: true}, nil
	}

	elapsed := now.Sub(last)
	if elapsed < cooldown {
		return Decision{RetryAfter: cooldown - elapsed}, ErrCooldownActive
	}
	return Decision{Allowed: true}, nil
}
