package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

func TestCheckGroupCreateQuotaBoundary(t *testing.T) {
	now := time.Now()
	// Last creation far in the past so only the cap applies.
	last := now.Add(-time.Hour)

	decision, err := checkGroupCreate(foosball.RateLimitRecord{
		GroupCount:        GroupLimit - 1,
		LastGroupCreation: last,
	}, now)
	assert.Nil(t, err, "19 groups should leave room for one more")
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(0), decision.Remaining, "the 20th group consumes the last slot")

	_, err = checkGroupCreate(foosball.RateLimitRecord{
		GroupCount:        GroupLimit,
		LastGroupCreation: last,
	}, now)
	assert.Equal(t, ErrLimitExceeded, err, "the cap has no time-based recovery")
}

func TestCheckGroupCreateCapBeatsCooldown(t *testing.T) {
	now := time.Now()

	// At the cap and inside the cooldown: the cap wins.
	_, err := checkGroupCreate(foosball.RateLimitRecord{
		GroupCount:        GroupLimit,
		LastGroupCreation: now.Add(-5 * time.Second),
	}, now)
	assert.Equal(t, ErrLimitExceeded, err)
}

func TestCheckGroupCreateCooldown(t *testing.T) {
	now := time.Now()

	decision, err := checkGroupCreate(foosball.RateLimitRecord{
		GroupCount:        3,
		LastGroupCreation: now.Add(-30 * time.Second),
	}, now)
	assert.Equal(t, ErrCooldownActive, err)
	assert.Equal(t, 30*time.Second, decision.RetryAfter)
	assert.Equal(t, int64(GroupLimit-3), decision.Remaining)
}

func TestCheckMatchCreateCooldownBoundary(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name       string
		last       time.Time
		wantErr    error
		retryAfter time.Duration
	}{
		{name: "no record yet", last: time.Time{}, wantErr: nil},
		{name: "one second left", last: now.Add(-9 * time.Second), wantErr: ErrCooldownActive, retryAfter: time.Second},
		{name: "cooldown exactly elapsed", last: now.Add(-10 * time.Second), wantErr: nil},
		{name: "cooldown long elapsed", last: now.Add(-time.Minute), wantErr: nil},
	}

	for _, c := range cases {
		decision, err := checkMatchCreate(foosball.MatchRateLimitRecord{LastMatchCreation: c.last}, now)
		if c.wantErr != nil {
			if err != c.wantErr {
				t.Errorf("%s: expected %v, got %v", c.name, c.wantErr, err)
			}
			if decision.RetryAfter != c.retryAfter {
				t.Errorf("%s: expected retry after %s, got %s", c.name, c.retryAfter, decision.RetryAfter)
			}
		} else if err != nil {
			t.Errorf("%s: expected check to pass, got %v", c.name, err)
		}
	}
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	assert.Equal(t, int64(1), Decision{RetryAfter: 200 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, int64(1), Decision{RetryAfter: time.Second}.RetryAfterSeconds())
	assert.Equal(t, int64(2), Decision{RetryAfter: 1100 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, int64(0), Decision{}.RetryAfterSeconds())
}
