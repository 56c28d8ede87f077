package stealth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// DelayProfile names a jitter range applied before every request.
type DelayProfile string

const (
	ProfileOff        DelayProfile = "off"
	ProfileAggressive DelayProfile = "aggressive"
	ProfileNormal     DelayProfile = "normal"
	ProfileCautious   DelayProfile = "cautious"
)

// ParseDelayProfile validates a profile name from config or flags.
func ParseDelayProfile(s string) (DelayProfile, error) {
	switch p := DelayProfile(s); p {
	case ProfileOff, ProfileAggressive, ProfileNormal, ProfileCautious:
		return p, nil
	case "":
		return ProfileOff, nil
	default:
		return "", fmt.Errorf("unknown delay profile %q", s)
	}
}

// HumanDelay adds randomized jitter between requests.
type HumanDelay struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewHumanDelay returns the delay for profile, or nil for ProfileOff.
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileOff:
		return nil
	case ProfileCautious:
		return &HumanDelay{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second}
	case ProfileNormal:
		return &HumanDelay{MinDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}
	default:
		return &HumanDelay{MinDelay: 100 * time.Millisecond, MaxDelay: 400 * time.Millisecond}
	}
}

// Wait sleeps for a random duration within the configured range.
func (h *HumanDelay) Wait(ctx context.Context) error {
	t := time.NewTimer(h.next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HumanDelay) next() time.Duration {
	if h.MinDelay >= h.MaxDelay {
		return h.MinDelay
	}
	return h.MinDelay + time.Duration(rand.Int64N(int64(h.MaxDelay-h.MinDelay)))
}
