package domain

const (
	DefaultSoonDays         = 3
	DefaultExpiredGraceDays = 0
	// MaxSoonDays is the upper bound offered by the settings screen.
	MaxSoonDays = 30
)

// Thresholds are the per-owner day counts that split items into warn levels.
type Thresholds struct {
	SoonDays         int `json:"soon_days" db:"soon_days"`
	ExpiredGraceDays int `json:"expired_grace_days" db:"expired_grace_days"`
}

// DefaultThresholds applies whenever an owner has not saved any.
func DefaultThresholds() Thresholds {
	return Thresholds{SoonDays: DefaultSoonDays, ExpiredGraceDays: DefaultExpiredGraceDays}
}

// Clamp brings both values into range: SoonDays in [1, MaxSoonDays] and
// ExpiredGraceDays in [0, SoonDays-1] so the bands never overlap.
func (t Thresholds) Clamp() Thresholds {
	t.SoonDays = clampInt(t.SoonDays, 1, MaxSoonDays)
	t.ExpiredGraceDays = clampInt(t.ExpiredGraceDays, 0, t.SoonDays-1)
	return t
}

// ThresholdsOrDefault dereferences stored thresholds, falling back to defaults.
func ThresholdsOrDefault(t *Thresholds) Thresholds {
	if t == nil {
		return DefaultThresholds()
	}
	return *t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
