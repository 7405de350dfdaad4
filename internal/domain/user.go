package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree UserPlan = "free"
	UserPlanPro  UserPlan = "pro"
)

// Word limits per single check request by plan convention. A stored
// word_limit on the user record always wins over these defaults.
const (
	FreeWordLimit = 200
	ProWordLimit  = 5000
)

// subscriptionRecency bounds how old an "active" subscription status may be
// before it stops granting pro features.
const subscriptionRecency = 31 * 24 * time.Hour

// UserQuotaState is the persisted quota/credit state for one user. The JSON
// keys are a de facto wire format shared with the rest of the product and
// must not change.
type UserQuotaState struct {
	UserID             string    `json:"-"`
	Plan               UserPlan  `json:"plan"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	WordLimit          int       `json:"wordLimit"`
	Credits            int       `json:"credits"`
	CreditsUsed        int       `json:"creditsUsed"`
	AddonCredits       int       `json:"addonCredits"`
	AddonCreditsExpiry time.Time `json:"addonCreditsExpiryAt"`
	FreeDailyUsed      int       `json:"freeDailyUsed"`
	FreeDailyDate      string    `json:"freeDailyDate"`
	CreditsResetDate   time.Time `json:"creditsResetDate"`
	SubscriptionUpdate time.Time `json:"subscriptionUpdatedAt"`
	CreditsUpdatedAt   time.Time `json:"creditsUpdatedAt"`
}

// IsPro reports whether the user currently has pro entitlements. A user is
// pro when the stored word limit reaches the pro tier or the plan field says
// so, but a present subscription status further gates this: the status must
// be "active" and, when a subscription timestamp exists, recent enough.
func (u UserQuotaState) IsPro(now time.Time) bool {
	pro := u.WordLimit >= ProWordLimit || u.Plan == UserPlanPro
	if !pro {
		return false
	}
	if u.SubscriptionStatus == "" {
		return true
	}
	if u.SubscriptionStatus != "active" {
		return false
	}
	if u.SubscriptionUpdate.IsZero() {
		return true
	}
	return now.Sub(u.SubscriptionUpdate) <= subscriptionRecency
}

// EffectiveWordLimit returns the per-request word ceiling, falling back to
// the plan default when no limit is stored.
func (u UserQuotaState) EffectiveWordLimit(now time.Time) int {
	if u.WordLimit > 0 {
		return u.WordLimit
	}
	if u.IsPro(now) {
		return ProWordLimit
	}
	return FreeWordLimit
}

// AddonValid reports whether the add-on credit pool still counts. Expiry is
// a hard cliff: an expired pool contributes zero regardless of its size.
func (u UserQuotaState) AddonValid(now time.Time) bool {
	return u.AddonCredits > 0 && !u.AddonCreditsExpiry.IsZero() && now.Before(u.AddonCreditsExpiry)
}

// TotalCredits returns the combined base plus unexpired add-on pool.
func (u UserQuotaState) TotalCredits(now time.Time) int {
	total := u.Credits
	if u.AddonValid(now) {
		total += u.AddonCredits
	}
	return total
}

// CreditsRemaining is never negative, even if usage overshoots the pool.
func (u UserQuotaState) CreditsRemaining(now time.Time) int {
	remaining := u.TotalCredits(now) - u.CreditsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanSpendCredits reports whether a credit pool is configured at all. A pro
// user with no pool is unlimited rather than blocked.
func (u UserQuotaState) CanSpendCredits(now time.Time) bool {
	return u.TotalCredits(now) > 0
}

// UsedToday returns the words consumed under the daily free allowance for
// the given day, treating a stale date as an implicit reset.
func (u UserQuotaState) UsedToday(day string) int {
	if u.FreeDailyDate != day {
		return 0
	}
	return u.FreeDailyUsed
}
