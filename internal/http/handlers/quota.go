package handlers

import (
	"errors"
	"net/http"
	"time"

	"correctnow/internal/domain"
	"correctnow/internal/middleware"
	"correctnow/internal/quota"
)

type quotaResponse struct {
	Plan             string `json:"plan"`
	Pro              bool   `json:"pro"`
	WordLimit        int    `json:"wordLimit"`
	DailyRemaining   int    `json:"dailyRemaining"`
	CreditsRemaining int    `json:"creditsRemaining"`
	CreditsUsed      int    `json:"creditsUsed"`
	Day              string `json:"day"`
}

// Quota reports the signed-in user's live counters without consuming any.
func (a *App) Quota(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign in to view quota")
		return
	}

	state, err := a.Quotas.UserQuota(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			state = domain.UserQuotaState{UserID: userID, Plan: domain.UserPlanFree}
		} else {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load account")
			return
		}
	}

	now := time.Now()
	day := quota.Day(now)
	rem := quota.DailyFreeWords - state.UsedToday(day)
	if rem < 0 {
		rem = 0
	}
	resp := quotaResponse{
		Plan:             string(state.Plan),
		Pro:              state.IsPro(now),
		WordLimit:        state.EffectiveWordLimit(now),
		DailyRemaining:   rem,
		CreditsRemaining: state.CreditsRemaining(now),
		CreditsUsed:      state.CreditsUsed,
		Day:              day,
	}
	setQuotaHeaders(w, quota.Remaining{
		DailyWords:  resp.DailyRemaining,
		Credits:     resp.CreditsRemaining,
		CreditsUsed: resp.CreditsUsed,
		Pro:         resp.Pro,
	})
	a.json(w, http.StatusOK, resp)
}
