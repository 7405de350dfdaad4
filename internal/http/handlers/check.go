package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"correctnow/internal/changeset"
	"correctnow/internal/domain"
	"correctnow/internal/lang"
	"correctnow/internal/middleware"
	"correctnow/internal/providers/proof"
	"correctnow/internal/quota"
)

// Quota telemetry headers, set on every check response so clients can
// render live counters.
const (
	headerDailyRemaining   = "X-Daily-Remaining"
	headerCreditsRemaining = "X-Credits-Remaining"
	headerCreditsUsed      = "X-Credits-Used"
)

type checkRequest struct {
	Text            string   `json:"text"`
	Language        string   `json:"language"`
	NameCorrections []string `json:"nameCorrections"`
}

type checkResponse struct {
	CorrectedText string          `json:"corrected_text"`
	Changes       []domain.Change `json:"changes"`
	Language      string          `json:"language"`
	WordCount     int             `json:"word_count"`
	EditDistance  int             `json:"edit_distance"`
}

type quotaDenial struct {
	Message          string `json:"message"`
	RequiresUpgrade  bool   `json:"requiresUpgrade,omitempty"`
	RequiresAuth     bool   `json:"requiresAuth,omitempty"`
	DailyRemaining   int    `json:"dailyRemaining"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// Check runs the full proofreading pipeline: input validation, quota gate,
// model call, defensive extraction, change validation, then quota commit.
// Counters are only persisted after the whole pipeline succeeds, so a failed
// check never consumes quota.
func (a *App) Check(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req checkRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := req.Text
	if strings.TrimSpace(text) == "" {
		a.error(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}
	words := countWords(text)

	userID := middleware.UserIDFromContext(r.Context())
	ip := middleware.ClientIP(r)

	state, err := a.loadState(r, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load account")
		return
	}

	limit := domain.FreeWordLimit
	if userID != "" {
		limit = state.EffectiveWordLimit(time.Now())
	}
	if words > limit {
		a.error(w, http.StatusBadRequest, "word_limit_exceeded",
			"text exceeds the "+strconv.Itoa(limit)+" word limit per check")
		return
	}

	var decision quota.Decision
	if userID != "" {
		decision = a.Ledger.Authorize(state, words, ip)
	} else {
		decision = a.Ledger.AuthorizeAnonymous(ip, words)
	}
	setQuotaHeaders(w, decision.Remaining)
	if !decision.Allowed {
		a.denyQuota(w, userID, decision)
		return
	}

	code := a.resolveLanguage(r, req.Language, text)
	result, err := a.Checker.Check(r.Context(), proof.Request{
		Text:           text,
		Language:       code,
		ProtectedWords: req.NameCorrections,
	})
	if err != nil {
		a.recordUsage(r, userID, code, words, 0, false, start)
		switch {
		case errors.Is(err, domain.ErrUnparsableOutput):
			a.Logger.Error().Err(err).Str("user", userID).Msg("model output unparsable after retry")
			a.error(w, http.StatusInternalServerError, "parse_failure", "could not understand the proofreading result, please try again")
		default:
			a.Logger.Error().Err(err).Str("user", userID).Msg("model call failed")
			a.error(w, http.StatusInternalServerError, "provider_failure", "proofreading service unavailable, please try again")
		}
		return
	}

	changes := changeset.Validate(text, result.Changes)
	corrected := result.CorrectedText
	if corrected == "" {
		accepted := make([]domain.Change, len(changes))
		for i, c := range changes {
			accepted[i] = c
			accepted[i].Status = domain.ChangeAccepted
		}
		corrected = changeset.ApplyAll(text, "", accepted)
	}

	a.commit(r, userID, decision)
	a.recordUsage(r, userID, code, words, len(changes), true, start)

	if changes == nil {
		changes = []domain.Change{}
	}
	a.json(w, http.StatusOK, checkResponse{
		CorrectedText: corrected,
		Changes:       changes,
		Language:      code,
		WordCount:     words,
		EditDistance:  changeset.EditDistance(text, corrected),
	})
}

func (a *App) loadState(r *http.Request, userID string) (domain.UserQuotaState, error) {
	if userID == "" {
		return domain.UserQuotaState{}, nil
	}
	state, err := a.Quotas.UserQuota(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A token for a not-yet-synced account checks as a fresh free user.
			return domain.UserQuotaState{UserID: userID, Plan: domain.UserPlanFree}, nil
		}
		return domain.UserQuotaState{}, err
	}
	return state, nil
}

func (a *App) resolveLanguage(r *http.Request, requested, text string) string {
	if requested != "" {
		return lang.Match(requested)
	}
	code := middleware.LanguageFromContext(r.Context())
	if code != "" && code != "en" {
		return code
	}
	return a.Detector.Detect(text)
}

func (a *App) denyQuota(w http.ResponseWriter, userID string, d quota.Decision) {
	body := quotaDenial{
		DailyRemaining:   d.Remaining.DailyWords,
		CreditsRemaining: d.Remaining.Credits,
	}
	switch {
	case userID == "":
		body.Message = "Daily free allowance reached. Sign in or try again tomorrow."
		body.RequiresAuth = true
	case d.Reason == quota.DenyInsufficientCredits:
		body.Message = "Not enough credits for this check. Buy credits or upgrade your plan."
		body.RequiresUpgrade = true
	default:
		body.Message = "Daily free word allowance exhausted. Upgrade for more."
		body.RequiresUpgrade = true
	}
	a.json(w, http.StatusTooManyRequests, body)
}

// commit persists the counters the authorized decision reserved. Persistence
// errors are logged, not surfaced: the user already got their corrections.
func (a *App) commit(r *http.Request, userID string, d quota.Decision) {
	if d.Delta.DailyWords > 0 {
		a.Ledger.CommitIPWords(middleware.ClientIP(r), d.Delta.DailyWords)
	}
	if userID == "" {
		return
	}
	if d.Delta.DailyWords == 0 && d.Delta.CreditWords == 0 {
		return
	}
	if err := a.Quotas.CommitUsage(r.Context(), userID, d.Delta); err != nil {
		a.Logger.Error().Err(err).Str("user", userID).Msg("failed to commit quota usage")
	}
}

func (a *App) recordUsage(r *http.Request, userID, language string, words, changeCount int, success bool, start time.Time) {
	if a.Quotas == nil {
		return
	}
	ev := domain.UsageEvent{
		UserID:      userID,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Language:    language,
		WordCount:   words,
		ChangeCount: changeCount,
		Success:     success,
		LatencyMS:   int(time.Since(start).Milliseconds()),
	}
	if err := a.Quotas.InsertUsageEvent(r.Context(), ev); err != nil {
		a.Logger.Error().Err(err).Msg("failed to record usage event")
	}
}

func setQuotaHeaders(w http.ResponseWriter, rem quota.Remaining) {
	w.Header().Set(headerDailyRemaining, strconv.Itoa(rem.DailyWords))
	w.Header().Set(headerCreditsRemaining, strconv.Itoa(rem.Credits))
	w.Header().Set(headerCreditsUsed, strconv.Itoa(rem.CreditsUsed))
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
