// Package repo adapts the quota document store onto PostgreSQL. Writes are
// merge-style partial updates of single counters, never read-modify-write
// round trips through the application.
package repo

import (
	"context"
	"fmt"
	"time"

	"correctnow/internal/domain"
	"correctnow/internal/infra"
	"correctnow/internal/quota"
	"correctnow/internal/sqlinline"
)

// QuotaStore reads and persists per-user quota state.
type QuotaStore struct {
	sql infra.SQLExecutor
}

func NewQuotaStore(sql infra.SQLExecutor) *QuotaStore {
	return &QuotaStore{sql: sql}
}

// UserQuota loads the persisted quota state for userID. A missing user maps
// to domain.ErrNotFound.
func (s *QuotaStore) UserQuota(ctx context.Context, userID string) (domain.UserQuotaState, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectUserQuota, userID)
	var (
		state        domain.UserQuotaState
		plan         string
		addonExpiry  *time.Time
		creditsReset *time.Time
		subUpdatedAt *time.Time
		credUpdated  *time.Time
	)
	err := row.Scan(
		&state.UserID,
		&plan,
		&state.SubscriptionStatus,
		&state.WordLimit,
		&state.Credits,
		&state.CreditsUsed,
		&state.AddonCredits,
		&addonExpiry,
		&state.FreeDailyUsed,
		&state.FreeDailyDate,
		&creditsReset,
		&subUpdatedAt,
		&credUpdated,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.UserQuotaState{}, domain.ErrNotFound
		}
		return domain.UserQuotaState{}, fmt.Errorf("load user quota: %w", err)
	}
	state.Plan = domain.UserPlan(plan)
	if addonExpiry != nil {
		state.AddonCreditsExpiry = *addonExpiry
	}
	if creditsReset != nil {
		state.CreditsResetDate = *creditsReset
	}
	if subUpdatedAt != nil {
		state.SubscriptionUpdate = *subUpdatedAt
	}
	if credUpdated != nil {
		state.CreditsUpdatedAt = *credUpdated
	}
	return state, nil
}

// CommitUsage persists the counters a successful check consumed. Each pool
// is written with its own partial update so an untouched pool is never
// rewritten.
func (s *QuotaStore) CommitUsage(ctx context.Context, userID string, delta quota.Delta) error {
	if delta.DailyWords > 0 {
		if _, err := s.sql.Exec(ctx, sqlinline.QCommitDailyUsage, userID, delta.Day, delta.DailyWords); err != nil {
			return fmt.Errorf("commit daily usage: %w", err)
		}
	}
	if delta.CreditWords > 0 {
		if _, err := s.sql.Exec(ctx, sqlinline.QCommitCreditUsage, userID, delta.CreditWords); err != nil {
			return fmt.Errorf("commit credit usage: %w", err)
		}
	}
	return nil
}

// InsertUsageEvent records one proofreading call for analytics. Failures
// here are reported but must not fail the user's request; the caller logs
// and continues.
func (s *QuotaStore) InsertUsageEvent(ctx context.Context, ev domain.UsageEvent) error {
	_, err := s.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		ev.UserID, ev.RequestID, ev.Language, ev.WordCount, ev.ChangeCount, ev.Success, ev.LatencyMS)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}
