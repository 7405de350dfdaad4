package quota

import (
	"testing"
	"time"

	"correctnow/internal/cache"
	"correctnow/internal/domain"
)

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func testLedger() *Ledger {
	return NewLedger(func() time.Time { return testNow }, cache.New[int](100))
}

func freeUser(used int, day string) domain.UserQuotaState {
	return domain.UserQuotaState{
		Plan:          domain.UserPlanFree,
		WordLimit:     domain.FreeWordLimit,
		FreeDailyUsed: used,
		FreeDailyDate: day,
	}
}

func TestAuthorizeDailyPoolFirst(t *testing.T) {
	l := testLedger()
	d := l.Authorize(freeUser(0, ""), 100, "203.0.113.9")
	if !d.Allowed {
		t.Fatalf("Authorize() denied: %+v", d)
	}
	if d.Delta.DailyWords != 100 || d.Delta.CreditWords != 0 {
		t.Fatalf("Delta = %+v, want daily pool consumption", d.Delta)
	}
	if d.Delta.Day != "2025-06-15" {
		t.Fatalf("Delta.Day = %q, want UTC today", d.Delta.Day)
	}
}

func TestAuthorizeCreditsAsOverflow(t *testing.T) {
	l := testLedger()
	state := freeUser(250, Day(testNow)) // 50 daily words left
	state.Credits = 1000

	d := l.Authorize(state, 80, "203.0.113.9")
	if !d.Allowed {
		t.Fatalf("Authorize() denied: %+v", d)
	}
	if d.Delta.CreditWords != 80 {
		t.Fatalf("Delta.CreditWords = %d, want 80", d.Delta.CreditWords)
	}
	if d.Delta.DailyWords != 0 {
		t.Fatalf("Delta.DailyWords = %d, daily pool must stay untouched", d.Delta.DailyWords)
	}
}

func TestAuthorizeDenyNoCredits(t *testing.T) {
	l := testLedger()
	state := freeUser(300, Day(testNow))

	d := l.Authorize(state, 10, "203.0.113.9")
	if d.Allowed {
		t.Fatalf("Authorize() allowed, want deny")
	}
	if d.Reason != DenyDailyLimit {
		t.Fatalf("Reason = %q, want %q", d.Reason, DenyDailyLimit)
	}
}

func TestAuthorizeDenyInsufficientCredits(t *testing.T) {
	l := testLedger()
	state := freeUser(300, Day(testNow))
	state.Credits = 50
	state.CreditsUsed = 40

	d := l.Authorize(state, 80, "203.0.113.9")
	if d.Allowed {
		t.Fatalf("Authorize() allowed, want deny")
	}
	if d.Reason != DenyInsufficientCredits {
		t.Fatalf("Reason = %q, want %q", d.Reason, DenyInsufficientCredits)
	}
	if d.Remaining.Credits != 10 {
		t.Fatalf("Remaining.Credits = %d, want 10", d.Remaining.Credits)
	}
}

func TestAuthorizeStaleDailyDateResets(t *testing.T) {
	l := testLedger()
	state := freeUser(300, "2025-06-14")

	d := l.Authorize(state, 100, "203.0.113.9")
	if !d.Allowed || d.Delta.DailyWords != 100 {
		t.Fatalf("stale daily date must reset allowance, got %+v", d)
	}
}

func TestAuthorizeIPGateIndependent(t *testing.T) {
	l := testLedger()
	l.CommitIPWords("203.0.113.9", 280)

	// Fresh account, same IP: only 20 IP words left, so the 100-word
	// request overflows to credits or is denied.
	d := l.Authorize(freeUser(0, ""), 100, "203.0.113.9")
	if d.Allowed {
		t.Fatalf("Authorize() allowed despite exhausted IP gate: %+v", d)
	}
	if d.Reason != DenyDailyLimit {
		t.Fatalf("Reason = %q, want %q", d.Reason, DenyDailyLimit)
	}
}

func TestAuthorizeProUnlimitedWithoutPool(t *testing.T) {
	l := testLedger()
	state := domain.UserQuotaState{Plan: domain.UserPlanPro, WordLimit: domain.ProWordLimit}

	d := l.Authorize(state, 4000, "")
	if !d.Allowed {
		t.Fatalf("Authorize() denied pro user with no pool: %+v", d)
	}
	if d.Delta != (Delta{}) {
		t.Fatalf("Delta = %+v, want no deduction", d.Delta)
	}
}

func TestAuthorizeProEnforcesConfiguredPool(t *testing.T) {
	l := testLedger()
	state := domain.UserQuotaState{
		Plan:        domain.UserPlanPro,
		WordLimit:   domain.ProWordLimit,
		Credits:     100,
		CreditsUsed: 90,
	}

	d := l.Authorize(state, 50, "")
	if d.Allowed {
		t.Fatalf("Authorize() allowed past configured pool")
	}
	if d.Reason != DenyInsufficientCredits {
		t.Fatalf("Reason = %q, want %q", d.Reason, DenyInsufficientCredits)
	}
}

func TestAddonExpiryCliff(t *testing.T) {
	l := testLedger()
	state := freeUser(300, Day(testNow))
	state.AddonCredits = 100000
	state.AddonCreditsExpiry = testNow.Add(-time.Hour)

	d := l.Authorize(state, 10, "")
	if d.Allowed {
		t.Fatalf("expired add-on credits must contribute zero")
	}

	state.AddonCreditsExpiry = testNow.Add(time.Hour)
	d = l.Authorize(state, 10, "")
	if !d.Allowed || d.Delta.CreditWords != 10 {
		t.Fatalf("unexpired add-on credits must be spendable, got %+v", d)
	}
}

func TestSubscriptionRecencyGatesPro(t *testing.T) {
	state := domain.UserQuotaState{
		Plan:               domain.UserPlanPro,
		WordLimit:          domain.ProWordLimit,
		SubscriptionStatus: "active",
		SubscriptionUpdate: testNow.Add(-40 * 24 * time.Hour),
	}
	if state.IsPro(testNow) {
		t.Fatalf("stale active subscription must not grant pro")
	}
	state.SubscriptionUpdate = testNow.Add(-10 * 24 * time.Hour)
	if !state.IsPro(testNow) {
		t.Fatalf("recent active subscription must grant pro")
	}
	state.SubscriptionStatus = "past_due"
	if state.IsPro(testNow) {
		t.Fatalf("past_due subscription must not grant pro")
	}
}

func TestAuthorizeAnonymous(t *testing.T) {
	l := testLedger()
	d := l.AuthorizeAnonymous("198.51.100.7", 100)
	if !d.Allowed {
		t.Fatalf("AuthorizeAnonymous() denied fresh IP")
	}
	l.CommitIPWords("198.51.100.7", 250)
	d = l.AuthorizeAnonymous("198.51.100.7", 100)
	if d.Allowed {
		t.Fatalf("AuthorizeAnonymous() allowed past the IP allowance")
	}
}

func TestCommitIPWordsResetsNextDay(t *testing.T) {
	now := testNow
	l := NewLedger(func() time.Time { return now }, cache.New[int](100))
	l.CommitIPWords("198.51.100.7", 300)

	if d := l.AuthorizeAnonymous("198.51.100.7", 1); d.Allowed {
		t.Fatalf("expected IP exhausted today")
	}

	now = now.Add(24 * time.Hour)
	if d := l.AuthorizeAnonymous("198.51.100.7", 1); !d.Allowed {
		t.Fatalf("expected fresh counter on the next UTC day")
	}
}
