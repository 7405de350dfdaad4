// Package quota decides, per check request, whether a user may proceed,
// what it costs, and which counters to persist afterwards. The two-pool
// model drains in fixed priority: the time-boxed free daily allowance first,
// purchasable credits only as overflow, so nothing paid-for is consumed
// while a free path exists.
package quota

import (
	"fmt"
	"time"

	"correctnow/internal/cache"
	"correctnow/internal/domain"
)

// DailyFreeWords is the calendar-day word allowance for non-pro users. The
// same ceiling applies independently per user and per client IP, so a single
// IP cannot launder quota across many free accounts.
const DailyFreeWords = 300

// DenyReason tells the caller which gate rejected the request.
type DenyReason string

const (
	DenyDailyLimit          DenyReason = "daily_limit_exhausted"
	DenyInsufficientCredits DenyReason = "insufficient_credits"
)

// Delta describes exactly which counters to persist once the proofreading
// call has succeeded. A failed check never consumes quota, so deltas are
// computed at authorization time but committed only afterwards.
type Delta struct {
	DailyWords  int
	CreditWords int
	Day         string
}

// Remaining is live quota telemetry reported on every response, allow or
// deny, so clients can render counters.
type Remaining struct {
	DailyWords  int  `json:"dailyRemaining"`
	IPWords     int  `json:"-"`
	Credits     int  `json:"creditsRemaining"`
	CreditsUsed int  `json:"creditsUsed"`
	Pro         bool `json:"pro"`
}

// Decision is the outcome of a single authorization.
type Decision struct {
	Allowed   bool
	Reason    DenyReason
	Delta     Delta
	Remaining Remaining
}

// Ledger owns the quota decision. All date arithmetic runs through the
// injected clock on the UTC calendar day, so behavior does not drift with
// the server timezone.
type Ledger struct {
	clock   func() time.Time
	ipWords *cache.Store[int]
}

// NewLedger builds a ledger around the given clock and per-IP word counter
// store. A nil clock defaults to time.Now.
func NewLedger(clock func() time.Time, ipWords *cache.Store[int]) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{clock: clock, ipWords: ipWords}
}

// Day formats t as the UTC calendar day string used by freeDailyDate.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Authorize applies the gate order from the product's billing rules: free
// daily allowance (user gate AND IP gate), then credits as overflow. Pro
// users skip the daily allowance entirely; a pro user with no credit pool
// configured is unlimited.
func (l *Ledger) Authorize(state domain.UserQuotaState, words int, ip string) Decision {
	now := l.clock()
	today := Day(now)

	remaining := Remaining{
		Credits:     state.CreditsRemaining(now),
		CreditsUsed: state.CreditsUsed,
		Pro:         state.IsPro(now),
	}

	if remaining.Pro {
		if !state.CanSpendCredits(now) {
			return Decision{Allowed: true, Remaining: remaining}
		}
		if words > remaining.Credits {
			return Decision{Reason: DenyInsufficientCredits, Remaining: remaining}
		}
		return Decision{
			Allowed:   true,
			Delta:     Delta{CreditWords: words},
			Remaining: remaining,
		}
	}

	usedToday := state.UsedToday(today)
	remaining.DailyWords = max(0, DailyFreeWords-usedToday)
	remaining.IPWords = l.ipRemaining(ip, now)

	if words > remaining.DailyWords || words > remaining.IPWords {
		if state.CanSpendCredits(now) {
			if words <= remaining.Credits {
				return Decision{
					Allowed:   true,
					Delta:     Delta{CreditWords: words},
					Remaining: remaining,
				}
			}
			return Decision{Reason: DenyInsufficientCredits, Remaining: remaining}
		}
		return Decision{Reason: DenyDailyLimit, Remaining: remaining}
	}

	return Decision{
		Allowed:   true,
		Delta:     Delta{DailyWords: words, Day: today},
		Remaining: remaining,
	}
}

// AuthorizeAnonymous gates an unauthenticated request on the per-IP daily
// word counter alone; anonymous callers have no credit pool to overflow
// into.
func (l *Ledger) AuthorizeAnonymous(ip string, words int) Decision {
	now := l.clock()
	remaining := Remaining{IPWords: l.ipRemaining(ip, now)}
	remaining.DailyWords = remaining.IPWords
	if words > remaining.IPWords {
		return Decision{Reason: DenyDailyLimit, Remaining: remaining}
	}
	return Decision{
		Allowed:   true,
		Delta:     Delta{DailyWords: words, Day: Day(now)},
		Remaining: remaining,
	}
}

// CommitIPWords bumps the per-IP daily counter after a successful check that
// consumed the daily pool. The entry lapses at the next UTC midnight.
func (l *Ledger) CommitIPWords(ip string, words int) {
	if ip == "" || words <= 0 || l.ipWords == nil {
		return
	}
	now := l.clock()
	l.ipWords.Update(ipKey(ip, Day(now)), now, func(prev int, _ bool) (int, time.Time) {
		return prev + words, endOfDay(now)
	})
}

func (l *Ledger) ipRemaining(ip string, now time.Time) int {
	if ip == "" || l.ipWords == nil {
		return DailyFreeWords
	}
	used, _ := l.ipWords.Get(ipKey(ip, Day(now)), now)
	return max(0, DailyFreeWords-used)
}

func ipKey(ip, day string) string {
	return fmt.Sprintf("%s|%s", ip, day)
}

func endOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
