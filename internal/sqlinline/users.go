package sqlinline

// Quota state reads and merge-style partial writes. Each statement touches
// only the counters it owns; there are no multi-statement transactions, so
// two concurrent checks for one user can race on the counters. The cost of
// a rare over-count is a few extra words, which the product accepts.

const QSelectUserQuota = `--sql cba95d57-d7c9-4edc-b24b-1d37bd388a08
select
    id,
    coalesce(plan, 'free'),
    coalesce(subscription_status, ''),
    coalesce(word_limit, 0),
    coalesce(credits, 0),
    coalesce(credits_used, 0),
    coalesce(addon_credits, 0),
    addon_credits_expiry_at,
    coalesce(free_daily_used, 0),
    coalesce(free_daily_date, ''),
    credits_reset_date,
    subscription_updated_at,
    credits_updated_at
from users
where id = $1::uuid
limit 1;
`

const QCommitDailyUsage = `--sql 2fe457c6-e9f3-4513-af3d-3b5bff3b8f49
update users set
    free_daily_used = case when free_daily_date = $2::text then coalesce(free_daily_used, 0) + $3::int else $3::int end,
    free_daily_date = $2::text,
    updated_at = now()
where id = $1::uuid;
`

const QCommitCreditUsage = `--sql fc57dee8-9944-4723-aeb9-0cff387f3827
update users set
    credits_used = coalesce(credits_used, 0) + $2::int,
    credits_updated_at = now(),
    updated_at = now()
where id = $1::uuid;
`
