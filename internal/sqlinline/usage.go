package sqlinline

const QInsertUsageEvent = `--sql 0a16eacf-7bfb-4bc4-819f-bcebca5c7a60
insert into usage_events(id, user_id, request_id, language, word_count, change_count, success, latency_ms, created_at)
values (gen_random_uuid(), nullif($1, '')::uuid, $2::uuid, $3::text, $4::int, $5::int, $6::boolean, $7::int, now());
`
