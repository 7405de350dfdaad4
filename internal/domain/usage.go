package domain

// UsageEvent records one completed (or failed) proofreading call for
// analytics. UserID is empty for anonymous checks.
type UsageEvent struct {
	UserID      string
	RequestID   string
	Language    string
	WordCount   int
	ChangeCount int
	Success     bool
	LatencyMS   int
}
