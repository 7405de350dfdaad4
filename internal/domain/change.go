package domain

// ChangeStatus tracks what the user decided about one suggested edit.
type ChangeStatus string

const (
	ChangePending  ChangeStatus = "pending"
	ChangeAccepted ChangeStatus = "accepted"
	ChangeIgnored  ChangeStatus = "ignored"
)

// Change is one model-reported edit that has passed validation: Original is
// a literal, anchorable slice of the source text and the edit is not a no-op.
type Change struct {
	Original    string       `json:"original"`
	Corrected   string       `json:"corrected"`
	Explanation string       `json:"explanation"`
	Status      ChangeStatus `json:"status"`
}

// ChangeCandidate is the untrusted, possibly partially-shaped form parsed
// from model output. Validation is the only code allowed to convert a
// candidate into a Change.
type ChangeCandidate struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}
