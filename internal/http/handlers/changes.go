package handlers

import (
	"net/http"
	"strings"

	"correctnow/internal/changeset"
	"correctnow/internal/domain"
)

type applyRequest struct {
	Text    string          `json:"text"`
	Change  domain.Change   `json:"change"`
	Pending []domain.Change `json:"pending"`
}

type applyResponse struct {
	Text    string          `json:"text"`
	Changes []domain.Change `json:"changes"`
}

// ApplyChange applies a single accepted change to the client's current text
// and re-validates whatever pending changes remain against the updated text.
// Pending changes whose anchor no longer exists come back as ignored.
func (a *App) ApplyChange(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Text == "" {
		a.error(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}
	if strings.TrimSpace(req.Change.Original) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "change.original is required")
		return
	}

	updated := changeset.ApplyOne(req.Text, req.Change)
	pending := changeset.Revalidate(updated, req.Pending)
	if pending == nil {
		pending = []domain.Change{}
	}
	a.json(w, http.StatusOK, applyResponse{Text: updated, Changes: pending})
}

type applyAllRequest struct {
	Text          string          `json:"text"`
	CorrectedText string          `json:"corrected_text"`
	Changes       []domain.Change `json:"changes"`
}

type applyAllResponse struct {
	Text         string `json:"text"`
	EditDistance int    `json:"edit_distance"`
}

// ApplyAllChanges accepts every remaining change at once. When the model's
// own corrected text is available it takes precedence over folding the
// individual changes, since the model text is internally consistent.
func (a *App) ApplyAllChanges(w http.ResponseWriter, r *http.Request) {
	var req applyAllRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Text == "" {
		a.error(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}

	for i := range req.Changes {
		if req.Changes[i].Status == domain.ChangePending {
			req.Changes[i].Status = domain.ChangeAccepted
		}
	}
	final := changeset.ApplyAll(req.Text, req.CorrectedText, req.Changes)
	a.json(w, http.StatusOK, applyAllResponse{
		Text:         final,
		EditDistance: changeset.EditDistance(req.Text, final),
	})
}
