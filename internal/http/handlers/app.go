package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"correctnow/internal/domain"
	"correctnow/internal/infra"
	"correctnow/internal/lang"
	"correctnow/internal/providers/proof"
	"correctnow/internal/quota"
)

// QuotaStore is the persistence contract the handlers need. The pgx-backed
// implementation lives in internal/adapter/repo.
type QuotaStore interface {
	UserQuota(ctx context.Context, userID string) (domain.UserQuotaState, error)
	CommitUsage(ctx context.Context, userID string, delta quota.Delta) error
	InsertUsageEvent(ctx context.Context, ev domain.UsageEvent) error
}

// App bundles the dependencies of the HTTP surface.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Checker  proof.Checker
	Ledger   *quota.Ledger
	Quotas   QuotaStore
	Detector *lang.Detector
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, checker proof.Checker, ledger *quota.Ledger, quotas QuotaStore, detector *lang.Detector) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Checker:  checker,
		Ledger:   ledger,
		Quotas:   quotas,
		Detector: detector,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
