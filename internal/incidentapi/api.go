// Package incidentapi exposes the evidence ingest and incident query
// HTTP endpoints.
package incidentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
	"github.com/linnemanlabs/gridwatch/internal/service"
)

// FusionService defines the business operations incidentapi needs.
type FusionService interface {
	Ingest(ctx context.Context, batch []evidence.Evidence) service.IngestResult
	Query(ctx context.Context, limit int, since *time.Time) []incident.Public
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    FusionService
}

// New creates a new API handler.
func New(logger log.Logger, svc FusionService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("fusion service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router. authmw is applied
// to the mutation route by main when a token is configured.
func (a *API) RegisterRoutes(r chi.Router, ingestMW ...func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.With(ingestMW...).Post("/evidence", a.handleIngestEvidence)
		r.Get("/incidents", a.handleListIncidents)
	})
}

func (a *API) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxLimit {
			http.Error(w, `{"error":"limit must be an integer in 1..100"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, `{"error":"since must be an ISO-8601 timestamp"}`, http.StatusBadRequest)
			return
		}
		since = &t
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("gridwatch.query.limit", limit))

	rows := a.svc.Query(r.Context(), limit, since)

	span.SetAttributes(attribute.Int("gridwatch.query.incidents", len(rows)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": rows,
	})
}
