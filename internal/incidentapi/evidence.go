package incidentapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
)

// evidenceIn is the wire shape of one ingested record. Coordinates are
// pointers so an omitted field is distinguishable from a legitimate 0.
type evidenceIn struct {
	EvidenceID string              `json:"evidence_id"`
	SourceType evidence.SourceType `json:"source_type"`
	Type       string              `json:"type"`
	Lat        *float64            `json:"lat"`
	Lng        *float64            `json:"lng"`
	RadiusM    int                 `json:"radius_m"`
	StartTime  *time.Time          `json:"start_time"`
	EndTime    *time.Time          `json:"end_time"`
	Confidence float64             `json:"confidence"`
	URL        string              `json:"url"`
	Raw        map[string]any      `json:"raw"`
	DetectedAt time.Time           `json:"detected_at"`
}

func (in *evidenceIn) toEvidence() (evidence.Evidence, bool) {
	if in.Lat == nil || in.Lng == nil {
		return evidence.Evidence{}, false
	}
	return evidence.Evidence{
		EvidenceID: in.EvidenceID,
		SourceType: in.SourceType,
		Type:       in.Type,
		Lat:        *in.Lat,
		Lng:        *in.Lng,
		RadiusM:    in.RadiusM,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Confidence: in.Confidence,
		URL:        in.URL,
		Raw:        in.Raw,
		DetectedAt: in.DetectedAt,
	}, true
}

func (a *API) handleIngestEvidence(w http.ResponseWriter, r *http.Request) {
	var items []evidenceIn
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("gridwatch.ingest.batch", len(items)))

	// Records missing required coordinates are rejected individually; the
	// rest of the batch proceeds to validation and the store.
	batch := make([]evidence.Evidence, 0, len(items))
	missing := 0
	for i := range items {
		ev, ok := items[i].toEvidence()
		if !ok {
			a.logger.Warn(r.Context(), "rejected evidence record",
				"evidence_id", items[i].EvidenceID,
				"error", "missing coordinates",
			)
			missing++
			continue
		}
		batch = append(batch, ev)
	}

	res := a.svc.Ingest(r.Context(), batch)
	res.Rejected += missing

	span.SetAttributes(
		attribute.Int("gridwatch.ingest.accepted", res.Accepted),
		attribute.Int("gridwatch.ingest.rejected", res.Rejected),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    res.Accepted,
		"accepted": res.Accepted,
		"rejected": res.Rejected,
	})
}
