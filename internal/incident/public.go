package incident

import "time"

// externalTypes relabels internal type tags for the published view.
// Types not listed pass through unchanged.
var externalTypes = map[string]string{
	"water_main_break": "water_line_break",
}

// PublicSource is the narrowed source summary served to clients:
// provenance URLs and raw payloads are dropped.
type PublicSource struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// PublicAction is the narrowed action step served to clients; priority is
// an internal dispatch concern and is dropped.
type PublicAction struct {
	Step   string       `json:"step"`
	Owner  string       `json:"owner"`
	Status ActionStatus `json:"status"`
}

// Public is the externally published incident shape.
type Public struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Status     Status         `json:"status"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Severity   float64        `json:"severity"`
	Confidence float64        `json:"confidence"`
	Summary    string         `json:"summary,omitempty"`
	Sources    []PublicSource `json:"sources"`
	Actions    []PublicAction `json:"actions"`
	CreatedAt  time.Time      `json:"created_at"`
	Time       time.Time      `json:"time"`
}

// ToPublic maps an internal Incident to the published shape. Pure and
// side-effect free; inc is not modified.
func ToPublic(inc *Incident) Public {
	typ := inc.Type
	if ext, ok := externalTypes[typ]; ok {
		typ = ext
	}

	sources := make([]PublicSource, len(inc.Sources))
	for i, s := range inc.Sources {
		sources[i] = PublicSource{Type: s.SourceType, Confidence: s.Confidence}
	}

	actions := make([]PublicAction, len(inc.Actions))
	for i, a := range inc.Actions {
		actions[i] = PublicAction{Step: a.Step, Owner: a.Owner, Status: a.Status}
	}

	return Public{
		ID:         inc.ID,
		Type:       typ,
		Status:     inc.Status,
		Lat:        inc.Lat,
		Lng:        inc.Lng,
		Severity:   inc.Severity,
		Confidence: inc.Confidence,
		Summary:    inc.Summary,
		Sources:    sources,
		Actions:    actions,
		CreatedAt:  inc.CreatedAt,
		Time:       inc.CreatedAt,
	}
}
