// Package incident defines the derived Incident aggregate and its
// externally published shape.
package incident

import "time"

// Status tracks whether an incident is considered live.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// ActionStatus tracks a recommended response step.
type ActionStatus string

const (
	ActionPending ActionStatus = "pending"
	ActionDone    ActionStatus = "done"
)

// ActionStep is one recommended response step, derived entirely from a
// static per-type template. Lower priority means more urgent.
type ActionStep struct {
	Step     string       `json:"step"`
	Owner    string       `json:"owner"`
	Priority int          `json:"priority"`
	Status   ActionStatus `json:"status"`
}

// Source summarizes one contributing evidence record.
type Source struct {
	SourceType string  `json:"source_type"`
	URL        string  `json:"url,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Rationale explains why an incident scored the way it did.
type Rationale struct {
	RulesFired  []string `json:"rules_fired"`
	CrossChecks []string `json:"cross_checks"`
}

// Impact is the structured impact estimate, present only when congestion
// was observed.
type Impact struct {
	ETADeltaMinutes int `json:"eta_delta_min"`
}

// Incident is a derived aggregate over one evidence cluster. It is always
// rebuilt in full from a single store snapshot and never patched in
// place: identity is recomputation-stable, value is snapshot-dependent.
type Incident struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Status     Status       `json:"status"`
	Lat        float64      `json:"lat"`
	Lng        float64      `json:"lng"`
	Severity   float64      `json:"severity"`
	Confidence float64      `json:"confidence"`
	Summary    string       `json:"summary,omitempty"`
	Impact     *Impact      `json:"impact,omitempty"`
	Sources    []Source     `json:"sources"`
	Why        Rationale    `json:"why"`
	Actions    []ActionStep `json:"actions"`
	CreatedAt  time.Time    `json:"created_at"`
}
