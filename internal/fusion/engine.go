package fusion

import (
	"sort"
	"time"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
	"github.com/linnemanlabs/gridwatch/internal/planner"
)

// Engine turns an evidence snapshot into scored, ranked incidents. All
// computation is synchronous, CPU-only, and bounded by the snapshot size.
type Engine struct {
	precision int
	planner   *planner.Planner
}

// NewEngine creates an Engine. precision is the grid-rounding resolution
// in decimal places; pl supplies action plans (nil means the built-in
// templates).
func NewEngine(precision int, pl *planner.Planner) *Engine {
	if precision <= 0 {
		precision = DefaultGridPrecision
	}
	if pl == nil {
		pl = planner.New()
	}
	return &Engine{precision: precision, planner: pl}
}

// Build assembles incidents from a single snapshot. Incidents are always
// rebuilt whole, never patched: the ID is a deterministic function of the
// cluster key, so repeated builds over equivalent snapshots reproduce the
// same identities. Results are sorted by severity descending, ties broken
// by ID for a stable order.
func (e *Engine) Build(snapshot []evidence.Evidence, now time.Time) []incident.Incident {
	buckets := Cluster(snapshot, e.precision)

	incidents := make([]incident.Incident, 0, len(buckets))
	for key, cluster := range buckets {
		incidents = append(incidents, e.assemble(key, cluster, now))
	}

	sort.Slice(incidents, func(i, j int) bool {
		if incidents[i].Severity != incidents[j].Severity {
			return incidents[i].Severity > incidents[j].Severity
		}
		return incidents[i].ID < incidents[j].ID
	})
	return incidents
}

func (e *Engine) assemble(key Key, cluster []evidence.Evidence, now time.Time) incident.Incident {
	incType := cluster[0].Type

	var latSum, lngSum float64
	sources := make([]incident.Source, len(cluster))
	area := ""
	for i, ev := range cluster {
		latSum += ev.Lat
		lngSum += ev.Lng
		sources[i] = incident.Source{
			SourceType: string(ev.SourceType),
			URL:        ev.URL,
			Confidence: ev.Confidence,
		}
		if area == "" {
			if a, ok := ev.Area(); ok {
				area = a
			}
		}
	}

	v := Score(incType, cluster)

	return incident.Incident{
		ID:         key.ID(),
		Type:       incType,
		Status:     incident.StatusActive,
		Lat:        latSum / float64(len(cluster)),
		Lng:        lngSum / float64(len(cluster)),
		Severity:   v.Severity,
		Confidence: v.Confidence,
		Summary:    summaryFor(incType, &v, area),
		Impact:     v.Impact,
		Sources:    sources,
		Why: incident.Rationale{
			RulesFired:  v.RulesFired,
			CrossChecks: v.CrossChecks,
		},
		Actions:   e.planner.Plan(incType),
		CreatedAt: now,
	}
}
