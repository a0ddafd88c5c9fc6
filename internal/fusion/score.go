package fusion

import (
	"fmt"
	"math"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
)

// sourceWeights ranks source trustworthiness for the base score.
var sourceWeights = map[evidence.SourceType]float64{
	evidence.SourceOpen311:      1.0,
	evidence.SourceIncidentFeed: 0.9,
	evidence.SourceFlowFeed:     0.8,
	evidence.SourceNews:         0.7,
	evidence.SourceManual:       0.6,
	evidence.SourceSocialPost:   0.5,
}

// defaultSourceWeight applies to source types not in the table.
const defaultSourceWeight = 0.5

const (
	// diversityStep rewards each additional independent source type,
	// capped at three distinct sources' worth of benefit.
	diversityStep = 0.05
	diversityCap  = 0.15

	// Traffic corroboration: a flow-feed jam factor at or above the
	// threshold corroborates road-affecting incident types.
	jamFactorThreshold  = 0.7
	corroborationBonus  = 0.10
	ruleTrafficCorrob   = "traffic_corroboration"
	etaMinutesPerJamMax = 15
)

// corroboratedTypes are the incident types the traffic corroboration rule
// applies to.
var corroboratedTypes = map[string]bool{
	evidence.TypeWaterMainBreak: true,
	evidence.TypeRoadClosure:    true,
}

// Verdict is the scored outcome for one cluster.
type Verdict struct {
	Confidence  float64
	Severity    float64
	Congestion  float64
	Impact      *incident.Impact
	RulesFired  []string
	CrossChecks []string
}

// Score computes the verdict for a cluster sharing incType. Pure and
// total over validated input: it never fails for any type, source type,
// or cluster composition, and identical clusters always yield identical
// verdicts. Unrecognized types still score; they just fire no rules.
func Score(incType string, cluster []evidence.Evidence) Verdict {
	var sum float64
	distinct := make(map[evidence.SourceType]struct{}, len(cluster))
	for _, ev := range cluster {
		w, ok := sourceWeights[ev.SourceType]
		if !ok {
			w = defaultSourceWeight
		}
		sum += ev.Confidence * w
		distinct[ev.SourceType] = struct{}{}
	}

	n := len(cluster)
	if n == 0 {
		n = 1 // defensive: clusters are only built from non-empty groupings
	}
	base := sum / float64(n)

	bonus := diversityStep * float64(len(distinct)-1)
	if bonus > diversityCap {
		bonus = diversityCap
	}
	if bonus < 0 {
		bonus = 0
	}

	v := Verdict{
		RulesFired:  []string{},
		CrossChecks: []string{},
	}

	var corrob float64
	for _, ev := range cluster {
		fd, ok := ev.FlowDetail()
		if !ok {
			continue
		}
		if fd.JamFactor > v.Congestion {
			v.Congestion = fd.JamFactor
		}
		if fd.JamFactor >= jamFactorThreshold && corroboratedTypes[incType] && corrob == 0 {
			corrob = corroborationBonus
			v.RulesFired = append(v.RulesFired, ruleTrafficCorrob)
			v.CrossChecks = append(v.CrossChecks,
				fmt.Sprintf("flow jam factor %.2f corroborates %s", fd.JamFactor, incType))
		}
	}

	v.Confidence = clamp01(base + bonus + corrob)
	v.Severity = 0.6*v.Confidence + 0.4*v.Congestion
	if v.Congestion > 0 {
		v.Impact = &incident.Impact{
			ETADeltaMinutes: int(math.Round(etaMinutesPerJamMax * v.Congestion)),
		}
	}
	return v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
