package fusion

import "fmt"

// summaries holds the per-type lead sentence for incident summaries.
// Keys cover internal tags plus relabeled external ones so a mirrored
// row read back under its public type still resolves.
var summaries = map[string]string{
	"water_main_break": "Likely water main break; traffic impact expected.",
	"water_line_break": "Water line break reported.",
	"road_closure":     "Road closure reported; detours recommended.",
	"lane_restriction": "Lane restriction detected; moderate delays.",
	"congestion":       "Traffic congestion detected.",
	"power_outage":     "Power outage reported.",
	"internet_outage":  "Internet outage reported.",
	"gas_leak":         "Gas leak reported.",
	"accident":         "Traffic accident reported.",
	"crime":            "Crime incident reported.",
	"environment":      "Environmental hazard detected.",
	"emergency":        "Emergency alert issued.",
}

// genericSummary covers unrecognized types, which are scored but get no
// tailored text.
const genericSummary = "Incident detected."

// summaryFor renders the human summary for a scored cluster: the
// per-type lead, an ETA suffix when an impact estimate exists, and a
// location suffix when a producer attached an area hint.
func summaryFor(incType string, v *Verdict, area string) string {
	s, ok := summaries[incType]
	if !ok {
		s = genericSummary
	}
	if v.Impact != nil && v.Impact.ETADeltaMinutes > 0 {
		s += fmt.Sprintf(" ETA impact ~%d min.", v.Impact.ETADeltaMinutes)
	}
	if area != "" {
		s += fmt.Sprintf(" Location: %s.", area)
	}
	return s
}
