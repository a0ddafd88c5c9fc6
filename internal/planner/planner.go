// Package planner maps canonical incident types to ordered response
// action templates.
package planner

import (
	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
)

// Template is one action entry in a per-type plan.
type Template struct {
	Step     string `json:"step" koanf:"step"`
	Owner    string `json:"owner" koanf:"owner"`
	Priority int    `json:"priority" koanf:"priority"`
}

// defaults is the built-in per-type action table.
var defaults = map[string][]Template{
	evidence.TypeWaterMainBreak: {
		{Step: "Notify Water Dept on-call", Owner: "Water", Priority: 1},
		{Step: "Stage cones at nearest cross-streets", Owner: "Traffic", Priority: 1},
		{Step: "Publish detour via 5th→Pine", Owner: "Traffic", Priority: 2},
	},
	evidence.TypeRoadClosure: {
		{Step: "Publish closure advisory", Owner: "Traffic", Priority: 1},
		{Step: "Adjust signal timing +10s", Owner: "Traffic", Priority: 2},
	},
	evidence.TypeLaneRestriction: {
		{Step: "Publish closure advisory", Owner: "Traffic", Priority: 1},
		{Step: "Adjust signal timing +10s", Owner: "Traffic", Priority: 2},
	},
	evidence.TypePowerOutage: {
		{Step: "Notify utility on-call", Owner: "Utility", Priority: 1},
		{Step: "Publish outage advisory", Owner: "Ops", Priority: 2},
	},
	evidence.TypeInternetOutage: {
		{Step: "Contact ISP NOC", Owner: "ISP", Priority: 1},
		{Step: "Advise alternate connectivity", Owner: "Ops", Priority: 2},
	},
	evidence.TypeGasLeak: {
		{Step: "Dispatch Fire Dept", Owner: "Fire Dept", Priority: 1},
		{Step: "Notify gas utility", Owner: "Utility", Priority: 1},
	},
	evidence.TypeAccident: {
		{Step: "Dispatch EMS/Police", Owner: "EMS", Priority: 1},
		{Step: "Place cones / reroute", Owner: "Traffic", Priority: 2},
	},
	evidence.TypeCrime: {
		{Step: "Dispatch Police", Owner: "Police", Priority: 1},
		{Step: "Secure area if needed", Owner: "Police", Priority: 2},
	},
	evidence.TypeEnvironment: {
		{Step: "Issue public advisory", Owner: "Emergency Management", Priority: 1},
		{Step: "Monitor conditions", Owner: "Environmental", Priority: 2},
	},
	evidence.TypeEmergency: {
		{Step: "Activate emergency response", Owner: "Emergency Management", Priority: 1},
		{Step: "Notify relevant agencies", Owner: "Emergency Management", Priority: 1},
	},
}

// Planner produces action plans from a static template table.
type Planner struct {
	templates map[string][]Template
}

// New returns a Planner with the built-in templates.
func New() *Planner {
	return &Planner{templates: defaults}
}

// NewWithOverrides layers per-type overrides on the built-in table. An
// override replaces the whole template list for that type.
func NewWithOverrides(overrides map[string][]Template) *Planner {
	if len(overrides) == 0 {
		return New()
	}
	merged := make(map[string][]Template, len(defaults)+len(overrides))
	for typ, tpl := range defaults {
		merged[typ] = tpl
	}
	for typ, tpl := range overrides {
		merged[typ] = tpl
	}
	return &Planner{templates: merged}
}

// Plan returns the ordered action steps for an incident type, all
// pending. Unknown types get an empty plan, never an error.
func (p *Planner) Plan(incType string) []incident.ActionStep {
	tpls, ok := p.templates[incType]
	if !ok {
		return []incident.ActionStep{}
	}
	steps := make([]incident.ActionStep, len(tpls))
	for i, t := range tpls {
		steps[i] = incident.ActionStep{
			Step:     t.Step,
			Owner:    t.Owner,
			Priority: t.Priority,
			Status:   incident.ActionPending,
		}
	}
	return steps
}
