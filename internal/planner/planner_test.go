package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
	"github.com/linnemanlabs/gridwatch/internal/incident"
)

func TestPlan_KnownType(t *testing.T) {
	t.Parallel()

	p := New()
	steps := p.Plan(evidence.TypeWaterMainBreak)
	if len(steps) != 3 {
		t.Fatalf("step count = %d, want 3", len(steps))
	}
	if steps[0].Step != "Notify Water Dept on-call" {
		t.Errorf("first step = %q, want water dept notification", steps[0].Step)
	}
	if steps[0].Owner != "Water" || steps[0].Priority != 1 {
		t.Errorf("first step owner/priority = %q/%d, want Water/1", steps[0].Owner, steps[0].Priority)
	}
	for _, s := range steps {
		if s.Status != incident.ActionPending {
			t.Errorf("step %q status = %q, want pending", s.Step, s.Status)
		}
	}
}

func TestPlan_UnknownType(t *testing.T) {
	t.Parallel()

	p := New()
	steps := p.Plan("sinkhole")
	if steps == nil {
		t.Fatal("Plan returned nil, want empty slice")
	}
	if len(steps) != 0 {
		t.Errorf("step count = %d, want 0", len(steps))
	}
}

func TestPlan_AllBuiltinTypesCovered(t *testing.T) {
	t.Parallel()

	p := New()
	types := []string{
		evidence.TypeWaterMainBreak,
		evidence.TypeRoadClosure,
		evidence.TypeLaneRestriction,
		evidence.TypePowerOutage,
		evidence.TypeInternetOutage,
		evidence.TypeGasLeak,
		evidence.TypeAccident,
		evidence.TypeCrime,
		evidence.TypeEnvironment,
		evidence.TypeEmergency,
	}
	for _, typ := range types {
		if len(p.Plan(typ)) == 0 {
			t.Errorf("type %q has no built-in plan", typ)
		}
	}
}

func TestNewWithOverrides_ReplacesWholeList(t *testing.T) {
	t.Parallel()

	p := NewWithOverrides(map[string][]Template{
		evidence.TypeRoadClosure: {
			{Step: "Page the duty engineer", Owner: "Ops", Priority: 1},
		},
	})

	steps := p.Plan(evidence.TypeRoadClosure)
	if len(steps) != 1 {
		t.Fatalf("step count = %d, want 1 (override replaces whole list)", len(steps))
	}
	if steps[0].Step != "Page the duty engineer" {
		t.Errorf("step = %q, want override", steps[0].Step)
	}

	// non-overridden types keep their built-in plans
	if len(p.Plan(evidence.TypeGasLeak)) != 2 {
		t.Errorf("gas_leak plan lost its built-in template")
	}
}

func TestNewWithOverrides_Empty(t *testing.T) {
	t.Parallel()

	p := NewWithOverrides(nil)
	if len(p.Plan(evidence.TypeRoadClosure)) == 0 {
		t.Error("empty overrides should keep built-in templates")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "actions.yaml")
	content := `road_closure:
  - step: Page the duty engineer
    owner: Ops
    priority: 1
  - step: Post closure on city feed
    owner: Comms
    priority: 2
sinkhole:
  - step: Dispatch survey crew
    owner: Public Works
    priority: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("override type count = %d, want 2", len(overrides))
	}

	rc := overrides["road_closure"]
	if len(rc) != 2 {
		t.Fatalf("road_closure template count = %d, want 2", len(rc))
	}
	if rc[0].Step != "Page the duty engineer" || rc[0].Owner != "Ops" || rc[0].Priority != 1 {
		t.Errorf("road_closure[0] = %+v, want parsed values", rc[0])
	}
	if rc[1].Priority != 2 {
		t.Errorf("road_closure[1].Priority = %d, want 2", rc[1].Priority)
	}

	// overrides may introduce plans for types with no built-in template
	p := NewWithOverrides(overrides)
	if len(p.Plan("sinkhole")) != 1 {
		t.Errorf("sinkhole plan from override file not applied")
	}
}

func TestLoadOverrides_MissingStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "actions.yaml")
	content := `road_closure:
  - owner: Ops
    priority: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadOverrides(path)
	if err == nil {
		t.Fatal("expected error for template entry without step")
	}
	if !strings.Contains(err.Error(), "step is required") {
		t.Errorf("error %q does not mention missing step", err)
	}
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
