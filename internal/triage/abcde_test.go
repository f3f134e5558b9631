package triage

import (
	"testing"

	"github.com/triagestack/triage-engine/internal/models"
)

func TestComputeABCDEAllNormal(t *testing.T) {
	got := ComputeABCDE(normalSnapshot())
	want := models.ABCDEStatus{
		Airway:      "OPEN",
		Breathing:   "ADEQUATE",
		Circulation: "ADEQUATE",
		Disability:  "ALERT",
		Exposure:    "NORMAL",
	}
	if got != want {
		t.Fatalf("ComputeABCDE = %+v, want %+v", got, want)
	}
}

func TestComputeABCDECascades(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.PatientSnapshot)
		check  func(models.ABCDEStatus) (string, string)
	}{
		{"airway at risk", func(p *models.PatientSnapshot) { p.Consciousness = models.ConsciousnessUnconscious },
			func(s models.ABCDEStatus) (string, string) { return s.Airway, "AT RISK" }},
		{"breathing critical", func(p *models.PatientSnapshot) { p.SpO2 = 88 },
			func(s models.ABCDEStatus) (string, string) { return s.Breathing, "CRITICAL" }},
		{"breathing low-normal", func(p *models.PatientSnapshot) { p.SpO2 = 91 },
			func(s models.ABCDEStatus) (string, string) { return s.Breathing, "LOW-NORMAL" }},
		{"circulation shock", func(p *models.PatientSnapshot) { p.SystolicBP = 85 },
			func(s models.ABCDEStatus) (string, string) { return s.Circulation, "SHOCK" }},
		{"circulation low-normal", func(p *models.PatientSnapshot) { p.SystolicBP = 95 },
			func(s models.ABCDEStatus) (string, string) { return s.Circulation, "LOW-NORMAL" }},
		{"circulation hypertensive", func(p *models.PatientSnapshot) { p.SystolicBP = 185 },
			func(s models.ABCDEStatus) (string, string) { return s.Circulation, "HYPERTENSIVE" }},
		{"disability unconscious", func(p *models.PatientSnapshot) { p.Consciousness = models.ConsciousnessUnconscious },
			func(s models.ABCDEStatus) (string, string) { return s.Disability, "UNCONSCIOUS" }},
		{"disability drowsy", func(p *models.PatientSnapshot) { p.Consciousness = models.ConsciousnessDrowsy },
			func(s models.ABCDEStatus) (string, string) { return s.Disability, "DROWSY" }},
		{"exposure hyperthermia", func(p *models.PatientSnapshot) { p.Temperature = 40.5 },
			func(s models.ABCDEStatus) (string, string) { return s.Exposure, "CRITICAL" }},
		{"exposure hypothermia", func(p *models.PatientSnapshot) { p.Temperature = 34.5 },
			func(s models.ABCDEStatus) (string, string) { return s.Exposure, "CRITICAL" }},
		{"exposure fever", func(p *models.PatientSnapshot) { p.Temperature = 38.5 },
			func(s models.ABCDEStatus) (string, string) { return s.Exposure, "FEVER" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := normalSnapshot()
			tc.mutate(&p)
			got, want := tc.check(ComputeABCDE(p))
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestComputeABCDESystemsIndependent(t *testing.T) {
	// A deranged value in one system must not change any other system.
	p := normalSnapshot()
	p.SpO2 = 85
	got := ComputeABCDE(p)
	if got.Breathing != "CRITICAL" {
		t.Fatalf("Breathing = %q, want CRITICAL", got.Breathing)
	}
	if got.Airway != "OPEN" || got.Circulation != "ADEQUATE" ||
		got.Disability != "ALERT" || got.Exposure != "NORMAL" {
		t.Errorf("other systems changed: %+v", got)
	}
}

func TestComputeABCDESameOnBothDecisionPaths(t *testing.T) {
	// The dashboard reflects raw vitals only. A red-flag case and a scored
	// case with identical vitals yield identical dashboards through the
	// engine.
	engine := NewEngine(nil, nil)

	p := normalSnapshot()
	p.SpO2 = 91
	scored, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("scored decide: %v", err)
	}

	p.Assessment = models.AssessmentCritical
	flagged, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("flagged decide: %v", err)
	}

	if scored.ABCDE != flagged.ABCDE {
		t.Errorf("dashboards differ: scored=%+v flagged=%+v", scored.ABCDE, flagged.ABCDE)
	}
}
