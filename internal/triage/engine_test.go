package triage

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/triagestack/triage-engine/internal/models"
)

func TestDecideRedFlagShortCircuits(t *testing.T) {
	engine := NewEngine(nil, nil)

	p := normalSnapshot()
	p.SpO2 = 88
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if decision.Priority != models.PriorityCritical {
		t.Errorf("priority = %q, want CRITICAL", decision.Priority)
	}
	if decision.Score != 10 {
		t.Errorf("score = %d, want 10", decision.Score)
	}
	if !decision.RedFlagsDetected {
		t.Error("RedFlagsDetected = false")
	}
	if decision.RecommendedAction != ActionRedFlag {
		t.Errorf("action = %q", decision.RecommendedAction)
	}
	if len(decision.Reasons) != 1 || !strings.Contains(decision.Reasons[0], "Oxygen saturation critically low") {
		t.Errorf("reasons = %v", decision.Reasons)
	}
	if !strings.Contains(decision.DecisionPathway, "RED FLAG DETECTED (1)") {
		t.Errorf("pathway = %q", decision.DecisionPathway)
	}
	if decision.Color.Hex != "#FF0000" {
		t.Errorf("colour = %q", decision.Color.Hex)
	}
}

func TestDecideRedFlagDominatesBenignScore(t *testing.T) {
	// Perfect vitals except one red flag must still land CRITICAL at 10.
	engine := NewEngine(nil, nil)

	p := normalSnapshot()
	p.Consciousness = models.ConsciousnessUnconscious
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityCritical || decision.Score != 10 {
		t.Fatalf("priority=%q score=%d, want CRITICAL/10", decision.Priority, decision.Score)
	}
	for _, reason := range decision.Reasons {
		if strings.Contains(reason, "normal") {
			t.Errorf("severity finding leaked into a red-flag decision: %q", reason)
		}
	}
}

func TestDecideScoredModerate(t *testing.T) {
	engine := NewEngine(nil, nil)

	// Drowsy (3) + provider moderate (2) = 5.
	p := normalSnapshot()
	p.Consciousness = models.ConsciousnessDrowsy
	p.Assessment = models.AssessmentModerate
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityModerate {
		t.Errorf("priority = %q, want MODERATE", decision.Priority)
	}
	if decision.Score != 5 {
		t.Errorf("score = %d, want 5", decision.Score)
	}
	if decision.RedFlagsDetected {
		t.Error("RedFlagsDetected = true on the scored path")
	}
	if decision.RecommendedAction != ActionModerate {
		t.Errorf("action = %q", decision.RecommendedAction)
	}
	if !strings.Contains(decision.DecisionPathway, "SCORE 5/10 -> MODERATE PRIORITY") {
		t.Errorf("pathway = %q", decision.DecisionPathway)
	}
}

func TestDecideScoredCritical(t *testing.T) {
	engine := NewEngine(nil, nil)

	// Low-normal spo2 (2) + tachycardia (2) + drowsy (3) = 7.
	p := normalSnapshot()
	p.SpO2 = 91
	p.HeartRate = 130
	p.Consciousness = models.ConsciousnessDrowsy
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityCritical || decision.Score != 7 {
		t.Fatalf("priority=%q score=%d, want CRITICAL/7", decision.Priority, decision.Score)
	}
	if decision.RecommendedAction != ActionCritical {
		t.Errorf("scored critical must use the non-red-flag action, got %q", decision.RecommendedAction)
	}
}

func TestDecideStableOnNormalVitals(t *testing.T) {
	engine := NewEngine(nil, nil)

	decision, err := engine.Decide(normalSnapshot())
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityStable || decision.Score != 0 {
		t.Fatalf("priority=%q score=%d, want STABLE/0", decision.Priority, decision.Score)
	}
	if len(decision.Reasons) != 0 {
		t.Errorf("reasons = %v, want none", decision.Reasons)
	}
	if !strings.Contains(decision.NarrativeSummary, "All vital signs within normal limits") {
		t.Errorf("summary = %q", decision.NarrativeSummary)
	}
}

func TestDecideElderlyHypotensiveTachycardic(t *testing.T) {
	// Age and heart rate would also score, but the low systolic pressure is
	// a red flag and must win outright.
	engine := NewEngine(nil, nil)

	p := models.PatientSnapshot{
		Age:           70,
		HeartRate:     130,
		SystolicBP:    85,
		SpO2:          96,
		Temperature:   37.0,
		Consciousness: models.ConsciousnessAlert,
		Assessment:    models.AssessmentNone,
	}
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityCritical || decision.Score != 10 {
		t.Fatalf("priority=%q score=%d, want CRITICAL/10", decision.Priority, decision.Score)
	}
	if !decision.RedFlagsDetected {
		t.Error("RedFlagsDetected = false")
	}
	if len(decision.Reasons) != 1 || !strings.Contains(decision.Reasons[0], "Blood pressure critically low") {
		t.Errorf("reasons = %v, want only the shock flag", decision.Reasons)
	}
}

func TestDecideElderlyFebrileDrowsy(t *testing.T) {
	// Drowsy (3) + fever (1) + age (1) = 5, mid-band MODERATE.
	engine := NewEngine(nil, nil)

	p := models.PatientSnapshot{
		Age:           65,
		HeartRate:     90,
		SystolicBP:    120,
		SpO2:          95,
		Temperature:   38.5,
		Consciousness: models.ConsciousnessDrowsy,
		Assessment:    models.AssessmentNone,
	}
	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Priority != models.PriorityModerate || decision.Score != 5 {
		t.Fatalf("priority=%q score=%d, want MODERATE/5", decision.Priority, decision.Score)
	}
	if decision.RedFlagsDetected {
		t.Error("RedFlagsDetected = true")
	}
	if len(decision.Reasons) != 3 {
		t.Errorf("reasons = %v, want drowsy, fever and age findings", decision.Reasons)
	}
}

func TestDecideClampsRawScore(t *testing.T) {
	engine := NewEngine(nil, nil)

	// Every severity check plus the provider override: raw 13.
	p := models.PatientSnapshot{
		Age:           70,
		HeartRate:     130,
		SystolicBP:    185,
		SpO2:          91,
		Temperature:   39,
		Consciousness: models.ConsciousnessDrowsy,
		Assessment:    models.AssessmentModerate,
	}
	if flags := DetectRedFlags(p); len(flags) != 0 {
		t.Fatalf("fixture unexpectedly red-flags: %v", flags)
	}

	decision, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Score != 10 {
		t.Errorf("score = %d, want clamp to 10", decision.Score)
	}
	if !strings.Contains(decision.DecisionPathway, "RAW SCORE 13 CLAMPED TO 10/10") {
		t.Errorf("pathway = %q, want the raw total preserved", decision.DecisionPathway)
	}
}

func TestDecideReasonsNeverNull(t *testing.T) {
	// An empty reasons list must serialize as [] so API consumers always
	// get a list.
	engine := NewEngine(nil, nil)

	decision, err := engine.Decide(normalSnapshot())
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Reasons == nil {
		t.Fatal("Reasons is nil on a findings-free decision")
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"reasons":[]`) {
		t.Errorf("payload = %s, want an empty reasons list", payload)
	}
}

func TestDecideDeterministic(t *testing.T) {
	engine := NewEngine(nil, nil)

	p := normalSnapshot()
	p.SpO2 = 91
	p.Assessment = models.AssessmentModerate

	first, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("first decide: %v", err)
	}
	second, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical snapshots diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDecideScoreMonotonicInHeartRate(t *testing.T) {
	engine := NewEngine(nil, nil)

	p := normalSnapshot()
	p.HeartRate = 100
	base, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("base decide: %v", err)
	}

	p.HeartRate = 130
	worse, err := engine.Decide(p)
	if err != nil {
		t.Fatalf("worse decide: %v", err)
	}

	if worse.Score < base.Score {
		t.Errorf("score fell from %d to %d as heart rate worsened", base.Score, worse.Score)
	}
}

func TestDecideWithheldOnSafetyViolation(t *testing.T) {
	// A phrase present in a fixed action text simulates template drift; the
	// gate must withhold the whole decision.
	engine := NewEngine(nil, NewSafetyValidator([]string{"standard care"}))

	decision, err := engine.Decide(normalSnapshot())
	if err == nil {
		t.Fatal("expected a safety violation")
	}
	var violation *SafetyViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("error type = %T, want *SafetyViolationError", err)
	}
	if violation.Phrase != "standard care" {
		t.Errorf("violation phrase = %q", violation.Phrase)
	}
	if !reflect.DeepEqual(decision, models.TriageDecision{}) {
		t.Errorf("withheld decision not zeroed: %+v", decision)
	}
}
