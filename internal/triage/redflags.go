// Package triage implements the two-layer triage decision engine: red-flag
// detection that bypasses scoring, and weighted severity scoring with a
// human-provider override. Every function here is a pure function of its
// inputs; the Engine orchestrator holds no mutable state.
package triage

import "github.com/triagestack/triage-engine/internal/models"

// Red-flag findings, in evaluation order. The order controls which flags
// appear first in the reasons list, which matters because the narrative only
// uses the first two.
const (
	reasonSpO2Critical     = "Oxygen saturation critically low (below 90%) - respiratory system severely compromised"
	reasonUnconscious      = "Patient is unconscious - unable to maintain airway protective reflexes"
	reasonShock            = "Blood pressure critically low (below 90 mmHg) - tissue perfusion compromised"
	reasonProviderCritical = "Clinical assessment by healthcare provider indicates critical level of concern"
)

// DetectRedFlags returns the life-threatening findings for a snapshot, in a
// fixed order. Any single flag is sufficient for the highest urgency tier,
// but all four checks always run so the audit trail lists every flag
// present, not just the first.
func DetectRedFlags(p models.PatientSnapshot) []string {
	var flags []string
	if p.SpO2 < 90 {
		flags = append(flags, reasonSpO2Critical)
	}
	if p.Consciousness == models.ConsciousnessUnconscious {
		flags = append(flags, reasonUnconscious)
	}
	if p.SystolicBP < 90 {
		flags = append(flags, reasonShock)
	}
	if p.Assessment == models.AssessmentCritical {
		flags = append(flags, reasonProviderCritical)
	}
	return flags
}
