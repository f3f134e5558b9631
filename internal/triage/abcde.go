package triage

import "github.com/triagestack/triage-engine/internal/models"

// ComputeABCDE builds the five-system status dashboard from raw vitals.
// Each cascade is ordered most dangerous label first, and every system is
// evaluated independently. The dashboard never feeds back into scoring:
// red-flag and scored cases with the same vitals produce the same result.
func ComputeABCDE(p models.PatientSnapshot) models.ABCDEStatus {
	var status models.ABCDEStatus

	if p.Consciousness == models.ConsciousnessUnconscious {
		status.Airway = "AT RISK"
	} else {
		status.Airway = "OPEN"
	}

	switch {
	case p.SpO2 < 90:
		status.Breathing = "CRITICAL"
	case p.SpO2 < 92:
		status.Breathing = "LOW-NORMAL"
	default:
		status.Breathing = "ADEQUATE"
	}

	switch {
	case p.SystolicBP < 90:
		status.Circulation = "SHOCK"
	case p.SystolicBP < 100:
		status.Circulation = "LOW-NORMAL"
	case p.SystolicBP > 180:
		status.Circulation = "HYPERTENSIVE"
	default:
		status.Circulation = "ADEQUATE"
	}

	switch p.Consciousness {
	case models.ConsciousnessUnconscious:
		status.Disability = "UNCONSCIOUS"
	case models.ConsciousnessDrowsy:
		status.Disability = "DROWSY"
	default:
		status.Disability = "ALERT"
	}

	switch {
	case p.Temperature > 40 || p.Temperature < 35:
		status.Exposure = "CRITICAL"
	case p.Temperature > 38:
		status.Exposure = "FEVER"
	default:
		status.Exposure = "NORMAL"
	}

	return status
}
