package triage

import "github.com/triagestack/triage-engine/internal/models"

// Severity weights. Each check is independent and additive; the summed
// layer maximum is 11 before the provider override.
const (
	weightLowNormalSpO2    = 2
	weightHeartRate        = 2
	weightBloodPressure    = 2
	weightDrowsy           = 3
	weightFever            = 1
	weightAge              = 1
	weightProviderModerate = 2
)

const (
	reasonLowNormalSpO2    = "Oxygen saturation in low-normal range (90-92%) - warrants close monitoring"
	reasonHeartRate        = "Heart rate abnormal: below 50 or above 120 bpm - indicates circulatory stress"
	reasonLowNormalBP      = "Blood pressure in low-normal range (80-90 mmHg) - marginal tissue perfusion"
	reasonHighBP           = "Blood pressure elevated above 180 mmHg - significant hypertension"
	reasonDrowsy           = "Patient is drowsy - reduced neurological responsiveness"
	reasonFever            = "Body temperature elevated above 38 degrees Celsius - fever present"
	reasonAge              = "Patient age over 60 years - increased baseline medical risk"
	reasonProviderModerate = "Healthcare provider assessment indicates moderate risk level"
)

// ScoreSeverity computes the additive severity score for a snapshot with no
// red flags. Each triggered check contributes its fixed weight and appends
// its finding; untriggered checks contribute nothing.
func ScoreSeverity(p models.PatientSnapshot) (int, []string) {
	score := 0
	var reasons []string

	if p.SpO2 >= 90 && p.SpO2 < 92 {
		score += weightLowNormalSpO2
		reasons = append(reasons, reasonLowNormalSpO2)
	}
	if p.HeartRate < 50 || p.HeartRate > 120 {
		score += weightHeartRate
		reasons = append(reasons, reasonHeartRate)
	}
	// The low-normal branch wins over the hypertensive branch: a single
	// reading can never contribute both.
	if p.SystolicBP >= 80 && p.SystolicBP < 90 {
		score += weightBloodPressure
		reasons = append(reasons, reasonLowNormalBP)
	} else if p.SystolicBP > 180 {
		score += weightBloodPressure
		reasons = append(reasons, reasonHighBP)
	}
	// Drowsy is the only consciousness value scored here. Confused and
	// unresponsive carry no weight at this layer, and unconscious never
	// reaches it.
	if p.Consciousness == models.ConsciousnessDrowsy {
		score += weightDrowsy
		reasons = append(reasons, reasonDrowsy)
	}
	if p.Temperature > 38.0 {
		score += weightFever
		reasons = append(reasons, reasonFever)
	}
	if p.Age > 60 {
		score += weightAge
		reasons = append(reasons, reasonAge)
	}

	return score, reasons
}

// ApplyProviderOverride escalates the computed score when the provider's
// assessment is moderate. Critical assessments never reach this layer: they
// are resolved as red flags, and this function must not re-check for them.
func ApplyProviderOverride(p models.PatientSnapshot, score int, reasons []string) (int, []string) {
	if p.Assessment == models.AssessmentModerate {
		score += weightProviderModerate
		reasons = append(reasons, reasonProviderModerate)
	}
	return score, reasons
}
