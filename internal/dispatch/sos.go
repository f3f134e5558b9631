// Package dispatch turns critical triage decisions into outbound emergency
// alerts. Sinks are independent and never retried here: re-dispatch policy
// belongs to the caller.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/triagestack/triage-engine/internal/models"
)

// maxAlertFindings bounds the clinical findings quoted in an alert; SMS
// length is limited and the first findings are the highest-salience ones.
const maxAlertFindings = 3

// FormatSOSMessage renders the outbound emergency alert for a decision.
// Alert text is always plain English regardless of any display locale:
// emergency information must not be ambiguous across languages.
func FormatSOSMessage(record models.DecisionRecord) string {
	d := record.Decision

	lines := []string{
		"EMERGENCY ALERT - MEDICAL TRIAGE",
		fmt.Sprintf("Priority: %s (Score: %d/10)", d.Priority, d.Score),
		"",
	}

	if len(d.Reasons) > 0 {
		lines = append(lines, "Clinical Findings:")
		reasons := d.Reasons
		if len(reasons) > maxAlertFindings {
			reasons = reasons[:maxAlertFindings]
		}
		for _, reason := range reasons {
			lines = append(lines, "- "+reason)
		}
	}

	lines = append(lines,
		"",
		"Immediate assistance required.",
		"Alert sent by Emergency Triage System",
	)

	return strings.Join(lines, "\n")
}

// ValidatePhoneNumber checks for E.164 shape: a leading plus followed by
// 10 to 14 digits, tolerating spaces and dashes.
func ValidatePhoneNumber(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	if !strings.HasPrefix(cleaned, "+") {
		return false
	}
	if len(cleaned) < 11 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
