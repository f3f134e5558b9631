package triage

import (
	"fmt"
	"strings"

	"github.com/triagestack/triage-engine/internal/models"
)

// NarrativeSummary produces the single-sentence human-readable summary of a
// decision. With no findings it falls back to a fixed all-normal sentence;
// otherwise the first two findings are joined and the phrasing is selected
// by (priority, red flag). STABLE always uses a fixed monitoring sentence
// regardless of the findings text.
func NarrativeSummary(priority models.Priority, reasons []string, redFlag bool) string {
	if len(reasons) == 0 {
		return fmt.Sprintf("%s: All vital signs within normal limits. Continue standard care monitoring.", priority)
	}

	keyIssues := strings.Join(firstN(reasons, 2), ", ")

	switch priority {
	case models.PriorityCritical:
		if redFlag {
			return fmt.Sprintf("CRITICAL: %s. Immediate emergency response required.", keyIssues)
		}
		return fmt.Sprintf("CRITICAL: %s. Patient requires urgent hospital evaluation.", keyIssues)
	case models.PriorityModerate:
		return fmt.Sprintf("MODERATE: %s. Urgent hospital assessment needed within 30 minutes.", keyIssues)
	default:
		return "STABLE: Minor findings noted. Continue standard care with close monitoring."
	}
}

// ChatbotExplanation renders the conversational explanation for the same
// decision. Deterministic templates only; the text carries the same safety
// boundaries as every other output field.
func ChatbotExplanation(priority models.Priority, reasons []string, redFlag bool) string {
	if redFlag {
		return fmt.Sprintf("CRITICAL ALERT: %s. This patient needs immediate emergency care.",
			strings.Join(firstN(reasons, 2), " and "))
	}

	switch priority {
	case models.PriorityCritical:
		return fmt.Sprintf("CRITICAL: Based on %s, this patient needs emergency response immediately.",
			strings.Join(firstN(reasons, 3), ", "))
	case models.PriorityModerate:
		return fmt.Sprintf("MODERATE RISK: %s. Urgent hospital assessment needed within 30 minutes.",
			strings.Join(firstN(reasons, 2), " and "))
	default:
		return "STABLE: Patient appears stable. Continue standard monitoring and assessment."
	}
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
