package triage

import "github.com/triagestack/triage-engine/internal/models"

// Recommended actions, one fixed constant per outcome. These are the only
// action texts the engine can emit; all of them must pass the safety scan.
const (
	ActionRedFlag  = "Patient requires immediate emergency response and hospital evaluation. Healthcare provider will assess and determine appropriate interventions."
	ActionCritical = "Patient requires urgent hospital evaluation. Healthcare provider will assess and determine appropriate interventions."
	ActionModerate = "Patient should be evaluated in hospital setting within 30 minutes. Clinical team will determine appropriate care pathway."
	ActionStable   = "Patient appears stable at this time. Continue with standard care assessment and monitoring. Reassess if changes are observed."
)

// Classification thresholds: inclusive lower bounds, checked highest first.
const (
	criticalThreshold = 7
	moderateThreshold = 4
)

// ClassifyScore maps a final severity score to its priority tier and fixed
// recommended action.
func ClassifyScore(score int) (models.Priority, string) {
	switch {
	case score >= criticalThreshold:
		return models.PriorityCritical, ActionCritical
	case score >= moderateThreshold:
		return models.PriorityModerate, ActionModerate
	default:
		return models.PriorityStable, ActionStable
	}
}

var priorityColors = map[models.Priority]models.PriorityColor{
	models.PriorityCritical: {Hex: "#FF0000", RGB: "rgb(255, 0, 0)", TextColor: "#FFFFFF", Label: "CRITICAL"},
	models.PriorityModerate: {Hex: "#FFA500", RGB: "rgb(255, 165, 0)", TextColor: "#000000", Label: "MODERATE"},
	models.PriorityStable:   {Hex: "#00CC00", RGB: "rgb(0, 204, 0)", TextColor: "#000000", Label: "STABLE"},
}

// ColorFor returns the display colour for a priority, defaulting to the
// STABLE entry for anything unrecognised.
func ColorFor(priority models.Priority) models.PriorityColor {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return priorityColors[models.PriorityStable]
}
