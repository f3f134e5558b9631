package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency tier assigned to a snapshot.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityModerate Priority = "MODERATE"
	PriorityStable   Priority = "STABLE"
)

// ParsePriority validates a priority value, e.g. from a query filter.
func ParsePriority(value string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(value))); p {
	case PriorityCritical, PriorityModerate, PriorityStable:
		return p, nil
	}
	return "", &UnrecognizedEnumError{Field: "priority", Value: value}
}

// PriorityColor carries the display colours for a priority tier.
type PriorityColor struct {
	Hex       string `json:"hex"`
	RGB       string `json:"rgb"`
	TextColor string `json:"text_color"`
	Label     string `json:"label"`
}

// ABCDEStatus is the airway/breathing/circulation/disability/exposure
// dashboard. It is derived from raw vitals only and is identical whichever
// decision path produced the surrounding decision.
type ABCDEStatus struct {
	Airway      string `json:"airway"`
	Breathing   string `json:"breathing"`
	Circulation string `json:"circulation"`
	Disability  string `json:"disability"`
	Exposure    string `json:"exposure"`
}

// TriageDecision is the complete, explainable outcome for one snapshot.
// It is built once and never mutated. When RedFlagsDetected is true the
// priority is CRITICAL, the score is 10, and Reasons holds the red-flag
// list exactly; otherwise the score is the severity plus override total
// and the priority follows the classifier thresholds alone.
type TriageDecision struct {
	Priority           Priority      `json:"priority"`
	Score              int           `json:"score"`
	Reasons            []string      `json:"reasons"`
	RecommendedAction  string        `json:"recommended_action"`
	RedFlagsDetected   bool          `json:"red_flags_detected"`
	ABCDE              ABCDEStatus   `json:"abcde_status"`
	NarrativeSummary   string        `json:"narrative_summary"`
	ChatbotExplanation string        `json:"chatbot_explanation"`
	Color              PriorityColor `json:"color"`
	DecisionPathway    string        `json:"decision_pathway"`
}

// DecisionRecord is a stored decision with identity and creation time.
// Identity lives here rather than on TriageDecision so the engine itself
// stays deterministic.
type DecisionRecord struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Snapshot  PatientSnapshot `json:"snapshot"`
	Decision  TriageDecision  `json:"decision"`
}

// NewDecisionRecord stamps identity and creation time onto a decision.
func NewDecisionRecord(snapshot PatientSnapshot, decision TriageDecision) DecisionRecord {
	return DecisionRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Snapshot:  snapshot,
		Decision:  decision,
	}
}

// ListDecisionsRequest filters the decision audit log. A zero Priority
// matches every tier.
type ListDecisionsRequest struct {
	Priority Priority
	Limit    int
	Offset   int
}

// ListDecisionsResponse holds one page of audit records plus the total
// match count for the filter.
type ListDecisionsResponse struct {
	Decisions []DecisionRecord `json:"decisions"`
	Total     int              `json:"total"`
}
