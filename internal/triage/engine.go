package triage

import (
	"fmt"
	"log/slog"

	"github.com/triagestack/triage-engine/internal/models"
)

// maxScore is the nominal top of the severity scale. The severity layer can
// reach 11 and the provider override adds 2 more; the final score clamps
// here, with the raw total preserved in the decision pathway.
const maxScore = 10

// Engine sequences red-flag detection, severity scoring, classification,
// and presentation into one decision per snapshot. It holds no mutable
// state, so a single Engine is safe for concurrent use and every call is an
// independent, deterministic evaluation.
type Engine struct {
	logger    *slog.Logger
	validator *SafetyValidator
}

// NewEngine constructs a decision engine. A nil validator gets the built-in
// forbidden phrase list; the safety gate is not optional.
func NewEngine(logger *slog.Logger, validator *SafetyValidator) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = NewSafetyValidator(nil)
	}
	return &Engine{logger: logger, validator: validator}
}

// Decide evaluates one patient snapshot. Red flags short-circuit to
// CRITICAL with a fixed score of 10 and the red-flag list as the only
// reasons; otherwise the severity score plus provider override is
// classified by threshold. The ABCDE dashboard, narrative, explanation,
// and colour are produced on both paths, and every free-text field passes
// the safety gate before the decision leaves the engine.
func (e *Engine) Decide(snapshot models.PatientSnapshot) (models.TriageDecision, error) {
	abcde := ComputeABCDE(snapshot)

	if flags := DetectRedFlags(snapshot); len(flags) > 0 {
		decision := models.TriageDecision{
			Priority:           models.PriorityCritical,
			Score:              maxScore,
			Reasons:            flags,
			RecommendedAction:  ActionRedFlag,
			RedFlagsDetected:   true,
			ABCDE:              abcde,
			NarrativeSummary:   NarrativeSummary(models.PriorityCritical, flags, true),
			ChatbotExplanation: ChatbotExplanation(models.PriorityCritical, flags, true),
			Color:              ColorFor(models.PriorityCritical),
			DecisionPathway:    fmt.Sprintf("RED FLAG DETECTED (%d) -> CRITICAL (scored 10/10, no further evaluation)", len(flags)),
		}
		return e.gate(decision)
	}

	raw, reasons := ScoreSeverity(snapshot)
	raw, reasons = ApplyProviderOverride(snapshot, raw, reasons)
	if reasons == nil {
		// Reasons serializes as a list on every path, never null.
		reasons = []string{}
	}

	score := raw
	if score > maxScore {
		score = maxScore
	}
	priority, action := ClassifyScore(score)

	pathway := fmt.Sprintf("NO RED FLAGS -> SCORE %d/10 -> %s PRIORITY", score, priority)
	if raw > maxScore {
		pathway = fmt.Sprintf("NO RED FLAGS -> RAW SCORE %d CLAMPED TO %d/10 -> %s PRIORITY", raw, score, priority)
	}

	decision := models.TriageDecision{
		Priority:           priority,
		Score:              score,
		Reasons:            reasons,
		RecommendedAction:  action,
		RedFlagsDetected:   false,
		ABCDE:              abcde,
		NarrativeSummary:   NarrativeSummary(priority, reasons, false),
		ChatbotExplanation: ChatbotExplanation(priority, reasons, false),
		Color:              ColorFor(priority),
		DecisionPathway:    pathway,
	}
	return e.gate(decision)
}

// gate runs the safety validator over every free-text field before the
// decision can leave the engine. A violation is a contract failure: the
// decision is withheld and the error propagated.
func (e *Engine) gate(decision models.TriageDecision) (models.TriageDecision, error) {
	for _, text := range []string{
		decision.RecommendedAction,
		decision.NarrativeSummary,
		decision.ChatbotExplanation,
	} {
		if err := e.validator.Validate(text); err != nil {
			e.logger.Error("generated triage output failed safety scan",
				slog.String("priority", string(decision.Priority)),
				slog.Any("error", err))
			return models.TriageDecision{}, err
		}
	}
	return decision, nil
}
