// Package services coordinates the triage engine with persistence,
// alert dispatch, and latency accounting.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/triagestack/triage-engine/internal/dispatch"
	"github.com/triagestack/triage-engine/internal/metrics"
	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/triage"
	"github.com/triagestack/triage-engine/internal/utils"
)

// DecisionStore persists and retrieves audit records.
type DecisionStore interface {
	SaveDecision(ctx context.Context, record models.DecisionRecord) error
	GetDecision(ctx context.Context, id string) (models.DecisionRecord, error)
	ListDecisions(ctx context.Context, req models.ListDecisionsRequest) (models.ListDecisionsResponse, error)
}

// AlertDispatcher fans a critical decision out to the configured channels.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, record models.DecisionRecord) []dispatch.Result
}

// TriageService runs triage decisions end to end: engine evaluation,
// audit persistence, and emergency alerting for critical outcomes.
type TriageService struct {
	logger     *slog.Logger
	engine     *triage.Engine
	store      DecisionStore
	dispatcher AlertDispatcher
	latencies  *utils.LatencyTracker
}

// NewTriageService wires the service. Store and dispatcher may be nil;
// triage then runs without audit persistence or alerting.
func NewTriageService(logger *slog.Logger, engine *triage.Engine, store DecisionStore, dispatcher AlertDispatcher) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriageService{
		logger:     logger,
		engine:     engine,
		store:      store,
		dispatcher: dispatcher,
		latencies:  utils.NewLatencyTracker(512),
	}
}

// Triage evaluates one snapshot and returns the stored audit record.
// A safety violation aborts the request; nothing is persisted or
// dispatched in that case.
func (s *TriageService) Triage(ctx context.Context, snapshot models.PatientSnapshot) (models.DecisionRecord, error) {
	start := time.Now()

	decision, err := s.engine.Decide(snapshot)
	if err != nil {
		var violation *triage.SafetyViolationError
		if errors.As(err, &violation) {
			metrics.ObserveSafetyViolation()
			s.logger.Error("safety gate rejected decision output",
				slog.String("phrase", violation.Phrase))
		}
		return models.DecisionRecord{}, fmt.Errorf("triage decision: %w", err)
	}

	record := models.NewDecisionRecord(snapshot, decision)

	elapsed := time.Since(start)
	s.latencies.Observe(elapsed)
	metrics.ObserveDecision(elapsed, string(decision.Priority), decision.RedFlagsDetected)

	if s.store != nil {
		if err := s.store.SaveDecision(ctx, record); err != nil {
			s.logger.Warn("failed to persist decision record",
				slog.String("decision_id", record.ID), slog.Any("error", err))
		}
	}

	s.logger.Info("triage decision made",
		slog.String("decision_id", record.ID),
		slog.String("priority", string(decision.Priority)),
		slog.Int("score", decision.Score),
		slog.Bool("red_flags", decision.RedFlagsDetected),
		slog.Duration("elapsed", elapsed))

	if decision.Priority == models.PriorityCritical && s.dispatcher != nil {
		results := s.dispatcher.Dispatch(ctx, record)
		for _, res := range results {
			if res.Sent {
				s.logger.Info("emergency alert sent",
					slog.String("decision_id", record.ID),
					slog.String("method", res.Method),
					slog.String("detail", res.Detail))
			} else {
				s.logger.Warn("emergency alert failed",
					slog.String("decision_id", record.ID),
					slog.String("method", res.Method),
					slog.String("detail", res.Detail))
			}
		}
	}

	if count := s.latencies.Count(); count > 0 && count%20 == 0 {
		s.logger.Info("triage latency",
			slog.Int("samples", count),
			slog.Duration("p95", s.latencies.Percentile(95)))
	}

	return record, nil
}

// GetDecision returns one audit record by id.
func (s *TriageService) GetDecision(ctx context.Context, id string) (models.DecisionRecord, error) {
	if s.store == nil {
		return models.DecisionRecord{}, errors.New("decision store not configured")
	}
	return s.store.GetDecision(ctx, id)
}

// ListDecisions returns a page of audit records, newest first.
func (s *TriageService) ListDecisions(ctx context.Context, req models.ListDecisionsRequest) (models.ListDecisionsResponse, error) {
	if s.store == nil {
		return models.ListDecisionsResponse{}, errors.New("decision store not configured")
	}
	return s.store.ListDecisions(ctx, req)
}

// LatencyP95 reports the 95th percentile decision latency.
func (s *TriageService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}
