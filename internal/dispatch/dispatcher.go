package dispatch

import (
	"context"
	"log/slog"

	"github.com/triagestack/triage-engine/internal/metrics"
	"github.com/triagestack/triage-engine/internal/models"
)

// Result reports the outcome of one delivery attempt. Detail holds the
// provider SID on success or the failure text otherwise.
type Result struct {
	Method string `json:"method"`
	Sent   bool   `json:"sent"`
	Detail string `json:"detail,omitempty"`
}

// Status reports the dispatcher configuration for the alerts status API.
// Phone numbers are reported as configured/missing, never echoed back.
type Status struct {
	TwilioConfigured bool   `json:"twilio_configured"`
	EmergencyContact string `json:"emergency_contact"`
	ContactName      string `json:"contact_name"`
	VoiceFallback    bool   `json:"voice_fallback"`
	KafkaEnabled     bool   `json:"kafka_enabled"`
}

// Dispatcher sends emergency alerts for critical triage decisions through
// every configured sink. Sinks are independent: one failing does not stop
// the others, and nothing is retried.
type Dispatcher struct {
	logger        *slog.Logger
	twilio        *TwilioClient
	kafka         *KafkaPublisher
	contact       string
	contactName   string
	voiceFallback bool
}

// NewDispatcher wires the configured sinks. Either client may be nil.
func NewDispatcher(logger *slog.Logger, twilio *TwilioClient, kafka *KafkaPublisher, contact, contactName string, voiceFallback bool) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:        logger,
		twilio:        twilio,
		kafka:         kafka,
		contact:       contact,
		contactName:   contactName,
		voiceFallback: voiceFallback,
	}
}

// Dispatch sends the alert through every configured sink and reports the
// per-sink outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, record models.DecisionRecord) []Result {
	var results []Result
	message := FormatSOSMessage(record)

	if d.twilio != nil && d.twilio.Configured() {
		results = append(results, d.sendTelephony(ctx, record, message))
	}

	if d.kafka != nil {
		res := Result{Method: "kafka"}
		if err := d.kafka.Publish(ctx, record); err != nil {
			res.Detail = err.Error()
			d.logger.Warn("kafka alert failed",
				slog.String("decision_id", record.ID), slog.Any("error", err))
		} else {
			res.Sent = true
		}
		metrics.ObserveAlert("kafka", res.Sent)
		results = append(results, res)
	}

	return results
}

// sendTelephony tries SMS first, then falls back to a voice call when
// enabled. SMS can fail while cellular voice still works, so the fallback
// covers degraded networks.
func (d *Dispatcher) sendTelephony(ctx context.Context, record models.DecisionRecord, message string) Result {
	if !ValidatePhoneNumber(d.contact) {
		res := Result{Method: "sms", Detail: "emergency contact is not a valid E.164 number"}
		metrics.ObserveAlert("sms", false)
		d.logger.Warn("telephony alert skipped", slog.String("detail", res.Detail))
		return res
	}

	sid, err := d.twilio.SendSMS(ctx, d.contact, message)
	if err == nil {
		metrics.ObserveAlert("sms", true)
		return Result{Method: "sms", Sent: true, Detail: sid}
	}
	metrics.ObserveAlert("sms", false)
	d.logger.Warn("sms alert failed",
		slog.String("decision_id", record.ID), slog.Any("error", err))

	if !d.voiceFallback || !d.twilio.CanPlaceCalls() {
		return Result{Method: "sms", Detail: err.Error()}
	}

	sid, callErr := d.twilio.SendVoiceCall(ctx, d.contact, record.Decision.Priority)
	if callErr != nil {
		metrics.ObserveAlert("voice", false)
		d.logger.Warn("voice fallback failed",
			slog.String("decision_id", record.ID), slog.Any("error", callErr))
		return Result{Method: "voice", Detail: callErr.Error()}
	}
	metrics.ObserveAlert("voice", true)
	return Result{Method: "voice", Sent: true, Detail: sid}
}

// Status returns the current sink configuration.
func (d *Dispatcher) Status() Status {
	status := Status{
		ContactName:      d.contactName,
		VoiceFallback:    d.voiceFallback,
		KafkaEnabled:     d.kafka != nil,
		EmergencyContact: "missing",
	}
	if d.twilio != nil && d.twilio.Configured() {
		status.TwilioConfigured = true
	}
	if d.contact != "" {
		status.EmergencyContact = "configured"
	}
	return status
}
