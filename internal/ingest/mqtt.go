// Package ingest subscribes to monitor vitals published over MQTT and
// routes each reading through the triage service.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/triagestack/triage-engine/internal/models"
)

// VitalsMessage is the monitor payload published on the vitals topic.
type VitalsMessage struct {
	PatientID        string  `json:"patientId"`
	Age              int     `json:"age"`
	HeartRate        int     `json:"heartRate"`
	SystolicBP       int     `json:"systolicBP"`
	SpO2             float64 `json:"spo2"`
	Temperature      float64 `json:"temperature"`
	Consciousness    string  `json:"consciousness"`
	DoctorAssessment string  `json:"doctorAssessment"`
}

// Triager is the slice of the triage service used by the subscriber.
type Triager interface {
	Triage(ctx context.Context, snapshot models.PatientSnapshot) (models.DecisionRecord, error)
}

// Options configure the MQTT subscription.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// DecodeVitals parses one monitor payload into a snapshot, rejecting
// malformed JSON and unrecognized enum values.
func DecodeVitals(payload []byte) (models.PatientSnapshot, string, error) {
	var msg VitalsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return models.PatientSnapshot{}, "", fmt.Errorf("decode vitals payload: %w", err)
	}

	consciousness, err := models.ParseConsciousness(msg.Consciousness)
	if err != nil {
		return models.PatientSnapshot{}, "", err
	}
	assessment, err := models.ParseAssessment(msg.DoctorAssessment)
	if err != nil {
		return models.PatientSnapshot{}, "", err
	}

	return models.PatientSnapshot{
		Age:           msg.Age,
		HeartRate:     msg.HeartRate,
		SystolicBP:    msg.SystolicBP,
		SpO2:          msg.SpO2,
		Temperature:   msg.Temperature,
		Consciousness: consciousness,
		Assessment:    assessment,
	}, msg.PatientID, nil
}

// NewMessageHandler decodes vitals payloads and routes them through the
// triage service. Malformed or out-of-domain payloads are dropped with a
// warn log; redelivery is the broker's concern.
func NewMessageHandler(logger *slog.Logger, svc Triager) mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		snapshot, patientID, err := DecodeVitals(msg.Payload())
		if err != nil {
			logger.Warn("dropping vitals message",
				slog.String("topic", msg.Topic()), slog.Any("error", err))
			return
		}

		record, err := svc.Triage(context.Background(), snapshot)
		if err != nil {
			logger.Error("triage of ingested vitals failed",
				slog.String("patient_id", patientID), slog.Any("error", err))
			return
		}

		logger.Info("ingested vitals triaged",
			slog.String("patient_id", patientID),
			slog.String("priority", string(record.Decision.Priority)),
			slog.Int("score", record.Decision.Score))
	}
}

// Connect dials the broker and subscribes to the vitals topic. The
// subscription is re-established inside OnConnect so it survives broker
// reconnects.
func Connect(opts Options, logger *slog.Logger, svc Triager) (mqtt.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	handler := NewMessageHandler(logger, svc)

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetUsername(opts.Username)
	clientOpts.SetPassword(opts.Password)
	clientOpts.OnConnect = func(client mqtt.Client) {
		logger.Info("connected to MQTT broker", slog.String("broker", opts.Broker))
		token := client.Subscribe(opts.Topic, 1, handler)
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Error("vitals topic subscribe failed",
				slog.String("topic", opts.Topic), slog.Any("error", err))
			return
		}
		logger.Info("subscribed to vitals topic", slog.String("topic", opts.Topic))
	}
	clientOpts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
