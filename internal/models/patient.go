package models

import (
	"fmt"
	"strings"
)

// Consciousness enumerates the recognised consciousness levels. Values
// outside this set are a data-quality error and are rejected at the
// boundary; the engine never sees them.
type Consciousness string

const (
	ConsciousnessAlert        Consciousness = "alert"
	ConsciousnessConfused     Consciousness = "confused"
	ConsciousnessDrowsy       Consciousness = "drowsy"
	ConsciousnessUnconscious  Consciousness = "unconscious"
	ConsciousnessUnresponsive Consciousness = "unresponsive"
)

// Assessment enumerates the recognised provider assessment levels.
type Assessment string

const (
	AssessmentNone     Assessment = "none"
	AssessmentModerate Assessment = "moderate"
	AssessmentCritical Assessment = "critical"
)

// UnrecognizedEnumError reports a field value outside its closed enum set.
type UnrecognizedEnumError struct {
	Field string
	Value string
}

func (e *UnrecognizedEnumError) Error() string {
	return fmt.Sprintf("unrecognized %s value %q", e.Field, e.Value)
}

// ParseConsciousness normalises case and whitespace and validates the value
// against the closed consciousness set.
func ParseConsciousness(value string) (Consciousness, error) {
	switch c := Consciousness(strings.ToLower(strings.TrimSpace(value))); c {
	case ConsciousnessAlert, ConsciousnessConfused, ConsciousnessDrowsy,
		ConsciousnessUnconscious, ConsciousnessUnresponsive:
		return c, nil
	}
	return "", &UnrecognizedEnumError{Field: "consciousness", Value: value}
}

// ParseAssessment normalises case and whitespace and validates the value
// against the closed assessment set.
func ParseAssessment(value string) (Assessment, error) {
	switch a := Assessment(strings.ToLower(strings.TrimSpace(value))); a {
	case AssessmentNone, AssessmentModerate, AssessmentCritical:
		return a, nil
	}
	return "", &UnrecognizedEnumError{Field: "doctor_assessment", Value: value}
}

// PatientSnapshot is one immutable point-in-time view of a patient. It is
// constructed and validated by the caller; the engine assumes well-typed,
// in-range fields and does not re-check numeric bounds.
type PatientSnapshot struct {
	Age           int           `json:"age"`
	HeartRate     int           `json:"heart_rate"`
	SystolicBP    int           `json:"systolic_bp"`
	SpO2          float64       `json:"spo2"`
	Temperature   float64       `json:"temperature"`
	Consciousness Consciousness `json:"consciousness"`
	Assessment    Assessment    `json:"doctor_assessment"`
}
