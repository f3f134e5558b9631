package models

import (
	"errors"
	"testing"
)

func TestParseConsciousness(t *testing.T) {
	cases := []struct {
		input string
		want  Consciousness
	}{
		{"alert", ConsciousnessAlert},
		{"  Drowsy ", ConsciousnessDrowsy},
		{"UNCONSCIOUS", ConsciousnessUnconscious},
		{"confused", ConsciousnessConfused},
		{"unresponsive", ConsciousnessUnresponsive},
	}
	for _, tc := range cases {
		got, err := ParseConsciousness(tc.input)
		if err != nil {
			t.Fatalf("ParseConsciousness(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseConsciousness(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseConsciousnessRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "sleepy", "semi-conscious"} {
		_, err := ParseConsciousness(input)
		if err == nil {
			t.Fatalf("ParseConsciousness(%q) accepted an unknown value", input)
		}
		var enumErr *UnrecognizedEnumError
		if !errors.As(err, &enumErr) {
			t.Fatalf("ParseConsciousness(%q) error type = %T, want *UnrecognizedEnumError", input, err)
		}
		if enumErr.Field != "consciousness" {
			t.Errorf("error field = %q, want consciousness", enumErr.Field)
		}
	}
}

func TestParseAssessment(t *testing.T) {
	cases := []struct {
		input string
		want  Assessment
	}{
		{"none", AssessmentNone},
		{"Moderate", AssessmentModerate},
		{" critical ", AssessmentCritical},
	}
	for _, tc := range cases {
		got, err := ParseAssessment(tc.input)
		if err != nil {
			t.Fatalf("ParseAssessment(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseAssessment(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseAssessmentRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "severe", "mild", "critical!"} {
		_, err := ParseAssessment(input)
		if err == nil {
			t.Fatalf("ParseAssessment(%q) accepted an unknown value", input)
		}
		var enumErr *UnrecognizedEnumError
		if !errors.As(err, &enumErr) {
			t.Fatalf("ParseAssessment(%q) error type = %T, want *UnrecognizedEnumError", input, err)
		}
	}
}
