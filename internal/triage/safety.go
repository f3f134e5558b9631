package triage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SafetyViolationError reports generated text that crossed into diagnostic
// or therapeutic language. It signals a template bug in the engine itself,
// never bad input, and must be surfaced rather than suppressed.
type SafetyViolationError struct {
	Phrase string
	Text   string
}

func (e *SafetyViolationError) Error() string {
	return fmt.Sprintf("safety violation: output contains %q, which crosses into diagnosis or treatment territory", e.Phrase)
}

// defaultForbiddenPhrases is the built-in scan list. The engine assesses
// urgency only; any of these appearing in generated text means a template
// has drifted into diagnosis, prescription, resource allocation, or
// prognosis.
func defaultForbiddenPhrases() []string {
	return []string{
		"patient has",
		"diagnosis",
		"disease",
		"condition of",
		"suffering from",
		"infected with",
		"contract",
		"prescribe",
		"medication",
		"drug",
		"antibiotic",
		"oxygen therapy",
		"icu",
		"discharge",
		"mortality",
		"will die",
		"will survive",
		"prognosis",
	}
}

// SafetyValidator scans generated text for forbidden vocabulary. The phrase
// set is injectable so it can be audited and extended independently of the
// scoring logic.
type SafetyValidator struct {
	phrases []string
}

// NewSafetyValidator builds a validator over the supplied phrases, falling
// back to the built-in list when none are usable.
func NewSafetyValidator(phrases []string) *SafetyValidator {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		cleaned = defaultForbiddenPhrases()
	}
	return &SafetyValidator{phrases: cleaned}
}

// safetyPackFile is the YAML root structure for a phrase pack.
type safetyPackFile struct {
	Phrases []string `yaml:"phrases"`
}

// LoadSafetyValidator reads a phrase pack from path. An empty path or a
// missing file yields the built-in list.
func LoadSafetyValidator(path string) (*SafetyValidator, error) {
	if path == "" {
		return NewSafetyValidator(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSafetyValidator(nil), nil
		}
		return nil, err
	}
	var pack safetyPackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse safety phrase pack: %w", err)
	}
	return NewSafetyValidator(pack.Phrases), nil
}

// Validate returns a SafetyViolationError when text contains any forbidden
// phrase, matched case-insensitively as a substring.
func (v *SafetyValidator) Validate(text string) error {
	lowered := strings.ToLower(text)
	for _, phrase := range v.phrases {
		if strings.Contains(lowered, phrase) {
			return &SafetyViolationError{Phrase: phrase, Text: text}
		}
	}
	return nil
}

// Phrases returns a copy of the active scan list, for status endpoints and
// audits.
func (v *SafetyValidator) Phrases() []string {
	return append([]string(nil), v.phrases...)
}
