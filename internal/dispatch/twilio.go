package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/utils"
)

// TwilioConfig holds credentials and sender identity for the telephony
// sink. Either FromPhone or MessagingServiceSID must be set for SMS; voice
// calls require FromPhone.
type TwilioConfig struct {
	AccountSID          string
	AuthToken           string
	FromPhone           string
	MessagingServiceSID string
	BaseURL             string
	Timeout             time.Duration
}

// TwilioClient talks to the Twilio REST API for SMS and voice alerts.
type TwilioClient struct {
	cfg        TwilioConfig
	httpClient *http.Client
}

// NewTwilioClient constructs a client for the configured account. BaseURL
// is overridable for tests.
func NewTwilioClient(cfg TwilioConfig) *TwilioClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &TwilioClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether credentials and a sender identity are present.
func (c *TwilioClient) Configured() bool {
	return c.cfg.AccountSID != "" && c.cfg.AuthToken != "" &&
		(c.cfg.FromPhone != "" || c.cfg.MessagingServiceSID != "")
}

// CanPlaceCalls reports whether the voice fallback is usable; calls need a
// concrete sender number, not a messaging service.
func (c *TwilioClient) CanPlaceCalls() bool {
	return c.Configured() && c.cfg.FromPhone != ""
}

// SendSMS posts one alert message and returns the provider message SID.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	if c.cfg.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", c.cfg.MessagingServiceSID)
	} else {
		form.Set("From", c.cfg.FromPhone)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	return c.postForm(ctx, endpoint, form)
}

// SendVoiceCall places a short voice alert naming the priority and pointing
// the listener at the SMS for details.
func (c *TwilioClient) SendVoiceCall(ctx context.Context, to string, priority models.Priority) (string, error) {
	if c.cfg.FromPhone == "" {
		return "", utils.NewAppError("twilio.call", "voice calls require a from phone number", nil)
	}

	twiml := fmt.Sprintf(
		`<Response><Say voice="alice">Emergency alert from the medical triage system. Priority level: %s. Immediate assistance required. Check SMS for full clinical details.</Say></Response>`,
		priority,
	)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromPhone)
	form.Set("Twiml", twiml)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.cfg.BaseURL, c.cfg.AccountSID)
	return c.postForm(ctx, endpoint, form)
}

func (c *TwilioClient) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", utils.NewAppError("twilio.request",
			fmt.Sprintf("rejected with status %d", resp.StatusCode),
			errors.New(strings.TrimSpace(string(body))))
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}
	return payload.SID, nil
}
