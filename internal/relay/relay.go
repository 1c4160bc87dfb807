// Package relay forwards emergency alerts raised by residents to the hall
// supervisor's mailbox through an external email API. It is deployed as its
// own small process so that alerts keep flowing even while the main hall
// service is being restarted.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAPIURL = "https://api.resend.com/emails"
	defaultFrom   = "HallHub Emergency <alerts@hallhub.example>"

	alertSubject = "Hall Emergency Alert - Immediate Attention Required"
)

// Alert carries the resident-entered emergency details.
type Alert struct {
	StudentName string `json:"studentName" validate:"required,min=1,max=128"`
	RoomNumber  string `json:"roomNumber" validate:"required,max=16"`
	Floor       string `json:"floor" validate:"required,max=16"`
	Message     string `json:"message" validate:"required,min=1,max=4096"`
}

// Config holds the mailer's wiring.
type Config struct {
	APIURL string
	APIKey string
	From   string
	To     []string
	Client *http.Client
	Logger zerolog.Logger
	NowFn  func() time.Time
}

// Mailer sends alert emails through the configured API.
type Mailer struct {
	apiURL string
	apiKey string
	from   string
	to     []string
	client *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewMailer applies defaults and returns a ready mailer.
func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("relay: email API key required")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("relay: at least one recipient required")
	}
	m := &Mailer{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		to:     cfg.To,
		client: cfg.Client,
		logger: cfg.Logger,
		now:    cfg.NowFn,
	}
	if m.apiURL == "" {
		m.apiURL = defaultAPIURL
	}
	if m.from == "" {
		m.from = defaultFrom
	}
	if m.client == nil {
		m.client = &http.Client{Timeout: 10 * time.Second}
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// FromEnv builds a mailer from process environment.
//
//	RELAY_EMAIL_API_URL (default Resend)
//	RELAY_EMAIL_API_KEY (required)
//	RELAY_EMAIL_FROM (optional)
//	RELAY_EMAIL_TO (required, comma separated)
func FromEnv(logger zerolog.Logger) (*Mailer, error) {
	var to []string
	for _, addr := range strings.Split(os.Getenv("RELAY_EMAIL_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return NewMailer(Config{
		APIURL: os.Getenv("RELAY_EMAIL_API_URL"),
		APIKey: os.Getenv("RELAY_EMAIL_API_KEY"),
		From:   os.Getenv("RELAY_EMAIL_FROM"),
		To:     to,
		Logger: logger,
	})
}

type outboundEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Body renders the alert as the plain-text email body.
func (m *Mailer) Body(alert Alert) string {
	return fmt.Sprintf(`Emergency Alert from Student

Student Name: %s
Room Number: %s
Floor: %s
Message:
%s

Time: %s

Please take immediate action.`,
		alert.StudentName, alert.RoomNumber, alert.Floor, alert.Message,
		m.now().Format("Monday, January 2, 2006 3:04:05 PM MST"))
}

// Send delivers the alert and returns the provider's message id.
func (m *Mailer) Send(ctx context.Context, alert Alert) (string, error) {
	payload, err := json.Marshal(outboundEmail{
		From:    m.from,
		To:      m.to,
		Subject: alertSubject,
		Text:    m.Body(alert),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Error().Int("status", resp.StatusCode).Bytes("body", raw).Msg("email API rejected alert")
		return "", fmt.Errorf("relay: email API returned %d: %s", resp.StatusCode, raw)
	}
	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("relay: malformed email API response: %w", err)
	}
	m.logger.Info().Str("messageId", out.ID).Msg("emergency alert delivered")
	return out.ID, nil
}
