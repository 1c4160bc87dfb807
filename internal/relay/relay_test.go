package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type capturedEmail struct {
	auth string
	body outboundEmail
}

func newFakeEmailAPI(t *testing.T, status int, reply string) (*httptest.Server, *capturedEmail) {
	t.Helper()
	captured := &capturedEmail{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
}

func newTestMailer(t *testing.T, apiURL string) *Mailer {
	t.Helper()
	mailer, err := NewMailer(Config{
		APIURL: apiURL,
		APIKey: "test-key",
		From:   "HallHub Emergency <alerts@hall.edu>",
		To:     []string{"supervisor@hall.edu"},
		Logger: zerolog.Nop(),
		NowFn:  fixedClock,
	})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	return mailer
}

func TestMailerSend(t *testing.T) {
	srv, captured := newFakeEmailAPI(t, http.StatusOK, `{"id":"msg-123"}`)
	mailer := newTestMailer(t, srv.URL)

	id, err := mailer.Send(context.Background(), Alert{
		StudentName: "Ahmed Rahman",
		RoomNumber:  "101",
		Floor:       "1",
		Message:     "Water leak in the bathroom.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "msg-123" {
		t.Fatalf("message id = %q", id)
	}
	if captured.auth != "Bearer test-key" {
		t.Fatalf("auth header = %q", captured.auth)
	}
	if captured.body.Subject != alertSubject {
		t.Fatalf("subject = %q", captured.body.Subject)
	}
	if len(captured.body.To) != 1 || captured.body.To[0] != "supervisor@hall.edu" {
		t.Fatalf("recipients = %v", captured.body.To)
	}
	for _, want := range []string{"Ahmed Rahman", "Room Number: 101", "Floor: 1", "Water leak", "Please take immediate action."} {
		if !strings.Contains(captured.body.Text, want) {
			t.Fatalf("body missing %q:\n%s", want, captured.body.Text)
		}
	}
}

func TestMailerUpstreamFailure(t *testing.T) {
	srv, _ := newFakeEmailAPI(t, http.StatusForbidden, `{"message":"invalid key"}`)
	mailer := newTestMailer(t, srv.URL)
	if _, err := mailer.Send(context.Background(), Alert{StudentName: "x", RoomNumber: "1", Floor: "1", Message: "y"}); err == nil {
		t.Fatalf("expected error on upstream failure")
	}
}

func TestMailerConfigValidation(t *testing.T) {
	if _, err := NewMailer(Config{To: []string{"a@b.c"}}); err == nil {
		t.Fatalf("missing API key accepted")
	}
	if _, err := NewMailer(Config{APIKey: "k"}); err == nil {
		t.Fatalf("missing recipients accepted")
	}
}

func TestEmergencyEndpoint(t *testing.T) {
	srv, _ := newFakeEmailAPI(t, http.StatusOK, `{"id":"msg-9"}`)
	app := NewApp(newTestMailer(t, srv.URL))

	req := httptest.NewRequest(http.MethodPost, "/emergency", strings.NewReader(
		`{"studentName":"Karim Hossain","roomNumber":"102","floor":"1","message":"Power outage in the corridor."}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Success   bool   `json:"success"`
		EmailSent bool   `json:"emailSent"`
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || !out.EmailSent || out.MessageID != "msg-9" {
		t.Fatalf("response = %+v", out)
	}
}

func TestEmergencyEndpointValidation(t *testing.T) {
	srv, _ := newFakeEmailAPI(t, http.StatusOK, `{"id":"msg-9"}`)
	app := NewApp(newTestMailer(t, srv.URL))

	req := httptest.NewRequest(http.MethodPost, "/emergency", strings.NewReader(`{"studentName":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEmergencyEndpointUpstreamError(t *testing.T) {
	srv, _ := newFakeEmailAPI(t, http.StatusBadGateway, `oops`)
	app := NewApp(newTestMailer(t, srv.URL))

	req := httptest.NewRequest(http.MethodPost, "/emergency", strings.NewReader(
		`{"studentName":"a","roomNumber":"1","floor":"1","message":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var out struct {
		Success   bool `json:"success"`
		EmailSent bool `json:"emailSent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Success || out.EmailSent {
		t.Fatalf("response = %+v", out)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newFakeEmailAPI(t, http.StatusOK, `{"id":"x"}`)
	app := NewApp(newTestMailer(t, srv.URL))

	req := httptest.NewRequest(http.MethodOptions, "/emergency", nil)
	req.Header.Set("Origin", "https://hall.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}
