package trigger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kiln-agent/src/broker"
	"kiln-agent/src/logger"
	"kiln-agent/src/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	brk := broker.NewInMemoryBroker()
	t.Cleanup(func() { brk.Close() })
	runs := store.NewMemoryStore()
	return NewHandler(NewEvaluator("master", brk, runs, logger.NewSilentLogger()))
}

func postWebhook(h *Handler, eventType, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set(EventHeader, eventType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookSchedulesRun(t *testing.T) {
	h := newTestHandler(t)

	rec := postWebhook(h, "push", `{
		"ref": "refs/heads/master",
		"after": "abc123",
		"repository": {"full_name": "acme/widget"}
	}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if !resp.Scheduled || resp.RunID == "" {
		t.Errorf("Expected scheduled run, got %+v", resp)
	}
}

func TestWebhookIgnoresOtherBranches(t *testing.T) {
	h := newTestHandler(t)

	rec := postWebhook(h, "push", `{
		"ref": "refs/heads/feature-x",
		"after": "abc123",
		"repository": {"full_name": "acme/widget"}
	}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}

	var resp webhookResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Scheduled {
		t.Error("Feature branch push should not schedule a run")
	}
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	h := newTestHandler(t)

	rec := postWebhook(h, "issues", `{}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("Ignored events should return 202, got %d", rec.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	h := newTestHandler(t)

	rec := postWebhook(h, "push", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestWebhookRejectsGet(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
