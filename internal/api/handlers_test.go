package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/schemebot/schemebot/internal/catalog"
	"github.com/schemebot/schemebot/internal/genai"
	"github.com/schemebot/schemebot/internal/models"
	"github.com/schemebot/schemebot/internal/recommend"
)

// stubClient implements genai.ClientInterface with canned per-field
// extractions.
type stubClient struct {
	values map[models.Field]string
}

func (s *stubClient) ClassifyIntent(ctx context.Context, req genai.IntentRequest) (models.Intent, error) {
	return models.IntentProvideInfo, nil
}

func (s *stubClient) ExtractField(ctx context.Context, history []models.Message, field models.Field, language string) (genai.Extraction, error) {
	return genai.Extraction{Value: s.values[field], Confidence: 0.95}, nil
}

func (s *stubClient) ValidateFallback(ctx context.Context, field models.Field, value, language string) (genai.Validation, error) {
	return genai.Validation{}, nil
}

func (s *stubClient) FreeFormAnswer(ctx context.Context, systemPrompt, message string, profile models.Profile) (string, error) {
	return "stub answer", nil
}

type stubStore struct {
	schemes []models.Scheme
}

func (s *stubStore) LoadSchemes(ctx context.Context) ([]models.Scheme, error) {
	return s.schemes, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	cat := catalog.Load(context.Background(), &stubStore{schemes: []models.Scheme{
		{ID: "national", Name: "National Scheme", NameHi: "राष्ट्रीय योजना"},
	}})
	client := &stubClient{values: map[models.Field]string{
		models.FieldName:   "Rahul",
		models.FieldGender: "male",
		models.FieldAge:    "30",
		models.FieldState:  "Madhya Pradesh",
	}}
	srv := NewServer(client, recommend.NewService(cat), opts...)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, wantStatus int) envelope {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d", resp.StatusCode, wantStatus)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func decodeResult(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Result, out); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

func createSession(t *testing.T, ts *httptest.Server, body any) sessionResponse {
	t.Helper()
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, ts.URL+"/sessions", body), http.StatusCreated)
	var session sessionResponse
	decodeResult(t, env, &session)
	return session
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	env := decodeEnvelope(t, doJSON(t, http.MethodGet, ts.URL+"/health", nil), http.StatusOK)
	if env.Status != "ok" || !strings.Contains(env.Message, "healthy") {
		t.Errorf("health envelope = %+v", env)
	}
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)
	if session.SessionID == "" {
		t.Error("expected a session ID")
	}
	if session.Language != "en" {
		t.Errorf("language = %q, want en", session.Language)
	}
	if !strings.Contains(session.Reply, "SchemeBot") || !strings.Contains(session.Reply, "Please tell me your name.") {
		t.Errorf("reply = %q, want opening greeting", session.Reply)
	}
	if session.State != models.StateCollectingInfo {
		t.Errorf("state = %s, want COLLECTING_INFO", session.State)
	}
}

func TestCreateSessionHindi(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, createSessionRequest{Language: "hi"})
	if session.Language != "hi" {
		t.Errorf("language = %q, want hi", session.Language)
	}
	if !strings.Contains(session.Reply, "कृपया मुझे अपना नाम बताएं।") {
		t.Errorf("reply = %q, want Hindi greeting question", session.Reply)
	}
}

func TestCreateSessionMalformedJSON(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/sessions", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	env := decodeEnvelope(t, resp, http.StatusBadRequest)
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
}

func TestPostMessage(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)

	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: "My name is Rahul"}), http.StatusOK)
	var msg messageResponse
	decodeResult(t, env, &msg)
	if !strings.Contains(msg.Reply, "Are you male, female, or other?") {
		t.Errorf("reply = %q, want gender question", msg.Reply)
	}
	if msg.ProfileComplete {
		t.Error("profile should not be complete after one field")
	}
}

func TestPostMessageEmpty(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)

	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{}), http.StatusBadRequest)
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
}

func TestPostMessageUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	url := ts.URL + "/sessions/does-not-exist/messages"
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: "hi"}), http.StatusNotFound)
	if !strings.Contains(env.Message, "not found") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestPostMessageDetectsLanguage(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)

	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: "mera naam Rahul hai"}), http.StatusOK)
	var msg messageResponse
	decodeResult(t, env, &msg)
	if msg.Language != "hi" {
		t.Errorf("language = %q, want hi via detection", msg.Language)
	}
}

func TestConversationThroughRecommendations(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)
	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)

	var msg messageResponse
	for _, message := range []string{"Rahul", "male", "30", "Madhya Pradesh"} {
		env := decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: message}), http.StatusOK)
		decodeResult(t, env, &msg)
	}
	if msg.State != models.StateCompleted {
		t.Fatalf("state = %s, want COMPLETED", msg.State)
	}
	if !msg.ProfileComplete {
		t.Error("profile should be complete")
	}

	recURL := fmt.Sprintf("%s/sessions/%s/recommendations", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodGet, recURL, nil), http.StatusOK)
	var recs recommendationsResponse
	decodeResult(t, env, &recs)
	if len(recs.Schemes) != 1 {
		t.Fatalf("schemes = %d, want 1", len(recs.Schemes))
	}
	if !strings.Contains(recs.Summary, "found 1 government schemes") {
		t.Errorf("summary = %q", recs.Summary)
	}
}

func TestProfileEndpoint(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)
	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)
	decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: "Rahul"}), http.StatusOK)

	profileURL := fmt.Sprintf("%s/sessions/%s/profile", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodGet, profileURL, nil), http.StatusOK)
	var profile profileResponse
	decodeResult(t, env, &profile)
	if profile.Complete {
		t.Error("profile should not be complete")
	}
	if profile.Profile.Name == nil || *profile.Profile.Name != "Rahul" {
		t.Errorf("profile name = %v, want Rahul", profile.Profile.Name)
	}
}

func TestResetSession(t *testing.T) {
	ts := newTestServer(t)
	session := createSession(t, ts, nil)
	url := fmt.Sprintf("%s/sessions/%s/messages", ts.URL, session.SessionID)
	decodeEnvelope(t, doJSON(t, http.MethodPost, url, postMessageRequest{Message: "Rahul"}), http.StatusOK)

	resetURL := fmt.Sprintf("%s/sessions/%s/reset", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodPost, resetURL, nil), http.StatusOK)
	var reset sessionResponse
	decodeResult(t, env, &reset)
	if reset.State != models.StateCollectingInfo {
		t.Errorf("state = %s, want COLLECTING_INFO", reset.State)
	}
	if !strings.Contains(reset.Reply, "Please tell me your name.") {
		t.Errorf("reply = %q, want fresh greeting", reset.Reply)
	}

	profileURL := fmt.Sprintf("%s/sessions/%s/profile", ts.URL, session.SessionID)
	env = decodeEnvelope(t, doJSON(t, http.MethodGet, profileURL, nil), http.StatusOK)
	var profile profileResponse
	decodeResult(t, env, &profile)
	if profile.Profile.Name != nil {
		t.Error("reset should clear the collected profile")
	}
}

func TestSchemeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	env := decodeEnvelope(t, doJSON(t, http.MethodGet, ts.URL+"/schemes/national", nil), http.StatusOK)
	var scheme models.Scheme
	decodeResult(t, env, &scheme)
	if scheme.Name != "National Scheme" {
		t.Errorf("name = %q, want National Scheme", scheme.Name)
	}

	env = decodeEnvelope(t, doJSON(t, http.MethodGet, ts.URL+"/schemes/national?lang=hi", nil), http.StatusOK)
	decodeResult(t, env, &scheme)
	if scheme.Name != "राष्ट्रीय योजना" {
		t.Errorf("localized name = %q, want राष्ट्रीय योजना", scheme.Name)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/schemes/unknown", nil)
	decodeEnvelope(t, resp, http.StatusNotFound)
}

func TestExpiredSessionReportedGone(t *testing.T) {
	ts := newTestServer(t, WithSessionTimeout(time.Nanosecond))
	session := createSession(t, ts, nil)
	time.Sleep(2 * time.Millisecond)

	profileURL := fmt.Sprintf("%s/sessions/%s/profile", ts.URL, session.SessionID)
	env := decodeEnvelope(t, doJSON(t, http.MethodGet, profileURL, nil), http.StatusGone)
	if !strings.Contains(env.Message, "expired") {
		t.Errorf("message = %q, want expiry notice", env.Message)
	}
}
