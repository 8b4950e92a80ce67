package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/schemebot/schemebot/internal/catalog"
	"github.com/schemebot/schemebot/internal/genai"
	"github.com/schemebot/schemebot/internal/models"
	"github.com/schemebot/schemebot/internal/recommend"
)

// stubClient implements genai.ClientInterface with pluggable behavior.
type stubClient struct {
	intent    models.Intent
	intentErr error
	extract   func(field models.Field) (genai.Extraction, error)
	validate  func(field models.Field, value string) (genai.Validation, error)
	answer    string
	answerErr error
}

func (s *stubClient) ClassifyIntent(ctx context.Context, req genai.IntentRequest) (models.Intent, error) {
	if s.intentErr != nil {
		return models.IntentOther, s.intentErr
	}
	return s.intent, nil
}

func (s *stubClient) ExtractField(ctx context.Context, history []models.Message, field models.Field, language string) (genai.Extraction, error) {
	if s.extract == nil {
		return genai.Extraction{}, nil
	}
	return s.extract(field)
}

func (s *stubClient) ValidateFallback(ctx context.Context, field models.Field, value, language string) (genai.Validation, error) {
	if s.validate == nil {
		return genai.Validation{}, nil
	}
	return s.validate(field, value)
}

func (s *stubClient) FreeFormAnswer(ctx context.Context, systemPrompt, message string, profile models.Profile) (string, error) {
	return s.answer, s.answerErr
}

// stubStore serves a fixed scheme list for catalog loading.
type stubStore struct {
	schemes []models.Scheme
}

func (s *stubStore) LoadSchemes(ctx context.Context) ([]models.Scheme, error) {
	return s.schemes, nil
}

// extractByField returns per-field canned extractions with high confidence.
func extractByField(values map[models.Field]string) func(models.Field) (genai.Extraction, error) {
	return func(field models.Field) (genai.Extraction, error) {
		return genai.Extraction{Value: values[field], Confidence: 0.95}, nil
	}
}

func newTestFlow(t *testing.T, client genai.ClientInterface, opts ...Option) *Flow {
	t.Helper()
	cat := catalog.Load(context.Background(), &stubStore{schemes: []models.Scheme{
		{ID: "national", Name: "National Scheme"},
	}})
	return NewFlow(client, recommend.NewService(cat), opts...)
}

func TestFlowHappyPath(t *testing.T) {
	client := &stubClient{
		intent: models.IntentProvideInfo,
		extract: extractByField(map[models.Field]string{
			models.FieldName:   "Rahul",
			models.FieldGender: "male",
			models.FieldAge:    "30",
			models.FieldState:  "Madhya Pradesh",
		}),
	}
	f := newTestFlow(t, client)
	ctx := context.Background()

	reply := f.ProcessUserMessage(ctx, "hello", "en")
	if !strings.Contains(reply, "SchemeBot") || !strings.Contains(reply, "Please tell me your name.") {
		t.Fatalf("greeting reply = %q", reply)
	}
	if f.State() != models.StateCollectingInfo {
		t.Fatalf("state = %s, want COLLECTING_INFO", f.State())
	}

	steps := []struct {
		message      string
		wantQuestion string
	}{
		{"My name is Rahul", "Are you male, female, or other?"},
		{"male", "What is your age?"},
		{"30", "Which state in India do you live in?"},
	}
	for _, step := range steps {
		reply = f.ProcessUserMessage(ctx, step.message, "en")
		if !strings.Contains(reply, step.wantQuestion) {
			t.Fatalf("after %q, reply = %q, want %q", step.message, reply, step.wantQuestion)
		}
	}

	reply = f.ProcessUserMessage(ctx, "Madhya Pradesh", "en")
	if !strings.Contains(reply, "Thank you for providing all the information!") {
		t.Fatalf("completion reply = %q", reply)
	}
	if f.State() != models.StateCompleted {
		t.Errorf("state = %s, want COMPLETED", f.State())
	}
	profile := f.Profile()
	if !profile.IsComplete() {
		t.Errorf("profile incomplete: %s", profile.String())
	}
	if len(f.Recommendations()) != 1 {
		t.Errorf("recommendations = %d, want 1", len(f.Recommendations()))
	}

	// The summary lands in the history after the thank-you line.
	history := f.History()
	last := history[len(history)-1]
	if !strings.Contains(last.Content, "found 1 government schemes") {
		t.Errorf("last history entry = %q, want recommendation summary", last.Content)
	}
}

func TestFlowLowConfidenceTriggersRetry(t *testing.T) {
	client := &stubClient{
		intent: models.IntentProvideInfo,
		extract: func(field models.Field) (genai.Extraction, error) {
			return genai.Extraction{Value: "Rahul", Confidence: 0.3}, nil
		},
	}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	reply := f.ProcessUserMessage(ctx, "mumble", "en")
	if !strings.Contains(reply, "trouble understanding your name") {
		t.Errorf("reply = %q, want name retry message", reply)
	}
	if f.Profile().Name != nil {
		t.Error("low-confidence value must not be applied")
	}
}

func TestFlowRetryExhaustionBestGuess(t *testing.T) {
	// Extraction is confident but the name never validates locally or via
	// the fallback; the raw text is accepted once retries run out.
	client := &stubClient{
		intent: models.IntentProvideInfo,
		extract: func(field models.Field) (genai.Extraction, error) {
			return genai.Extraction{Value: "zz9", Confidence: 0.9}, nil
		},
		validate: func(field models.Field, value string) (genai.Validation, error) {
			return genai.Validation{Valid: false}, nil
		},
	}
	f := newTestFlow(t, client, WithMaxRetries(1))
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	reply := f.ProcessUserMessage(ctx, "zz9", "en")
	if !strings.Contains(reply, "Are you male, female, or other?") {
		t.Fatalf("reply = %q, want move to gender question", reply)
	}
	if f.Profile().Name == nil || *f.Profile().Name != "zz9" {
		t.Errorf("profile name = %v, want best-guess zz9", f.Profile().Name)
	}
}

func TestFlowRetryExhaustionSkipsUncoercibleFields(t *testing.T) {
	// Nothing ever extracts: every field is skipped in turn and the flow
	// still reaches recommendations with an empty profile.
	client := &stubClient{
		intent: models.IntentProvideInfo,
		extract: func(field models.Field) (genai.Extraction, error) {
			return genai.Extraction{}, nil
		},
	}
	f := newTestFlow(t, client, WithMaxRetries(1))
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	var reply string
	for i := 0; i < len(models.RequiredFields); i++ {
		reply = f.ProcessUserMessage(ctx, "no idea", "en")
	}
	if !strings.Contains(reply, "found 1 government schemes") {
		t.Errorf("final reply = %q, want recommendation summary", reply)
	}
	if f.State() != models.StateCompleted {
		t.Errorf("state = %s, want COMPLETED", f.State())
	}
}

func TestFlowValidationFallbackNormalizes(t *testing.T) {
	client := &stubClient{
		intent: models.IntentProvideInfo,
		extract: extractByField(map[models.Field]string{
			models.FieldName:   "Rahul",
			models.FieldGender: "male",
			models.FieldAge:    "twenty five",
		}),
		validate: func(field models.Field, value string) (genai.Validation, error) {
			if field == models.FieldAge && value == "twenty five" {
				return genai.Validation{Valid: true, NormalizedValue: "25"}, nil
			}
			return genai.Validation{Valid: false}, nil
		},
	}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	f.ProcessUserMessage(ctx, "Rahul", "en")
	f.ProcessUserMessage(ctx, "male", "en")
	reply := f.ProcessUserMessage(ctx, "twenty five", "en")
	if !strings.Contains(reply, "Which state in India do you live in?") {
		t.Fatalf("reply = %q, want state question", reply)
	}
	if f.Profile().Age == nil || *f.Profile().Age != 25 {
		t.Errorf("profile age = %v, want 25 via fallback", f.Profile().Age)
	}
}

func TestFlowGreetingWordRestartsIntake(t *testing.T) {
	client := &stubClient{
		intent:  models.IntentProvideInfo,
		extract: extractByField(map[models.Field]string{models.FieldName: "Rahul"}),
	}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	f.ProcessUserMessage(ctx, "Rahul", "en")
	if f.Profile().Name == nil {
		t.Fatal("name should be collected before restart")
	}

	reply := f.ProcessUserMessage(ctx, "hi", "en")
	if !strings.Contains(reply, "Please tell me your name.") {
		t.Errorf("reply = %q, want fresh greeting", reply)
	}
	if f.Profile().Name != nil {
		t.Error("greeting must reset the collected profile")
	}
}

func TestFlowRequestRecommendationsIntent(t *testing.T) {
	client := &stubClient{intent: models.IntentRequestRecommendations}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	reply := f.ProcessUserMessage(ctx, "just show me schemes", "en")
	if !strings.Contains(reply, "found 1 government schemes") {
		t.Errorf("reply = %q, want recommendation summary", reply)
	}
	if f.State() != models.StateCompleted {
		t.Errorf("state = %s, want COMPLETED", f.State())
	}
}

func TestFlowCompletedStateRestartKeyword(t *testing.T) {
	client := &stubClient{intent: models.IntentOther}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	f.conv.SetState(models.StateCompleted)

	reply := f.ProcessUserMessage(ctx, "let's start over", "en")
	if !strings.Contains(reply, "Please tell me your name.") {
		t.Errorf("reply = %q, want fresh greeting", reply)
	}
	if f.State() != models.StateCollectingInfo {
		t.Errorf("state = %s, want COLLECTING_INFO", f.State())
	}
}

func TestFlowCompletedStateFreeFormAnswer(t *testing.T) {
	client := &stubClient{intent: models.IntentAskSpecificScheme, answer: "PM-KISAN pays Rs. 6,000 a year."}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	f.conv.SetState(models.StateCompleted)

	reply := f.ProcessUserMessage(ctx, "tell me about PM-KISAN", "en")
	if reply != "PM-KISAN pays Rs. 6,000 a year." {
		t.Errorf("reply = %q, want model answer", reply)
	}
}

func TestFlowCompletedStateAnswerErrorFallsBack(t *testing.T) {
	client := &stubClient{intent: models.IntentAskSpecificScheme, answerErr: errors.New("model unavailable")}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	f.conv.SetState(models.StateCompleted)

	reply := f.ProcessUserMessage(ctx, "tell me more", "en")
	if !strings.Contains(reply, "try rephrasing") {
		t.Errorf("reply = %q, want fixed error message", reply)
	}
}

func TestFlowClassifierErrorFallsBackToState(t *testing.T) {
	client := &stubClient{
		intentErr: errors.New("classifier down"),
		extract:   extractByField(map[models.Field]string{models.FieldName: "Rahul"}),
	}
	f := newTestFlow(t, client)
	ctx := context.Background()

	f.ProcessUserMessage(ctx, "hello", "en")
	reply := f.ProcessUserMessage(ctx, "Rahul", "en")
	if !strings.Contains(reply, "Are you male, female, or other?") {
		t.Errorf("reply = %q, want state-based dispatch to collection", reply)
	}
}

func TestFlowHindiMessages(t *testing.T) {
	client := &stubClient{intent: models.IntentProvideInfo}
	f := newTestFlow(t, client)

	reply := f.ProcessUserMessage(context.Background(), "नमस्ते", "hi")
	if !strings.Contains(reply, "कृपया मुझे अपना नाम बताएं।") {
		t.Errorf("reply = %q, want Hindi name question", reply)
	}
}

func TestConversationRecent(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < 7; i++ {
		conv.AddMessage(models.RoleUser, "msg")
	}
	if got := len(conv.Recent(5)); got != 5 {
		t.Errorf("Recent(5) returned %d messages", got)
	}
	if got := len(conv.Recent(10)); got != 7 {
		t.Errorf("Recent(10) returned %d messages", got)
	}
}

func TestConversationExpiry(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage(models.RoleUser, "hello")
	if conv.IsExpired(time.Hour) {
		t.Error("fresh conversation reported expired")
	}
	time.Sleep(2 * time.Millisecond)
	if !conv.IsExpired(time.Millisecond) {
		t.Error("stale conversation not reported expired")
	}
}
