package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/schemebot/schemebot/internal/genai"
	"github.com/schemebot/schemebot/internal/i18n"
	"github.com/schemebot/schemebot/internal/models"
	"github.com/schemebot/schemebot/internal/recommend"
	"github.com/schemebot/schemebot/internal/validate"
)

// Defaults for the extraction pipeline.
const (
	DefaultConfidenceThreshold = 0.7
	DefaultMaxRetries          = 3

	// recentWindow is the history slice given to the classifier and extractor.
	recentWindow = 5
)

// Opts holds tunables for the dialogue flow.
type Opts struct {
	// ConfidenceThreshold is the minimum extraction confidence accepted.
	ConfidenceThreshold float64
	// MaxRetries is the number of failed attempts before a field is skipped.
	MaxRetries int
}

// Option configures flow construction.
type Option func(*Opts)

// WithConfidenceThreshold sets the minimum extraction confidence.
func WithConfidenceThreshold(threshold float64) Option {
	return func(o *Opts) { o.ConfidenceThreshold = threshold }
}

// WithMaxRetries sets the per-field retry limit.
func WithMaxRetries(retries int) Option {
	return func(o *Opts) { o.MaxRetries = retries }
}

// Flow drives one session's conversation: greeting, field collection with
// retries, recommendation generation, and post-recommendation Q&A.
type Flow struct {
	client genai.ClientInterface
	rec    *recommend.Service

	conv    *Conversation
	profile models.Profile
	retries map[models.Field]int
	skipped map[models.Field]bool
	matches []models.MatchResult

	confidenceThreshold float64
	maxRetries          int
}

// NewFlow creates a dialogue flow over the given capability client and
// recommendation service.
func NewFlow(client genai.ClientInterface, rec *recommend.Service, opts ...Option) *Flow {
	cfg := Opts{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		MaxRetries:          DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Flow{
		client:              client,
		rec:                 rec,
		conv:                NewConversation(),
		retries:             make(map[models.Field]int),
		skipped:             make(map[models.Field]bool),
		confidenceThreshold: cfg.ConfidenceThreshold,
		maxRetries:          cfg.MaxRetries,
	}
}

// ProcessUserMessage handles one user turn and returns the bot's reply.
// Capability failures degrade to retries or fixed messages; this method
// never fails the turn.
func (f *Flow) ProcessUserMessage(ctx context.Context, message, language string) string {
	f.conv.AddMessage(models.RoleUser, message)

	// The first message, or a bare greeting word, always restarts intake.
	if len(f.conv.History()) <= 1 || i18n.IsGreetingWord(message) {
		return f.handleGreeting(language)
	}

	intent := f.classifyIntent(ctx, message, language)
	slog.Info("Flow.ProcessUserMessage: intent detected", "intent", intent, "state", f.conv.State())

	switch intent {
	case models.IntentGreeting:
		return f.handleGreeting(language)
	case models.IntentProvideInfo:
		return f.handleInformationCollection(ctx, message, language)
	case models.IntentRequestRecommendations:
		f.conv.SetState(models.StateRecommending)
		return f.generateRecommendations(language)
	case models.IntentRestart:
		f.conv.Clear()
		return f.handleGreeting(language)
	case models.IntentAskSpecificScheme:
		return f.handleCompletedState(ctx, message, language)
	}

	// Unclear intent falls back to state-based dispatch.
	switch f.conv.State() {
	case models.StateGreeting:
		return f.handleGreeting(language)
	case models.StateCollectingInfo:
		return f.handleInformationCollection(ctx, message, language)
	case models.StateRecommending:
		return f.generateRecommendations(language)
	case models.StateCompleted:
		return f.handleCompletedState(ctx, message, language)
	}

	response := i18n.Message(language, i18n.MsgError)
	f.conv.AddMessage(models.RoleAssistant, response)
	return response
}

// classifyIntent labels the message, treating any capability failure as an
// unclear intent.
func (f *Flow) classifyIntent(ctx context.Context, message, language string) models.Intent {
	intent, err := f.client.ClassifyIntent(ctx, genai.IntentRequest{
		Message:   message,
		State:     f.conv.State(),
		Collected: f.profile.CompletionFlags(),
		Recent:    f.conv.Recent(recentWindow),
		Language:  language,
	})
	if err != nil {
		slog.Error("Flow.classifyIntent: classification failed, defaulting to other", "error", err)
		return models.IntentOther
	}
	return intent
}

// handleGreeting resets the profile and retry counters, greets the user,
// and asks the first question.
func (f *Flow) handleGreeting(language string) string {
	f.profile = models.Profile{}
	f.retries = make(map[models.Field]int)
	f.skipped = make(map[models.Field]bool)
	f.matches = nil

	f.conv.SetState(models.StateCollectingInfo)

	response := i18n.Message(language, i18n.MsgGreeting) + "\n\n" + i18n.Message(language, i18n.MsgGreetingQuestion)
	f.conv.AddMessage(models.RoleAssistant, response)
	return response
}

// handleInformationCollection runs the extraction pipeline on the next
// required field and advances the intake conversation.
func (f *Flow) handleInformationCollection(ctx context.Context, message, language string) string {
	field, ok := f.nextField()
	if !ok {
		// Nothing left to collect.
		f.conv.SetState(models.StateRecommending)
		response := i18n.Message(language, i18n.MsgThankYou)
		f.conv.AddMessage(models.RoleAssistant, response)
		return response
	}

	value, raw, valid := f.extractAndValidate(ctx, field, language)
	if valid {
		f.profile.Apply(value)
		f.retries[field] = 0
		slog.Info("Flow.handleInformationCollection: field collected", "field", field)

		next, ok := f.nextField()
		if !ok {
			return f.completeIntake(language)
		}
		response := i18n.FieldQuestion(language, next)
		f.conv.AddMessage(models.RoleAssistant, response)
		return response
	}

	f.retries[field]++
	if f.retries[field] < f.maxRetries {
		response := i18n.FieldRetry(language, field)
		f.conv.AddMessage(models.RoleAssistant, response)
		return response
	}

	// Retry limit reached: accept a best-guess value if one coerces,
	// otherwise skip the field so the conversation never stalls.
	f.retries[field] = 0
	applied := false
	if raw != "" {
		if guess, ok := validate.BestGuess(field, raw); ok {
			f.profile.Apply(guess)
			applied = true
			slog.Info("Flow.handleInformationCollection: accepted best-guess value", "field", field)
		}
	}
	if !applied {
		f.skipped[field] = true
		slog.Info("Flow.handleInformationCollection: skipping field", "field", field)
	}

	next, ok := f.nextField()
	if !ok {
		f.conv.SetState(models.StateRecommending)
		return f.generateRecommendations(language)
	}
	response := i18n.Message(language, i18n.MsgSkip) + "\n\n" + i18n.FieldQuestion(language, next)
	f.conv.AddMessage(models.RoleAssistant, response)
	return response
}

// nextField returns the first field in collection order that is neither
// collected nor skipped.
func (f *Flow) nextField() (models.Field, bool) {
	collected := f.profile.CompletionFlags()
	for _, field := range models.RequiredFields {
		if !collected[field] && !f.skipped[field] {
			return field, true
		}
	}
	return "", false
}

// extractAndValidate runs extract → confidence gate → local validator →
// model validation fallback. It returns the typed value on success and the
// raw extracted text either way.
func (f *Flow) extractAndValidate(ctx context.Context, field models.Field, language string) (models.FieldValue, string, bool) {
	extraction, err := f.client.ExtractField(ctx, f.conv.Recent(recentWindow), field, language)
	if err != nil {
		slog.Error("Flow.extractAndValidate: extraction failed", "field", field, "error", err)
		return models.FieldValue{}, "", false
	}

	if extraction.Value == "" || extraction.Confidence < f.confidenceThreshold {
		return models.FieldValue{}, extraction.Value, false
	}

	if value, ok := validate.Field(field, extraction.Value); ok {
		return value, extraction.Value, true
	}

	// Local validation rejected the value; let the model try to normalize
	// Hindi and Hinglish phrasings the rule tables miss.
	fallback, err := f.client.ValidateFallback(ctx, field, extraction.Value, language)
	if err != nil {
		slog.Error("Flow.extractAndValidate: validation fallback failed", "field", field, "error", err)
		return models.FieldValue{}, extraction.Value, false
	}
	if fallback.Valid {
		if value, ok := validate.Field(field, fallback.NormalizedValue); ok {
			return value, extraction.Value, true
		}
	}

	return models.FieldValue{}, extraction.Value, false
}

// completeIntake thanks the user and generates recommendations as a side
// effect. The reply is the thank-you line; the recommendation summary lands
// in the history and the results are available via Recommendations.
func (f *Flow) completeIntake(language string) string {
	f.conv.SetState(models.StateRecommending)

	thankYou := i18n.Message(language, i18n.MsgThankYou)
	f.conv.AddMessage(models.RoleAssistant, thankYou)

	f.generateRecommendations(language)
	return thankYou
}

// generateRecommendations matches the profile against the catalog, stores
// the results, and moves the conversation to the completed state.
func (f *Flow) generateRecommendations(language string) string {
	matches, err := f.rec.Recommend(f.profile, language)
	if err != nil {
		slog.Error("Flow.generateRecommendations: matching failed", "error", err)
		matches = nil
	}
	f.matches = matches

	response := f.rec.FormatSummary(matches, language)
	f.conv.SetState(models.StateCompleted)
	f.conv.AddMessage(models.RoleAssistant, response)
	return response
}

// handleCompletedState answers follow-up questions after recommendations,
// or restarts the conversation on a restart keyword.
func (f *Flow) handleCompletedState(ctx context.Context, message, language string) string {
	if i18n.IsRestartRequest(language, message) {
		f.conv.Clear()
		return f.handleGreeting(language)
	}

	systemPrompt := i18n.Message(language, i18n.MsgCompletedSystemPrompt)
	answer, err := f.client.FreeFormAnswer(ctx, systemPrompt, message, f.profile)
	if err != nil {
		slog.Error("Flow.handleCompletedState: answer generation failed", "error", err)
		answer = i18n.Message(language, i18n.MsgError)
	}

	f.conv.AddMessage(models.RoleAssistant, answer)
	return answer
}

// Reset clears the conversation and returns a fresh greeting.
func (f *Flow) Reset(language string) string {
	f.conv.Clear()
	return f.handleGreeting(language)
}

// Profile returns the profile collected so far.
func (f *Flow) Profile() models.Profile {
	return f.profile
}

// Recommendations returns the most recent match results.
func (f *Flow) Recommendations() []models.MatchResult {
	return f.matches
}

// State returns the current dialogue state.
func (f *Flow) State() models.ConversationState {
	return f.conv.State()
}

// History returns the conversation history.
func (f *Flow) History() []models.Message {
	return f.conv.History()
}

// IsExpired reports whether the session has been inactive longer than the
// timeout.
func (f *Flow) IsExpired(timeout time.Duration) bool {
	return f.conv.IsExpired(timeout)
}
