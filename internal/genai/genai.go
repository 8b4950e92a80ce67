// Package genai provides language-model backed conversation capabilities
// using the OpenAI API: intent classification, field extraction, validation
// fallback, and free-form answers about schemes.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/schemebot/schemebot/internal/models"
)

// ErrNoChoicesReturned indicates the API response contained no completion
// choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// Sampling temperatures. Structured extraction runs near-deterministic;
// conversational answers keep the default creativity.
const (
	extractionTemperature   = 0.1
	conversationTemperature = 0.7
	answerMaxTokens         = 1000
)

// Extraction is the result of pulling one profile field out of conversation
// history. Confidence is the model's self-reported certainty in [0,1].
type Extraction struct {
	Value      string
	Confidence float64
}

// Validation is the result of the model-backed validation fallback.
type Validation struct {
	Valid           bool
	NormalizedValue string
}

// IntentRequest carries the context the intent classifier sees: the new
// message, the dialogue state, which profile fields are already collected,
// and the recent history window.
type IntentRequest struct {
	Message   string
	State     models.ConversationState
	Collected map[models.Field]bool
	Recent    []models.Message
	Language  string
}

// ClientInterface defines the conversation capabilities the dialogue flow
// depends on. Implementations return an error on any transport or decoding
// failure; callers treat errors as a failed extraction or neutral result.
type ClientInterface interface {
	ClassifyIntent(ctx context.Context, req IntentRequest) (models.Intent, error)
	ExtractField(ctx context.Context, history []models.Message, field models.Field, language string) (Extraction, error)
	ValidateFallback(ctx context.Context, field models.Field, value, language string) (Validation, error)
	FreeFormAnswer(ctx context.Context, systemPrompt, message string, profile models.Profile) (string, error)
}

// chatService defines minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatService adapts the OpenAI SDK client to chatService.
type openaiChatService struct {
	client openai.Client
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil || resp == nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for creating a GenAI client.
type Opts struct {
	// APIKey is the OpenAI API key. Falls back to OPENAI_API_KEY.
	APIKey string
	// Model overrides the default chat model.
	Model string
}

// Option configures GenAI client creation.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for all capability calls.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service with the conversation
// capabilities SchemeBot needs.
type Client struct {
	chat  chatService
	model string
}

// NewClient initializes a GenAI client. The API key comes from options or
// the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	cli := openai.NewClient(option.WithAPIKey(apiKey))
	slog.Debug("genai.NewClient: client initialized", "model", model)
	return &Client{chat: &openaiChatService{client: cli}, model: model}, nil
}

// ClassifyIntent labels the user's latest message with one of the closed
// intent values. Unrecognized model output maps to IntentOther.
func (c *Client) ClassifyIntent(ctx context.Context, req IntentRequest) (models.Intent, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(intentSystemPrompt(req.Language)),
			openai.UserMessage(intentUserPrompt(req)),
		},
	}

	content, err := c.complete(ctx, params)
	if err != nil {
		return models.IntentOther, fmt.Errorf("failed to classify intent: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(content))
	intent := models.ParseIntent(label)
	if string(intent) != label {
		slog.Warn("Client.ClassifyIntent: unexpected intent label, defaulting to other", "label", label)
	}
	slog.Debug("Client.ClassifyIntent: intent detected", "intent", intent)
	return intent, nil
}

// ExtractField pulls one profile field out of the conversation history.
// The model answers in JSON mode with a value and a confidence score.
func (c *Client) ExtractField(ctx context.Context, history []models.Message, field models.Field, language string) (Extraction, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(extractionSystemPrompt(field, language)),
	}
	messages = append(messages, historyMessages(history)...)

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(extractionTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := c.complete(ctx, params)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract %s: %w", field, err)
	}

	var raw struct {
		Value      any     `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse extraction response for %s: %w", field, err)
	}

	extraction := Extraction{Value: stringify(raw.Value), Confidence: raw.Confidence}
	slog.Info("Client.ExtractField: extraction complete", "field", field, "value", extraction.Value, "confidence", extraction.Confidence)
	return extraction, nil
}

// ValidateFallback asks the model to validate and normalize a value the
// local validator rejected. It understands Hindi and Hinglish phrasings the
// rule tables miss.
func (c *Client) ValidateFallback(ctx context.Context, field models.Field, value, language string) (Validation, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(validationSystemPrompt(field, language)),
			openai.UserMessage(fmt.Sprintf("Validate this %s value: %s", field, value)),
		},
		Temperature: openai.Float(extractionTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := c.complete(ctx, params)
	if err != nil {
		return Validation{}, fmt.Errorf("failed to validate %s: %w", field, err)
	}

	var raw struct {
		Valid           bool `json:"valid"`
		NormalizedValue any  `json:"normalized_value"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Validation{}, fmt.Errorf("failed to parse validation response for %s: %w", field, err)
	}

	validation := Validation{Valid: raw.Valid, NormalizedValue: stringify(raw.NormalizedValue)}
	slog.Debug("Client.ValidateFallback: validation complete", "field", field, "valid", validation.Valid, "normalized", validation.NormalizedValue)
	return validation, nil
}

// FreeFormAnswer generates a conversational answer about schemes after the
// recommendation phase, grounded on the user's collected profile.
func (c *Client) FreeFormAnswer(ctx context.Context, systemPrompt, message string, profile models.Profile) (string, error) {
	userPrompt := fmt.Sprintf(
		"User's message: %s\n\nUser's information: %s\n\nProvide a helpful response to the user's query. If they're asking about a specific scheme, give details about eligibility, benefits, and how to apply.",
		message, profile.String(),
	)

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(conversationTemperature),
		MaxTokens:   openai.Int(answerMaxTokens),
	}

	content, err := c.complete(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return content, nil
}

// complete runs one chat completion and returns the first choice's content.
func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// historyMessages converts conversation history to API message params.
func historyMessages(history []models.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		if msg.Role == models.RoleAssistant {
			converted = append(converted, openai.AssistantMessage(msg.Content))
		} else {
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}
	return converted
}

// stringify renders a loosely-typed JSON value as a string. Models in JSON
// mode return ages as numbers and missing values as null.
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
