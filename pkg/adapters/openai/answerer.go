// Package openai answers free-text report questions with a chat completion model.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultSystemPrompt frames the model as the report assistant.
const DefaultSystemPrompt = "You are the assistant of a personal genetic report. " +
	"Answer the user's question briefly and in plain language. " +
	"Do not give medical diagnoses; suggest consulting a specialist when appropriate."

// ErrNoChoicesReturned is returned when the model responds without any choice.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService is the subset of the chat completions API the answerer needs.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Answerer implements ports.Answerer on top of the OpenAI chat API.
type Answerer struct {
	chat   chatService
	model  string
	system string
	logger zerolog.Logger
}

var _ ports.Answerer = (*Answerer)(nil)

// Option configures the Answerer.
type Option func(*Answerer)

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(a *Answerer) {
		if model != "" {
			a.model = model
		}
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Answerer) {
		if prompt != "" {
			a.system = prompt
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Answerer) {
		a.logger = logger
	}
}

// New creates an answerer. baseURL may be empty to use the public endpoint.
func New(apiKey, baseURL string, opts ...Option) (*Answerer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(reqOpts...)
	return newAnswerer(&client.Chat.Completions, opts...), nil
}

func newAnswerer(chat chatService, opts ...Option) *Answerer {
	a := &Answerer{
		chat:   chat,
		model:  DefaultModel,
		system: DefaultSystemPrompt,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer sends the question to the model and returns its reply.
func (a *Answerer) Answer(ctx context.Context, q ports.Question) (string, error) {
	resp, err := a.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(a.system),
			openai.UserMessage(q.Text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.logger.Debug().
		Str("user_id", q.UserID).
		Str("model", a.model).
		Int("answer_len", len(answer)).
		Msg("question answered")
	return answer, nil
}

// Static answers every question with the same text.
// It is used when no model is configured.
type Static string

// Answer returns s.
func (s Static) Answer(context.Context, ports.Question) (string, error) {
	return string(s), nil
}
