package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	providerNameOpenAI = "openai"

	systemRole = "system"
	userRole   = "user"
)

// OpenAIProvider implements the Provider interface using OpenAI's Chat
// Completions API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Complete runs one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (string, error) {
	startTime := time.Now()

	span := sentry.StartSpan(ctx, "openai.complete")
	span.SetTag("model", request.Model)
	defer span.Finish()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: buildMessages(request.Messages),
	}
	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.SetTag("success", "false")
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetTag("success", "false")
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		span.SetTag("success", "false")
		return "", ErrEmptyCompletion
	}
	if ContainsRefusal(content) {
		span.SetTag("success", "false")
		logger.Warn("Completion rejected as refusal", logger.Fields{
			"model":   request.Model,
			"preview": preview(content, 80),
		})
		return "", ErrRefusal
	}

	span.SetTag("success", "true")
	logger.Debug("Completion finished", logger.Fields{
		"model":       request.Model,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return content, nil
}

func buildMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == systemRole:
			out = append(out, openai.SystemMessage(msg.Content))
		case msg.ImageURL != "":
			parts := []openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(msg.Content),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: msg.ImageURL,
				}),
			}
			out = append(out, openai.UserMessage(parts))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// preview truncates on rune boundaries so multi-byte text never logs broken
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
