package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"golang.org/x/time/rate"
)

// ClaudeService implements ChatProvider using the Anthropic Messages API.
// Claude has no embedding endpoint, so Gemini remains the embedding provider.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
	limiter   *rate.Limiter
}

// convertMessagesToClaude converts []interfaces.Message to Claude MessageParam format.
// Extracts the first system message for the System parameter.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	hasUserMessage := false
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			hasUserMessage = true
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a Claude chat provider
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	apiKey, err := common.ResolveAPIKey(common.LLMProviderClaude, config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API key is required (set DOCCHAT_CLAUDE_API_KEY, ANTHROPIC_API_KEY or claude.api_key): %w", err)
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout '%s': %w", config.Timeout, err)
	}

	limiter, err := newLimiter(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid claude rate_limit: %w", err)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	logger.Debug().
		Str("model", config.Model).
		Int("max_tokens", maxTokens).
		Dur("timeout", timeout).
		Msg("Claude service initialized")

	return &ClaudeService{
		config:    config,
		logger:    logger,
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		timeout:   timeout,
		maxTokens: maxTokens,
		limiter:   limiter,
	}, nil
}

// Name identifies the provider in logs and health output
func (s *ClaudeService) Name() string {
	return string(common.LLMProviderClaude)
}

// ChatModel returns the configured Claude model
func (s *ClaudeService) ChatModel() string {
	return s.config.Model
}

// StreamChat streams text deltas from Messages.NewStreaming
func (s *ClaudeService) StreamChat(ctx context.Context, req interfaces.ChatRequest) (<-chan interfaces.StreamChunk, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Model),
		MaxTokens:   int64(s.maxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	out := make(chan interfaces.StreamChunk)
	go func() {
		defer close(out)

		streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		startTime := time.Now()
		fragments := 0
		stream := s.client.Messages.NewStreaming(streamCtx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			textDelta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta)
			if !ok || textDelta.Text == "" {
				continue
			}
			if !sendChunk(ctx, out, interfaces.StreamChunk{Text: textDelta.Text}) {
				return
			}
			fragments++
		}

		if err := stream.Err(); err != nil {
			s.logger.Warn().Err(err).Int("fragments", fragments).Msg("Claude stream failed")
			sendChunk(ctx, out, interfaces.StreamChunk{Err: err})
			return
		}

		s.logger.Debug().
			Str("model", s.config.Model).
			Int("fragments", fragments).
			Dur("duration", time.Since(startTime)).
			Msg("Claude stream completed")
	}()

	return out, nil
}
