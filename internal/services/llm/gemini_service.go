package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService implements EmbeddingProvider and ChatProvider using the Gemini API.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// convertMessagesToGemini converts []interfaces.Message to Gemini Content format.
// Maps Role values to provider's expected values and maintains chronological ordering.
// Extracts the first system message for use with SystemInstruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
			hasUserMessage = true
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return contents, systemText, nil
}

// NewGeminiService creates a Gemini client for embeddings and chat.
// The API key is resolved from the environment first, then from config.
func NewGeminiService(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	apiKey, err := common.ResolveAPIKey(common.LLMProviderGemini, config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Gemini API key is required (set DOCCHAT_GEMINI_API_KEY, GOOGLE_API_KEY or gemini.api_key): %w", err)
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout '%s': %w", config.Timeout, err)
	}

	limiter, err := newLimiter(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini rate_limit: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Debug().
		Str("embed_model", config.EmbedModel).
		Int("embed_dimension", config.EmbedDimension).
		Str("chat_model", config.ChatModel).
		Dur("timeout", timeout).
		Msg("Gemini service initialized")

	return &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
		limiter: limiter,
	}, nil
}

// Name identifies the provider in logs and health output
func (s *GeminiService) Name() string {
	return string(common.LLMProviderGemini)
}

// EmbedModel returns the embedding model name
func (s *GeminiService) EmbedModel() string {
	return s.config.EmbedModel
}

// ChatModel returns the chat model name
func (s *GeminiService) ChatModel() string {
	return s.config.ChatModel
}

// EmbedTexts embeds all texts in a single EmbedContent call.
// The response must carry exactly one embedding per input, in input order.
func (s *GeminiService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	embedConfig := &genai.EmbedContentConfig{}
	if s.config.EmbedDimension > 0 {
		outputDim := int32(s.config.EmbedDimension)
		embedConfig.OutputDimensionality = &outputDim
	}

	startTime := time.Now()
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel, contents, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini embed request failed: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", got, len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("gemini returned an empty embedding at position %d", i)
		}
		vectors[i] = embedding.Values
	}

	s.logger.Debug().
		Int("inputs", len(texts)).
		Int("dimension", len(vectors[0])).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini embeddings generated")

	return vectors, nil
}

// StreamChat streams a completion using GenerateContentStream.
// The first system message becomes the SystemInstruction.
func (s *GeminiService) StreamChat(ctx context.Context, req interfaces.ChatRequest) (<-chan interfaces.StreamChunk, error) {
	contents, systemText, err := convertMessagesToGemini(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if systemText != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	out := make(chan interfaces.StreamChunk)
	go func() {
		defer close(out)

		streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		startTime := time.Now()
		fragments := 0
		for resp, err := range s.client.Models.GenerateContentStream(streamCtx, s.config.ChatModel, contents, genConfig) {
			if err != nil {
				s.logger.Warn().Err(err).Int("fragments", fragments).Msg("Gemini stream failed")
				sendChunk(ctx, out, interfaces.StreamChunk{Err: err})
				return
			}
			text := responseText(resp)
			if text == "" {
				continue
			}
			if !sendChunk(ctx, out, interfaces.StreamChunk{Text: text}) {
				return
			}
			fragments++
		}

		s.logger.Debug().
			Str("model", s.config.ChatModel).
			Int("fragments", fragments).
			Dur("duration", time.Since(startTime)).
			Msg("Gemini stream completed")
	}()

	return out, nil
}

// Close releases the client reference. genai.Client holds no closable resources.
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}

// responseText joins the non-thought text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
