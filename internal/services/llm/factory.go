package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
)

// NewChatProvider returns the chat provider selected by llm.chat_provider.
// The Gemini service is reused when Gemini is selected.
func NewChatProvider(config *common.Config, gemini *GeminiService, logger arbor.ILogger) (interfaces.ChatProvider, error) {
	switch config.LLM.ChatProvider {
	case common.LLMProviderGemini, "":
		if gemini == nil {
			return nil, fmt.Errorf("gemini chat provider selected but gemini service is not initialized")
		}
		return gemini, nil
	case common.LLMProviderClaude:
		claude, err := NewClaudeService(&config.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return claude, nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", config.LLM.ChatProvider)
	}
}
