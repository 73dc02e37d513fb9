package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("DocChat", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("vector_store", config.Storage.Type).
		Str("embed_model", config.Gemini.EmbedModel).
		Str("chat_provider", string(config.LLM.ChatProvider)).
		Msg("DocChat starting")
}
