package chat

import "github.com/ternarybob/docchat/internal/models"

// NoInformationReply is the sentence a grounded answer uses when the context
// does not cover the question.
const NoInformationReply = "I don't have enough information in the available documents to answer that question"

const groundedPromptHeader = `You are a helpful AI assistant that answers questions based on the provided context.

IMPORTANT INSTRUCTIONS:
1. ONLY use information from the provided context to answer questions
2. If the context doesn't contain relevant information, say "` + NoInformationReply + `"
3. Always specify which source document you're using in your answer
4. Include relevant quotes from the context when appropriate

Available Context:
`

const groundedPromptFooter = `

Remember: If you can't find the answer in the context above, admit that you don't have the information rather than making assumptions.`

// GeneralPrompt is used when retrieval found nothing relevant
const GeneralPrompt = "You are a helpful assistant. Engage in natural conversation and provide helpful responses based on your knowledge. If asked about specific documents or information, let the user know you can search through uploaded documents to help answer their questions."

// GroundedPrompt embeds the formatted context blocks in the grounded instructions
func GroundedPrompt(context string) string {
	if context == "" {
		context = "No context available"
	}
	return groundedPromptHeader + context + groundedPromptFooter
}

// SystemPrompt selects the grounded prompt for a non-empty context and the
// general prompt otherwise
func SystemPrompt(gc *models.GroundingContext) string {
	if gc.IsEmpty() {
		return GeneralPrompt
	}
	return GroundedPrompt(gc.Text)
}
