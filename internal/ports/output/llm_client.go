package output

import (
	"context"

	"appliancebot/internal/domain"
)

// LLMClient interface - Output port
// Narrow contract for the opaque language-generation capability used by the
// fallback handler: generate text given a system instruction, the
// conversation history and the current user turn. The capability is
// replaceable by a deterministic test double.
type LLMClient interface {
	// Generate sends one non-streaming completion request and returns the
	// generated text. Failures are wrapped in domain.ErrGenerationFailed.
	Generate(ctx context.Context, systemPrompt string, history []domain.ChatMessage, userText string) (string, error)
}
