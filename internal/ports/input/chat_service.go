package input

import (
	"context"

	"appliancebot/internal/domain"
)

// ChatService interface - Input port (use case)
// The single externally callable entry point of the assistant core.
type ChatService interface {
	// Respond processes one user turn for the given session and returns the
	// assistant's reply. Classification, state transition, lookup and
	// storage failures are converted into user-facing text or logged; the
	// error return stays nil for everything the assistant can recover from.
	Respond(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error)
}
