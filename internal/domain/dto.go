package domain

// DTOs (Data Transfer Objects) - Domain layer request/response structures

// ChatMessageRole represents who authored a conversation message
type ChatMessageRole string

const (
	// ChatMessageRoleUser - Message written by the user
	ChatMessageRoleUser ChatMessageRole = "user"
	// ChatMessageRoleAssistant - Message written by the assistant
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

// ChatMessage is one turn of the conversation history
type ChatMessage struct {
	Role    ChatMessageRole `json:"role"`
	Content string          `json:"content"`
}

type (
	// ChatRequest struct - Domain request DTO for one user turn
	ChatRequest struct {
		SessionID string
		UserQuery string
		Context   map[string]interface{}
	}

	// ChatResponse struct - Domain response DTO. The orchestrator always
	// returns a well-formed response; internal failures become user-facing
	// text, never raw errors.
	ChatResponse struct {
		Role    ChatMessageRole `json:"role"`
		Content string          `json:"content"`
	}
)

// NewAssistantResponse wraps text in the assistant response shape
func NewAssistantResponse(content string) ChatResponse {
	return ChatResponse{Role: ChatMessageRoleAssistant, Content: content}
}
