package http

// ChatRequest struct - HTTP request DTO for one chat turn.
// SessionID is optional; the handler mints one when absent so stateless
// clients still get a coherent conversation.
type ChatRequest struct {
	UserQuery string                 `json:"userQuery" validate:"required,max=2000" form:"userQuery"`
	SessionID string                 `json:"sessionId" validate:"omitempty,max=128" form:"sessionId"`
	Context   map[string]interface{} `json:"context" validate:"omitempty"`
}
