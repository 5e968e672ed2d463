package http

import "net/http"

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
)

// ResponseBody struct - Generic HTTP response wrapper for non-chat routes
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

// ChatResponse struct - HTTP response DTO for one chat turn. Role is
// always "assistant". SessionID echoes the conversation id so clients
// that omitted one can continue the same session.
type ChatResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	SessionID string `json:"sessionId,omitempty"`
}
