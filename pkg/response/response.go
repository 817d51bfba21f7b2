package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// Success writes a successful envelope with data and returns it.
func Success[T any](c *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	}
	c.JSON(status, resp)
	return resp
}

// Error writes a failed envelope. details lands in the "error" member.
func Error(c *gin.Context, status int, message string, details any) APIResponse[any] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[any]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	}
	c.JSON(status, resp)
	return resp
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string, details any) {
	Error(c, status, message, details)
	c.Abort()
}
