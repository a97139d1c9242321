package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every successful call answers with.
// data is always present, an empty list encodes as [].
type APIResponse[T any] struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      T         `json:"data"`
	Count     *int      `json:"count,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the failure envelope; it carries no data.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Error     any       `json:"error,omitempty"`
}

// Empty encodes as {} and is never dropped by omitempty.
type Empty struct{}

func Success[T any](ctx *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now(),
	})
}

// List writes a 200 with the items and their count.
func List[T any](ctx *gin.Context, items []T, message string) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	ctx.JSON(http.StatusOK, APIResponse[[]T]{
		Success:   true,
		Message:   message,
		Data:      items,
		Count:     &n,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now(),
	})
}

// Error aborts the chain and writes a failure envelope. err may be nil,
// a detail map, or anything JSON-encodable.
func Error(ctx *gin.Context, status int, message string, err any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Message:   message,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now(),
		Error:     err,
	})
}
