package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/application"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/response"
)

// operation names what a handler was doing, for error messages.
type operation struct {
	verb  string // "update" -> "Not authorized to update this event"
	doing string // "updating event" -> "Server error while updating event"
}

var (
	opCreate = operation{"create", "creating event"}
	opList   = operation{"list", "fetching events"}
	opGet    = operation{"view", "fetching event"}
	opUpdate = operation{"update", "updating event"}
	opDelete = operation{"delete", "deleting event"}
	opJoin   = operation{"join", "joining event"}
	opCover  = operation{"change the cover of", "uploading cover"}
	opSearch = operation{"search", "searching events"}
	opAuth   = operation{"access", "authenticating"}
)

// renderError maps service errors onto the response envelope.
func renderError(c *gin.Context, logger *logrus.Logger, err error, op operation) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error(c, http.StatusBadRequest, validationMessage(ve), ve.Fields)
	case errors.Is(err, application.ErrEventNotFound):
		response.Error(c, http.StatusNotFound, "Event not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, "Not authorized to "+op.verb+" this event", nil)
	case errors.Is(err, application.ErrEventFull):
		response.Error(c, http.StatusBadRequest, "Event is full", nil)
	case errors.Is(err, application.ErrAlreadyJoined):
		response.Error(c, http.StatusBadRequest, "You have already joined this event", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, "User already exists", nil)
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrSessionExpired):
		response.Error(c, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, application.ErrFeatureDisabled):
		response.Error(c, http.StatusServiceUnavailable, "This feature is not configured", nil)
	default:
		if logger != nil {
			helpers.LogError(logger, "request failed", err, logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			})
		}
		response.Error(c, http.StatusInternalServerError, "Server error while "+op.doing, err.Error())
	}
}

func validationMessage(ve *application.ValidationError) string {
	for _, msg := range ve.Fields {
		if msg == "is required" {
			return "Please provide all required fields"
		}
	}
	return "Validation failed"
}

// badPayload answers a request body that could not be decoded.
func badPayload(c *gin.Context, details map[string]string) {
	response.Error(c, http.StatusBadRequest, "Invalid payload", details)
}
