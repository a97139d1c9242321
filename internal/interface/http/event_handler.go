package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/application"
	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/pkg/response"
	"github.com/oksasatya/go-event-finder/pkg/validation"
)

type EventHandler struct {
	Events        *application.EventService
	Members       *application.MembershipService
	Logger        *logrus.Logger
	MaxCoverBytes int64
}

func NewEventHandler(events *application.EventService, members *application.MembershipService, logger *logrus.Logger, maxCoverBytes int64) *EventHandler {
	if maxCoverBytes <= 0 {
		maxCoverBytes = 5 << 20
	}
	return &EventHandler{Events: events, Members: members, Logger: logger, MaxCoverBytes: maxCoverBytes}
}

func (h *EventHandler) readEvent(c *gin.Context) (*eventRequest, bool) {
	body, err := c.GetRawData()
	if err != nil {
		badPayload(c, map[string]string{"payload": "unreadable body"})
		return nil, false
	}
	req, _, err := decodeEventRequest(body)
	if err != nil {
		badPayload(c, validation.ToDetails(err))
		return nil, false
	}
	return req, true
}

// Create POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	req, ok := h.readEvent(c)
	if !ok {
		return
	}
	in, err := req.toCreate()
	if err != nil {
		renderError(c, h.Logger, err, opCreate)
		return
	}
	e, err := h.Events.Create(c.Request.Context(), c.GetString("userID"), in)
	if err != nil {
		renderError(c, h.Logger, err, opCreate)
		return
	}
	response.Success(c, http.StatusCreated, e, "Event created successfully")
}

// List GET /api/events?location=&search=
func (h *EventHandler) List(c *gin.Context) {
	items, err := h.Events.List(c.Request.Context(), entity.EventFilter{
		Location: c.Query("location"),
		Search:   c.Query("search"),
	})
	if err != nil {
		renderError(c, h.Logger, err, opList)
		return
	}
	response.List(c, items, "")
}

// Search GET /api/events/search?q=&size=
func (h *EventHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	items, err := h.Events.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		renderError(c, h.Logger, err, opSearch)
		return
	}
	response.List(c, items, "")
}

// Get GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	d, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, h.Logger, err, opGet)
		return
	}
	response.Success(c, http.StatusOK, d, "")
}

// Update PUT /api/events/:id
// Body errors are reported by the service after the existence and ownership checks.
func (h *EventHandler) Update(c *gin.Context) {
	var in application.UpdateEventInput
	body, err := c.GetRawData()
	if err != nil {
		in = application.UpdateEventInput{Invalid: map[string]string{"payload": "unreadable body"}}
	} else if req, keys, err := decodeEventRequest(body); err != nil {
		in = undecodableUpdate(err)
	} else {
		in = req.toUpdate(keys)
	}
	e, err := h.Events.Update(c.Request.Context(), c.Param("id"), c.GetString("userID"), in)
	if err != nil {
		renderError(c, h.Logger, err, opUpdate)
		return
	}
	response.Success(c, http.StatusOK, e, "Event updated successfully")
}

// Delete DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.Events.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		renderError(c, h.Logger, err, opDelete)
		return
	}
	response.Success(c, http.StatusOK, response.Empty{}, "Event deleted successfully")
}

// Join POST /api/events/:id/join
func (h *EventHandler) Join(c *gin.Context) {
	e, err := h.Members.Join(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		renderError(c, h.Logger, err, opJoin)
		return
	}
	response.Success(c, http.StatusOK, e, "Successfully joined the event")
}

// UploadCover POST /api/events/:id/cover (multipart field "cover")
func (h *EventHandler) UploadCover(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxCoverBytes)
	fh, err := c.FormFile("cover")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.Error(c, http.StatusRequestEntityTooLarge, "Cover image is too large", nil)
			return
		}
		badPayload(c, map[string]string{"cover": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badPayload(c, map[string]string{"cover": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	e, err := h.Events.UploadCover(c.Request.Context(), c.Param("id"), c.GetString("userID"), f, fh.Filename, contentType)
	if err != nil {
		renderError(c, h.Logger, err, opCover)
		return
	}
	response.Success(c, http.StatusOK, e, "Cover uploaded successfully")
}
