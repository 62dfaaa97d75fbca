package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/pkg/geo"
)

// chatid rejects non-positive chat ids before they reach dispatch.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("chatid", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() > 0
		})
	}
}

// EventDispatcher routes one decoded gateway event.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) error
}

type EventHandler struct {
	dispatcher EventDispatcher
	log        *zap.Logger
}

func NewEventHandler(dispatcher EventDispatcher, log *zap.Logger) *EventHandler {
	return &EventHandler{
		dispatcher: dispatcher,
		log:        log,
	}
}

// ErrorResponse is the error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventRequest represents one inbound message from the gateway. Coordinates
// arrive as whatever the gateway produced, string or number, so they are
// declared loose here and parsed strictly below.
type EventRequest struct {
	UserID    int64           `json:"user_id" binding:"required,chatid"`
	Kind      string          `json:"kind" binding:"required,oneof=command text photo location contact callback"`
	Command   string          `json:"command"`
	Text      string          `json:"text"`
	PhotoID   string          `json:"photo_id"`
	Location  *locationInput  `json:"location"`
	Contact   *contactInput   `json:"contact"`
	Callback  string          `json:"callback"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
}

// Zero is a valid coordinate, so presence is checked by ParseComponent
// rejecting nil rather than by a required tag.
type locationInput struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
}

type contactInput struct {
	Phone  string `json:"phone" binding:"required"`
	UserID int64  `json:"user_id" binding:"required"`
}

// HandleEvent ingests one gateway event
// @Summary Ingest a gateway event
// @Description Decode and dispatch one inbound user event from the messaging gateway
// @Tags events
// @Accept json
// @Produce json
// @Param request body EventRequest true "Gateway event"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) HandleEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	ev := domain.Event{
		UserID:    req.UserID,
		Kind:      domain.EventKind(req.Kind),
		Command:   req.Command,
		Text:      req.Text,
		PhotoID:   req.PhotoID,
		Callback:  req.Callback,
		Username:  req.Username,
		FirstName: req.FirstName,
	}

	if req.Location != nil {
		lat, err := geo.ParseComponent(req.Location.Latitude)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid latitude"})
			return
		}
		lon, err := geo.ParseComponent(req.Location.Longitude)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid longitude"})
			return
		}
		ev.Location = &domain.Location{Latitude: lat, Longitude: lon}
	}

	if req.Contact != nil {
		ev.Contact = &domain.Contact{
			Phone:  req.Contact.Phone,
			UserID: req.Contact.UserID,
		}
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), ev); err != nil {
		h.log.Error("event dispatch failed",
			zap.Int64("user_id", ev.UserID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to process event",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
