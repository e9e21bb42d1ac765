package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type EventController struct {
	eventService service.EventService
}

func NewEventController(eventService service.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

type EventRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time"`                    // HH:MM, optional
	Color string `json:"color"`                   // random palette color when empty
}

func (req *EventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title: req.Title,
		Date:  req.Date,
		Time:  req.Time,
		Color: req.Color,
	}
}

// GetEvents lists calendar events, optionally for one month (Admin only)
// GET /api/v1/admin/events?month=2026-08
func (ctrl *EventController) GetEvents(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	month := c.Query("month")

	var (
		events []model.Event
		err    error
	)
	if month != "" {
		events, err = ctrl.eventService.ListEventsByMonth(month)
	} else {
		events, err = ctrl.eventService.ListEvents()
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Month must be YYYY-MM"})
			return
		}
		log.Error("Failed to fetch events", err, map[string]interface{}{
			"month": month,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch events",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// CreateEvent adds a calendar event (Admin only)
// POST /api/v1/admin/events
func (ctrl *EventController) CreateEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create event request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	event, err := ctrl.eventService.CreateEvent(adminID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEventDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		case errors.Is(err, service.ErrInvalidEventTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Time must be HH:MM"})
		default:
			log.Error("Failed to create event", err, map[string]interface{}{
				"admin_id": adminID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		}
		return
	}

	log.Info("Event created", map[string]interface{}{
		"event_id": event.ID,
		"admin_id": adminID,
		"date":     event.Date,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created",
		"event":   event,
	})
}

// UpdateEvent edits a calendar event (Admin only)
// PUT /api/v1/admin/events/:id
func (ctrl *EventController) UpdateEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID",
		})
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	event, err := ctrl.eventService.UpdateEvent(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		case errors.Is(err, service.ErrInvalidEventDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		case errors.Is(err, service.ErrInvalidEventTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Time must be HH:MM"})
		default:
			log.Error("Failed to update event", err, map[string]interface{}{
				"event_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		}
		return
	}

	log.Info("Event updated", map[string]interface{}{
		"event_id": event.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated",
		"event":   event,
	})
}

// DeleteEvent removes a calendar event (Admin only)
// DELETE /api/v1/admin/events/:id
func (ctrl *EventController) DeleteEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID",
		})
		return
	}

	if err := ctrl.eventService.DeleteEvent(uint(id)); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		log.Error("Failed to delete event", err, map[string]interface{}{
			"event_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	log.Info("Event deleted", map[string]interface{}{
		"event_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted",
	})
}
