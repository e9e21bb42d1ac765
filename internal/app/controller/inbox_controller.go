package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	apperrors "github.com/ptnguyen/coffeecorner-backend/internal/errors"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
	ws "github.com/ptnguyen/coffeecorner-backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"https://coffeecorner.shop":  true,
			"http://localhost:5173":      true, // dev frontend
			"http://localhost:3000":      true, // dev back-office
		}
		return allowedOrigins[origin]
	},
}

type InboxController struct {
	inboxService service.InboxService
	hub          *ws.Hub
}

func NewInboxController(inboxService service.InboxService, hub *ws.Hub) *InboxController {
	return &InboxController{
		inboxService: inboxService,
		hub:          hub,
	}
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// GetThreads lists conversations visible to the admin
// GET /api/v1/admin/inbox
func (ctrl *InboxController) GetThreads(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	threads, err := ctrl.inboxService.AdminThreads(adminID)
	if err != nil {
		log.Error("Failed to fetch inbox threads", err, map[string]interface{}{
			"admin_id": adminID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch conversations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threads": threads,
		"count":   len(threads),
	})
}

// GetThread returns a conversation and marks customer messages read
// GET /api/v1/admin/inbox/:userId
func (ctrl *InboxController) GetThread(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	userIDStr := c.Param("userId")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		log.Warn("Invalid user ID format", map[string]interface{}{
			"user_id": userIDStr,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	messages, err := ctrl.inboxService.AdminThread(adminID, uint(userID))
	if err != nil {
		if errors.Is(err, service.ErrAssignedElsewhere) {
			log.Warn("Thread access denied: assigned to another admin", map[string]interface{}{
				"admin_id": adminID,
				"user_id":  userID,
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.InboxAssignedElsewhere, "This conversation is handled by another admin")
			return
		}
		log.Error("Failed to fetch thread", err, map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch conversation",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage sends an admin reply into a conversation
// POST /api/v1/admin/inbox/:userId
func (ctrl *InboxController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	userIDStr := c.Param("userId")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid send message request", map[string]interface{}{
			"admin_id": adminID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Message body is required",
		})
		return
	}

	message, err := ctrl.inboxService.SendFromAdmin(adminID, uint(userID), req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignedElsewhere):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.InboxAssignedElsewhere, "This conversation is handled by another admin")
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body is required"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		default:
			log.Error("Failed to send message", err, map[string]interface{}{
				"admin_id": adminID,
				"user_id":  userID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	log.Info("Admin message sent", map[string]interface{}{
		"admin_id":   adminID,
		"user_id":    userID,
		"message_id": message.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// Connect upgrades the request to a websocket session for live inbox
// pushes. The token may arrive as a query parameter, so it is never
// logged.
// GET /api/v1/inbox/ws
func (ctrl *InboxController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accountID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	role, _ := middleware.GetUserRole(c)
	if role == "" {
		role = model.RoleCustomer
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"account_id": accountID,
		})
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		AccountID:     accountID,
		Role:          role,
		Send:          make(chan []byte, 2048),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"account_id": accountID,
		"role":       role,
	})
}

// AssignThread claims a conversation for the admin, first come first served
// POST /api/v1/admin/inbox/:userId/assign
func (ctrl *InboxController) AssignThread(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	userIDStr := c.Param("userId")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	assignment, err := ctrl.inboxService.Assign(adminID, uint(userID))
	if err != nil {
		if errors.Is(err, service.ErrAssignedElsewhere) {
			log.Warn("Assignment rejected: already claimed", map[string]interface{}{
				"admin_id": adminID,
				"user_id":  userID,
			})
			apperrors.Conflict(c, apperrors.InboxAssignedElsewhere, "This conversation is already handled by another admin")
			return
		}
		log.Error("Failed to assign thread", err, map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
		})
		// Two admins claiming at once surfaces as a unique violation here.
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "assign conversation")
		return
	}

	log.Info("Thread assigned", map[string]interface{}{
		"admin_id": adminID,
		"user_id":  userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":    "Conversation assigned",
		"assignment": assignment,
	})
}

// GetMyThread returns the customer's conversation with the shop
// GET /api/v1/inbox
func (ctrl *InboxController) GetMyThread(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	messages, err := ctrl.inboxService.UserThread(userID)
	if err != nil {
		log.Error("Failed to fetch user thread", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMyMessage sends a customer message to the shop
// POST /api/v1/inbox
func (ctrl *InboxController) SendMyMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid send message request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Message body is required",
		})
		return
	}

	message, err := ctrl.inboxService.SendFromUser(userID, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message body is required"})
			return
		}
		log.Error("Failed to send message", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to send message",
		})
		return
	}

	log.Info("Customer message sent", map[string]interface{}{
		"user_id":    userID,
		"message_id": message.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}
