package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type UserManagementController struct {
	userManagementService service.UserManagementService
}

func NewUserManagementController(userManagementService service.UserManagementService) *UserManagementController {
	return &UserManagementController{
		userManagementService: userManagementService,
	}
}

type AddAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

type EditAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"` // empty keeps the current password
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
	// CurrentRole locates the account's table before a role change.
	CurrentRole string `json:"current_role" binding:"required"`
}

// GetAccounts lists all admin and customer accounts (Admin only)
// GET /api/v1/admin/users
func (ctrl *UserManagementController) GetAccounts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accounts, err := ctrl.userManagementService.ListAccounts()
	if err != nil {
		log.Error("Failed to fetch accounts", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch accounts",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// AddAccount creates a customer or admin account (Admin only)
// POST /api/v1/admin/users
func (ctrl *UserManagementController) AddAccount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add account request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	account, err := ctrl.userManagementService.AddAccount(service.AccountInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be customer or admin"})
		case errors.Is(err, service.ErrEmailAlreadyExists):
			log.Warn("Add account rejected: email exists", map[string]interface{}{
				"email": req.Email,
			})
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		default:
			log.Error("Failed to add account", err, map[string]interface{}{
				"email": req.Email,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add account"})
		}
		return
	}

	log.Info("Account added", map[string]interface{}{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       account.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"account": account,
	})
}

// EditAccount updates an account, moving it between tables on role change (Admin only)
// PUT /api/v1/admin/users/:id
func (ctrl *UserManagementController) EditAccount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid account ID format", map[string]interface{}{
			"account_id": idStr,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid account ID",
		})
		return
	}

	var req EditAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid edit account request", map[string]interface{}{
			"account_id": id,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	account, err := ctrl.userManagementService.EditAccount(uint(id), req.CurrentRole, service.AccountInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be customer or admin"})
		case errors.Is(err, service.ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		default:
			log.Error("Failed to edit account", err, map[string]interface{}{
				"account_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit account"})
		}
		return
	}

	log.Info("Account edited", map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Account updated successfully",
		"account": account,
	})
}

// DeleteAccount removes an account with no related records (Admin only)
// DELETE /api/v1/admin/users/:id?role=customer
func (ctrl *UserManagementController) DeleteAccount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid account ID",
		})
		return
	}

	role := c.DefaultQuery("role", "customer")

	if err := ctrl.userManagementService.DeleteAccount(uint(id), role); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be customer or admin"})
		case errors.Is(err, service.ErrAccountInUse):
			log.Warn("Delete rejected: account has related records", map[string]interface{}{
				"account_id": id,
				"role":       role,
			})
			c.JSON(http.StatusConflict, gin.H{"error": "Account has orders, reviews or messages and cannot be deleted"})
		default:
			log.Error("Failed to delete account", err, map[string]interface{}{
				"account_id": id,
				"role":       role,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		}
		return
	}

	log.Info("Account deleted", map[string]interface{}{
		"account_id": id,
		"role":       role,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Account deleted successfully",
	})
}
