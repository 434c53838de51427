package handler

import (
	"net/http"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/config"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/middleware"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	cfg      *config.Config
	accounts []config.User
	users    service.UserRepository
}

func NewAuthHandler(cfg *config.Config, accounts []config.User, users service.UserRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, accounts: accounts, users: users}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Entity    string `json:"entity"`
}

// Login handles user login against the seeded demo accounts
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var account *config.User
	for i := range h.accounts {
		if h.accounts[i].Username == req.Username {
			account = &h.accounts[i]
			break
		}
	}
	if account == nil || account.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user.ID, user.Username, user.Role, user.Entity, &h.cfg.Auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		UserID:    user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		Entity:    user.Entity,
	})
}

// GetCurrentUser returns the current user info, including the workflow
// actions their role allows per contract status.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
		"entity":   user.Entity,
	})
}

// ListUsers returns all users, for picking ad-hoc reviewers.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.users.List()})
}
