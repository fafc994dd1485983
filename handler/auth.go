package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/service"
)

type AuthHandler struct {
	config      *config.Config
	revocations service.RevocationStore
	dashboards  *service.DashboardService
}

func NewAuthHandler(cfg *config.Config, revocations service.RevocationStore, dashboards *service.DashboardService) *AuthHandler {
	return &AuthHandler{config: cfg, revocations: revocations, dashboards: dashboards}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt string     `json:"expires_at"`
	User      model.User `json:"user"`
}

// Login handles clerk login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user := h.config.FindUser(req.Email)
	// Simple password check (in production, use bcrypt)
	if user == nil || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user, &h.config.Auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	logger.Info(logger.WithActor(c.Request.Context(), user.ID, user.CourtID), "clerk logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User: model.User{
			ID:         user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			Role:       user.Role,
			CourtID:    user.CourtID,
			CourtName:  user.CourtName,
			CountyID:   user.CountyID,
			CountyName: user.CountyName,
			IsActive:   !user.Inactive,
		},
	})
}

// Logout revokes the session token and drops its dashboard state
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)

	if err := h.revocations.Revoke(c.Request.Context(), sess.TokenID, sess.ExpiresAt); err != nil {
		respondError(c, err)
		return
	}
	h.dashboards.Drop(sess)

	logger.Info(c.Request.Context(), "clerk logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetCurrentUser returns the session of the caller
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetSession(c))
}
