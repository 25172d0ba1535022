package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/booking-client/backend"
	bk "github.com/tablebook/booking-client/booking"
	"github.com/tablebook/booking-client/session"
)

//go:generate mockgen -source=auth_handler.go -destination=mocks/mock_auth_handler.go -package=mocks

type AuthService interface {
	Login(ctx context.Context, credentials backend.Credentials) (string, error)
	Signup(ctx context.Context, credentials backend.Credentials) error
	Logout(ctx context.Context) error
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	service AuthService
	session SessionIdentity
}

func NewAuthHandler(service AuthService, session SessionIdentity) *AuthHandler {
	return &AuthHandler{service: service, session: session}
}

func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", h.Me)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	err := h.service.Signup(c.Request.Context(), backend.Credentials{Username: req.Username, Password: req.Password})

	if err != nil {
		c.Error(err)
		c.JSON(upstreamStatus(err), gin.H{"error": backend.Message(err, bk.MsgSignupFailed)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful! Please log in."})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	username, err := h.service.Login(c.Request.Context(), backend.Credentials{Username: req.Username, Password: req.Password})

	if err != nil {
		c.Error(err)

		var remoteErr *backend.RemoteError
		if errors.Is(err, session.ErrAlreadyAuthenticated) {
			c.JSON(http.StatusConflict, gin.H{"error": "already logged in, log out first"})
		} else if errors.As(err, &remoteErr) {
			c.JSON(upstreamStatus(err), gin.H{"error": backend.Message(err, bk.MsgLoginFailed)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": bk.MsgLoginFailed})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"username": username})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	username, ok := h.session.Identity()

	c.IndentedJSON(http.StatusOK, gin.H{
		"authenticated": ok,
		"username":      username,
	})
}
