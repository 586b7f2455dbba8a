package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/auth"
	"github.com/dkeye/Chat/internal/domain"
)

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleRegister(accounts *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
			return
		}
		user, err := accounts.Register(c.Request.Context(), domain.Identity(req.Username), req.DisplayName, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrDuplicateUser):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, auth.ErrWeakPassword),
				errors.Is(err, auth.ErrPasswordTooLong),
				errors.Is(err, domain.ErrUsernameEmpty),
				errors.Is(err, domain.ErrUsernameTooLong):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				log.Error().Err(err).Str("module", "adapters.http").Msg("register failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			}
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func handleLogin(accounts *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid username"})
			return
		}
		token, user, err := accounts.Login(c.Request.Context(), domain.Identity(req.Username), req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			log.Error().Err(err).Str("module", "adapters.http").Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		session := sessions.Default(c)
		session.Set(sessionIdentityKey, string(user.Username))
		if err := session.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}
