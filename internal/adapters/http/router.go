package http

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/auth"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/domain"
)

const sessionIdentityKey = "identity"

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, accounts *auth.Service) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChatSessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.POST("/register", handleRegister(accounts))
	api.POST("/login", handleLogin(accounts))

	api.GET("/ws/chat", func(c *gin.Context) {
		identity, ok := resolveIdentity(c, accounts)
		if !ok {
			c.JSON(401, gin.H{"error": "unauthorized"})
			return
		}
		log.Info().Str("module", "adapters.http").Str("identity", string(identity)).Msg("ws chat endpoint hit")
		ctl.HandleChat(ctx, c, identity)
	})

	return r
}

// resolveIdentity maps the request to a stable identity: the login
// session first, then a bearer token (header or query, for non-browser
// clients).
func resolveIdentity(c *gin.Context, accounts *auth.Service) (domain.Identity, bool) {
	session := sessions.Default(c)
	if v, ok := session.Get(sessionIdentityKey).(string); ok && v != "" {
		return domain.Identity(v), true
	}

	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}
	}
	if token == "" {
		return "", false
	}
	identity, err := accounts.Resolve(token)
	if err != nil {
		return "", false
	}
	return identity, true
}
