package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/analysis"
	googleauth "github.com/vikasdeshmukh63/rfp-analysis-server/internal/auth"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/chat"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/documents"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/config"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/metrics"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/middleware"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server/respond"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/synopsis"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	GoogleAuth      *googleauth.GoogleService
	UsersHandler    *users.Handler
	DocumentHandler *documents.Handler
	AnalysisHandler *analysis.Handler
	ChatHandler     *chat.Handler
	SynopsisHandler *synopsis.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimitConfig()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}
	if deps.SynopsisHandler != nil {
		deps.SynopsisHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimitConfig throttles AI-invoking endpoints harder than the rest of
// the API.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":                         {Rate: 50, Burst: 100},
			middleware.RateLimitGroupAnalysis: {Rate: 1, Burst: 5},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			if path == "" {
				path = c.Request.URL.Path
			}
			switch {
			case c.Request.Method == http.MethodPost && strings.Contains(path, "/analysis/"),
				c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/chat/messages"),
				c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/chat/analyze-document"),
				strings.HasSuffix(path, "/analysis/test-ai"),
				strings.HasSuffix(path, "/synopsis/analyze-rfp"):
				return middleware.RateLimitGroupAnalysis
			default:
				return "DEFAULT"
			}
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
