// Package router registers the governance service's HTTP routes.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/agentgov/governor/internal/governor/handler"
	httpopts "github.com/agentgov/governor/pkg/options/http"
)

// New builds the gin engine with middleware and all routes registered.
// dbHealth is probed by the health endpoint.
func New(opts *httpopts.Options, agents *handler.AgentHandler, chat *handler.ChatHandler, knowledge *handler.KnowledgeHandler, dbHealth func() error) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Agent governance API is running."})
	})
	engine.GET("/healthz", func(c *gin.Context) {
		if err := dbHealth(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/new_agent", agents.Create)
	engine.GET("/get_agents", agents.List)
	engine.GET("/get_agent/:agent_id", agents.Get)
	engine.DELETE("/delete_agent", agents.Delete)
	engine.POST("/chat_completion", chat.Complete)

	agent := engine.Group("/agent/:agent_id")
	{
		agent.POST("/add_knowledge_source", knowledge.Attach)
		agent.GET("/get_knowledge_source/:knowledge_source_id", knowledge.Fetch)
		agent.GET("/knowledge_sources", knowledge.List)
	}

	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client", c.ClientIP(),
		)
	}
}
