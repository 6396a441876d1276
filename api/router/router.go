package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"postforge/api/handlers"
	"postforge/auth"
	"postforge/db"
	"postforge/services"
)

func New(jwtMgr *auth.JWTManager, contentSvc *services.ContentService) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.POST("/content/generate", handlers.GenerateContentHandler(jwtMgr, contentSvc))
		api.GET("/content/:id", handlers.GetContentHandler(jwtMgr, contentSvc))
		api.DELETE("/content/:id", handlers.DeleteContentHandler(jwtMgr, contentSvc))
	}

	return r
}
