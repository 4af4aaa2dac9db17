package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter はAPIのルーティングを構築します
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", handler.Healthz)

	v1 := router.Group("/api")
	{
		v1.POST("/uploads", handler.IssueUpload)
		v1.POST("/jobs", handler.SubmitJob)
		v1.GET("/jobs", handler.ListJobs)
		v1.GET("/jobs/:id", handler.GetJob)
		v1.POST("/jobs/reconcile", handler.Reconcile)
	}

	return router
}

// corsMiddleware は全オリジンを許可するCORSミドルウェア。
// フロントエンドはモバイルアプリとローカル開発環境のため制限しない。
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
