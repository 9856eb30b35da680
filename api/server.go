package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vestalabs/habitat/api/handlers"
)

// CORSMiddleware lets browser dashboards and agent frameworks call the
// API from any origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NewRouter builds the engine with middleware and every route bound to
// the handler set.
func NewRouter(a *handlers.API) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())
	SetupRoutes(router, a)
	return router
}
