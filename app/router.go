// Package app wires the lesson-generation services behind a shared HTTP router.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP router over a lesson service.
func NewRouter(svc *LessonService) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)
	router.POST("/lessons", svc.CreateLessonHandler)
	router.GET("/lessons/:id", svc.GetLessonStatusHandler)
	router.DELETE("/lessons/:id", svc.DeleteLessonHandler)

	return router
}
