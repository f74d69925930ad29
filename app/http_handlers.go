package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateLesson accepts a game and returns a job id immediately; generation
// runs in the background and the client polls GetLessonStatus.
func (s *LessonService) CreateLessonHandler(c *gin.Context) {
	var req models.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.CreateLesson(req)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		log.Printf("CreateLesson failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lesson"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": id,
		"status": models.JobGenerating,
	})
}

// GetLessonStatusHandler returns the current job state. Safe to call
// repeatedly; terminal jobs always answer the same way.
func (s *LessonService) GetLessonStatusHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lesson id"})
		return
	}

	job, ok := s.GetStatus(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteLessonHandler removes a job and any persisted result. A running job
// is cancelled; its oracle slots are released by the run itself.
func (s *LessonService) DeleteLessonHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing lesson id"})
		return
	}

	if !s.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := DeleteLessonRow(ctx, id); err != nil {
		log.Printf("failed to delete persisted lesson %s: %v", id, err)
	}

	c.Status(http.StatusNoContent)
}
