package app

import (
	"context"
	"log"
	"sync"

	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/google/uuid"
)

// DefaultUserElo is assumed when a request carries no rating, matching the
// midpoint the prompts were tuned for.
const DefaultUserElo = 1500

// LessonService owns lesson-generation jobs. Each job's status is mutated
// only by its own background goroutine; pollers read through the lock and
// never observe a partially written status/result pair.
type LessonService struct {
	llm      ModelClient
	bridge   *ToolBridge
	agentCfg config.AgentConfig

	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

type jobEntry struct {
	status   models.JobStatus
	lesson   *models.Lesson
	errorMsg string
	cancel   context.CancelFunc
}

func NewLessonService(llm ModelClient, bridge *ToolBridge, agentCfg config.AgentConfig) *LessonService {
	return &LessonService{
		llm:      llm,
		bridge:   bridge,
		agentCfg: agentCfg,
		jobs:     make(map[string]*jobEntry),
	}
}

// CreateLesson validates the request, registers a job in status generating,
// and launches the agent run on a background context detached from the
// caller. Returns the job id immediately.
func (s *LessonService) CreateLesson(req models.LessonRequest) (string, error) {
	// Request-level validation is fatal, unlike payload validation inside
	// the loop.
	if _, err := parseGame(req.PGN); err != nil {
		return "", err
	}
	if req.UserElo <= 0 {
		req.UserElo = DefaultUserElo
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.jobs[id] = &jobEntry{status: models.JobGenerating, cancel: cancel}
	s.mu.Unlock()

	go s.run(ctx, id, req)
	return id, nil
}

// GetStatus is idempotent and side-effect-free.
func (s *LessonService) GetStatus(id string) (models.LessonJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.jobs[id]
	if !ok {
		return models.LessonJob{}, false
	}
	return models.LessonJob{
		ID:           id,
		Status:       entry.status,
		Lesson:       entry.lesson,
		ErrorMessage: entry.errorMsg,
	}, true
}

// Delete cancels a running job and removes it. The run's in-flight work may
// finish on its own; its result is discarded because the entry is gone.
func (s *LessonService) Delete(id string) bool {
	s.mu.Lock()
	entry, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	entry.cancel()
	return true
}

func (s *LessonService) run(ctx context.Context, id string, req models.LessonRequest) {
	lesson, err := s.generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			// Job was deleted while running; nothing to record.
			return
		}
		log.Printf("lesson job %s failed: %v", id, err)
		s.fail(id, err.Error())
		return
	}
	lesson.ID = id
	if !s.complete(id, lesson) {
		// Job deleted while generating; the result is discarded, not saved.
		return
	}

	if err := SaveLesson(context.Background(), lesson); err != nil {
		log.Printf("failed to persist lesson %s: %v", id, err)
	}
}

// generate runs one full agent session for a request. Also used by the
// queue worker, which has no job store.
func (s *LessonService) generate(ctx context.Context, req models.LessonRequest) (*models.Lesson, error) {
	session, err := s.llm.StartSession(ctx, BuildSystemPrompt(req.UserElo, req.FocusAreas))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("failed to close model session: %v", err)
		}
	}()

	agent := NewCoachAgent(session, s.bridge, s.agentCfg.MaxIterations)
	return agent.GenerateLesson(ctx, req.PGN, req.UserElo, req.FocusAreas)
}

// GenerateSync produces and persists a lesson for one queue message,
// blocking until done. Used by cmd/worker.
func (s *LessonService) GenerateSync(ctx context.Context, msg models.LessonJobMessage) (*models.Lesson, error) {
	req := models.LessonRequest{PGN: msg.PGN, UserElo: msg.UserElo, FocusAreas: msg.FocusAreas}
	if req.UserElo <= 0 {
		req.UserElo = DefaultUserElo
	}
	lesson, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if msg.JobID != "" {
		lesson.ID = msg.JobID
	} else {
		lesson.ID = uuid.NewString()
	}
	if err := SaveLesson(ctx, lesson); err != nil {
		log.Printf("failed to persist lesson %s: %v", lesson.ID, err)
	}
	return lesson, nil
}

// complete and fail are the only status writers. Both are no-ops when the
// job is gone or already terminal: transitions are exactly-once. complete
// reports whether the transition happened so the caller can skip
// persistence for a discarded result.
func (s *LessonService) complete(id string, lesson *models.Lesson) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[id]
	if !ok || entry.status != models.JobGenerating {
		return false
	}
	entry.status = models.JobCompleted
	entry.lesson = lesson
	return true
}

func (s *LessonService) fail(id, msg string) {
	if msg == "" {
		msg = "lesson generation failed"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[id]
	if !ok || entry.status != models.JobGenerating {
		return
	}
	entry.status = models.JobFailed
	entry.errorMsg = msg
}
