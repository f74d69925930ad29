package models

// LessonJobMessage is the payload a worker pulls off the queue.
type LessonJobMessage struct {
	JobID      string   `json:"job_id"`
	PGN        string   `json:"pgn"`
	UserElo    int      `json:"user_elo"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}
