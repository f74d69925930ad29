package models

// LessonRequest is the body of POST /lessons.
type LessonRequest struct {
	PGN        string   `json:"pgn" binding:"required"`
	UserElo    int      `json:"user_elo"`
	FocusAreas []string `json:"focus_areas"`
}
