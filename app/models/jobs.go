package models

// JobStatus transitions are monotonic: generating -> completed | failed.
type JobStatus string

const (
	JobGenerating JobStatus = "generating"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// LessonJob is what pollers see. Lesson is set iff completed,
// ErrorMessage iff failed.
type LessonJob struct {
	ID           string    `json:"id"`
	Status       JobStatus `json:"status"`
	Lesson       *Lesson   `json:"lesson,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
}
