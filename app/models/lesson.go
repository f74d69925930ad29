package models

// Annotation and question enums mirror what the board renderer accepts.
// Changing them is a breaking change for that collaborator.
const (
	AnnotationArrow     = "arrow"
	AnnotationCircle    = "circle"
	AnnotationHighlight = "highlight"

	QuestionMultipleChoice = "multiple_choice"
	QuestionMoveSelection  = "move_selection"
	QuestionText           = "text"
)

// AnnotationColors is the closed set of colors the board renderer supports.
var AnnotationColors = []string{"red", "green", "blue", "yellow", "orange"}

// BoardAnnotation is a visual marker on the board. Arrows carry From/To,
// circles and highlights carry Square.
type BoardAnnotation struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	Color  string `json:"color"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Square string `json:"square,omitempty"`
}

// Question is an interactive check for the student. Options, CorrectAnswer
// and Explanation are required for multiple_choice only.
type Question struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// LessonComment is one step of a lesson: a position, commentary in markdown,
// optional visual annotations, an optional move to demonstrate, and an
// optional question.
type LessonComment struct {
	StepNumber  int               `json:"step_number"`
	PositionFEN string            `json:"position_fen"`
	Text        string            `json:"text"`
	Annotations []BoardAnnotation `json:"annotations,omitempty"`
	MoveToMake  string            `json:"move_to_make,omitempty"`
	Question    *Question         `json:"question,omitempty"`
}

// Lesson is the interchange document handed to the rendering layer.
type Lesson struct {
	ID         string          `json:"id"`
	Comments   []LessonComment `json:"comments"`
	FocusAreas []string        `json:"focus_areas,omitempty"`
	UserElo    int             `json:"user_elo,omitempty"`
}
