package app

import (
	"fmt"
	"slices"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/notnil/chess"
)

// Lesson size bounds: focus on a handful of key moments, not every move.
const (
	MinLessonComments = 3
	MaxLessonComments = 5
)

// ValidateLesson checks a final lesson payload against every document
// invariant. It aggregates all problems so the model can repair them in one
// corrective round. Idempotent: a lesson that passes keeps passing.
func ValidateLesson(l *models.Lesson) error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if l == nil {
		return &ValidationError{Problems: []string{"lesson payload is empty"}}
	}
	if n := len(l.Comments); n < MinLessonComments || n > MaxLessonComments {
		fail("lesson must have between %d and %d comments, got %d", MinLessonComments, MaxLessonComments, n)
	}

	for i, c := range l.Comments {
		step := i + 1
		if c.StepNumber != step {
			fail("comment %d: step_number must be %d, got %d", step, step, c.StepNumber)
		}
		if c.Text == "" {
			fail("comment %d: text is required", step)
		}

		fenOpt, err := chess.FEN(c.PositionFEN)
		if err != nil {
			fail("comment %d: position_fen %q does not parse: %v", step, c.PositionFEN, err)
		} else if c.MoveToMake != "" {
			// Decode checks syntax only; the move must also be playable.
			game := chess.NewGame(fenOpt)
			move, err := (chess.UCINotation{}).Decode(game.Position(), c.MoveToMake)
			if err != nil || game.Move(move) != nil {
				fail("comment %d: move_to_make %q is not legal from %q", step, c.MoveToMake, c.PositionFEN)
			}
		}

		for j, a := range c.Annotations {
			if err := validateAnnotation(a); err != nil {
				fail("comment %d annotation %d: %v", step, j+1, err)
			}
		}

		if c.Question != nil {
			if err := validateQuestion(*c.Question); err != nil {
				fail("comment %d question: %v", step, err)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateAnnotation(a models.BoardAnnotation) error {
	if !slices.Contains(models.AnnotationColors, a.Color) {
		return fmt.Errorf("unknown color %q", a.Color)
	}
	switch a.Type {
	case models.AnnotationArrow:
		if !ValidSquare(a.From) || !ValidSquare(a.To) {
			return fmt.Errorf("arrow squares %q -> %q are not valid board coordinates", a.From, a.To)
		}
	case models.AnnotationCircle, models.AnnotationHighlight:
		if !ValidSquare(a.Square) {
			return fmt.Errorf("%s square %q is not a valid board coordinate", a.Type, a.Square)
		}
	default:
		return fmt.Errorf("unknown annotation type %q", a.Type)
	}
	return nil
}

func validateQuestion(q models.Question) error {
	if q.Question == "" {
		return fmt.Errorf("question text is required")
	}
	switch q.Type {
	case models.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple_choice requires at least 2 options")
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("correct_answer %q is not among the options", q.CorrectAnswer)
		}
		if q.Explanation == "" {
			return fmt.Errorf("multiple_choice requires an explanation")
		}
	case models.QuestionMoveSelection, models.QuestionText:
		// No extra required fields.
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
