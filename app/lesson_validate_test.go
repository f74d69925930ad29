package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/jacobclarklds/openlings-chess-app/app/models"
)

func validLesson() *models.Lesson {
	return &models.Lesson{
		ID: "lesson-1",
		Comments: []models.LessonComment{
			{
				StepNumber:  1,
				PositionFEN: startFEN,
				Text:        "We start from the initial position.",
				Annotations: []models.BoardAnnotation{
					{Type: models.AnnotationArrow, Color: "green", From: "e2", To: "e4"},
				},
				MoveToMake: "e2e4",
			},
			{
				StepNumber:  2,
				PositionFEN: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
				Text:        "Black should contest the center.",
				Question: &models.Question{
					Type:          models.QuestionMultipleChoice,
					Question:      "How does black fight for the center?",
					Options:       []string{"e7e5", "a7a6"},
					CorrectAnswer: "e7e5",
					Explanation:   "e5 stakes an equal claim in the center.",
				},
			},
			{
				StepNumber:  3,
				PositionFEN: "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
				Text:        "Both sides have a central pawn; development comes next.",
			},
		},
	}
}

func TestValidateLessonAccepts(t *testing.T) {
	l := validLesson()
	if err := ValidateLesson(l); err != nil {
		t.Fatalf("valid lesson rejected: %v", err)
	}
	// Validation never mutates; a passing lesson keeps passing.
	if err := ValidateLesson(l); err != nil {
		t.Fatalf("second validation rejected: %v", err)
	}
}

func TestValidateLessonCommentCount(t *testing.T) {
	l := validLesson()
	l.Comments = l.Comments[:2]
	var verr *ValidationError
	if err := ValidateLesson(l); !errors.As(err, &verr) {
		t.Fatalf("two comments should be rejected, got %v", err)
	}

	l = validLesson()
	extra := l.Comments[2]
	for i := 4; i <= 6; i++ {
		extra.StepNumber = i
		l.Comments = append(l.Comments, extra)
	}
	if err := ValidateLesson(l); !errors.As(err, &verr) {
		t.Fatalf("six comments should be rejected, got %v", err)
	}
}

func TestValidateLessonStepNumbers(t *testing.T) {
	l := validLesson()
	l.Comments[1].StepNumber = 5
	err := ValidateLesson(l)
	if err == nil {
		t.Fatal("non-contiguous step numbers should be rejected")
	}
	if !strings.Contains(err.Error(), "step_number") {
		t.Fatalf("error should name the step_number problem: %v", err)
	}
}

func TestValidateLessonBadFEN(t *testing.T) {
	l := validLesson()
	l.Comments[0].PositionFEN = "not a position"
	if err := ValidateLesson(l); err == nil {
		t.Fatal("bad FEN should be rejected")
	}
}

func TestValidateLessonIllegalMoveToMake(t *testing.T) {
	// All of these are well-formed coordinate pairs; none is playable from
	// the start position.
	for _, move := range []string{"e2e5", "e2e7", "e7e5", "a1a8"} {
		l := validLesson()
		l.Comments[0].MoveToMake = move
		if err := ValidateLesson(l); err == nil {
			t.Errorf("move_to_make %q should be rejected", move)
		}
	}

	l := validLesson()
	l.Comments[0].MoveToMake = "not-a-move"
	if err := ValidateLesson(l); err == nil {
		t.Fatal("unparseable move_to_make should be rejected")
	}
}

func TestValidateLessonMissingText(t *testing.T) {
	l := validLesson()
	l.Comments[2].Text = ""
	if err := ValidateLesson(l); err == nil {
		t.Fatal("empty comment text should be rejected")
	}
}

func TestValidateLessonBadAnnotation(t *testing.T) {
	l := validLesson()
	l.Comments[0].Annotations[0].From = "e9"
	if err := ValidateLesson(l); err == nil {
		t.Fatal("arrow with off-board square should be rejected")
	}
}

func TestValidateLessonBadQuestion(t *testing.T) {
	l := validLesson()
	l.Comments[1].Question.Explanation = ""
	if err := ValidateLesson(l); err == nil {
		t.Fatal("multiple choice without explanation should be rejected")
	}
}

func TestValidateLessonAggregatesProblems(t *testing.T) {
	l := validLesson()
	l.Comments[0].Text = ""
	l.Comments[1].StepNumber = 9
	l.Comments[2].PositionFEN = "junk"

	var verr *ValidationError
	if err := ValidateLesson(l); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	} else if len(verr.Problems) < 3 {
		t.Fatalf("want all problems reported at once, got %v", verr.Problems)
	}
}

func TestValidateLessonNil(t *testing.T) {
	if err := ValidateLesson(nil); err == nil {
		t.Fatal("nil lesson should be rejected")
	}
}
