package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jacobclarklds/openlings-chess-app/app/models"
)

const testPGN = "1. e4 e5 2. Nf3 Nc6 1-0"

// scriptedSession replays a fixed sequence of replies and checks what the
// loop sends on each round.
type scriptedSession struct {
	t      *testing.T
	steps  []func(text string, results []models.ToolResult) (ModelReply, error)
	sends  int
	closed bool
}

func (s *scriptedSession) Send(_ context.Context, text string, results []models.ToolResult) (ModelReply, error) {
	if s.sends >= len(s.steps) {
		s.t.Fatalf("unexpected send %d: %q", s.sends+1, text)
	}
	step := s.steps[s.sends]
	s.sends++
	return step(text, results)
}

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

func lessonJSON(t *testing.T, l *models.Lesson) string {
	t.Helper()
	b, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal lesson: %v", err)
	}
	return string(b)
}

func TestGenerateLessonToolRoundThenFinal(t *testing.T) {
	final := lessonJSON(t, validLesson())
	session := &scriptedSession{t: t, steps: []func(string, []models.ToolResult) (ModelReply, error){
		func(text string, results []models.ToolResult) (ModelReply, error) {
			if results != nil {
				t.Fatalf("first send should carry no tool results, got %v", results)
			}
			if !strings.Contains(text, "1. e4 e5 2. Nf3 Nc6") {
				t.Fatalf("first send should carry the game, got %q", text)
			}
			return ModelReply{Calls: []models.ToolCall{
				{ID: "c1", Name: "get_position_type", Args: map[string]any{"fen": startFEN}},
			}}, nil
		},
		func(text string, results []models.ToolResult) (ModelReply, error) {
			if text != "" {
				t.Fatalf("tool-result send should carry no new text, got %q", text)
			}
			if len(results) != 1 || results[0].CallID != "c1" || !results[0].OK {
				t.Fatalf("tool results not fed back: %+v", results)
			}
			return ModelReply{Text: final}, nil
		},
	}}

	agent := NewCoachAgent(session, NewToolBridge(nil), 30)
	lesson, err := agent.GenerateLesson(context.Background(), testPGN, 1400, []string{"openings"})
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
	if len(lesson.Comments) != 3 {
		t.Fatalf("lesson has %d comments, want 3", len(lesson.Comments))
	}
	if lesson.UserElo != 1400 || len(lesson.FocusAreas) != 1 {
		t.Fatalf("lesson metadata not stamped: %+v", lesson)
	}

	history := agent.History()
	if len(history) != 2 {
		t.Fatalf("history has %d turns, want 2", len(history))
	}
	if len(history[0].Calls) != 1 || len(history[0].Results) != 1 {
		t.Fatalf("first turn should record the tool round: %+v", history[0])
	}
	if history[1].Response == "" {
		t.Fatal("final turn should record the model's answer")
	}
}

func TestGenerateLessonRepairsInvalidPayload(t *testing.T) {
	short := validLesson()
	short.Comments = short.Comments[:2]
	invalid := lessonJSON(t, short)
	valid := lessonJSON(t, validLesson())

	session := &scriptedSession{t: t, steps: []func(string, []models.ToolResult) (ModelReply, error){
		func(string, []models.ToolResult) (ModelReply, error) {
			return ModelReply{Text: invalid}, nil
		},
		func(text string, _ []models.ToolResult) (ModelReply, error) {
			if !strings.Contains(text, "invalid") || !strings.Contains(text, "comments") {
				t.Fatalf("correction prompt should name the problems, got %q", text)
			}
			return ModelReply{Text: valid}, nil
		},
	}}

	agent := NewCoachAgent(session, NewToolBridge(nil), 30)
	lesson, err := agent.GenerateLesson(context.Background(), testPGN, 1500, nil)
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
	if len(lesson.Comments) != 3 {
		t.Fatalf("repaired lesson has %d comments, want 3", len(lesson.Comments))
	}
}

func TestGenerateLessonRepairsMalformedJSON(t *testing.T) {
	valid := lessonJSON(t, validLesson())
	session := &scriptedSession{t: t, steps: []func(string, []models.ToolResult) (ModelReply, error){
		func(string, []models.ToolResult) (ModelReply, error) {
			return ModelReply{Text: "```json\n{\"comments\": [oops\n```"}, nil
		},
		func(text string, _ []models.ToolResult) (ModelReply, error) {
			if !strings.Contains(text, "Fix every problem") {
				t.Fatalf("expected a correction prompt, got %q", text)
			}
			return ModelReply{Text: valid}, nil
		},
	}}

	agent := NewCoachAgent(session, NewToolBridge(nil), 30)
	if _, err := agent.GenerateLesson(context.Background(), testPGN, 1500, nil); err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
}

func TestGenerateLessonIterationLimit(t *testing.T) {
	step := func(string, []models.ToolResult) (ModelReply, error) {
		return ModelReply{Calls: []models.ToolCall{
			{ID: "c", Name: "get_position_type", Args: map[string]any{"fen": startFEN}},
		}}, nil
	}
	session := &scriptedSession{t: t, steps: []func(string, []models.ToolResult) (ModelReply, error){step, step, step}}

	agent := NewCoachAgent(session, NewToolBridge(nil), 3)
	_, err := agent.GenerateLesson(context.Background(), testPGN, 1500, nil)
	if !errors.Is(err, ErrIterationLimit) {
		t.Fatalf("want ErrIterationLimit, got %v", err)
	}
	if session.sends != 3 {
		t.Fatalf("loop ran %d rounds, want exactly 3", session.sends)
	}
}

func TestGenerateLessonModelErrorIsFatal(t *testing.T) {
	boom := errors.New("model unreachable")
	session := &scriptedSession{t: t, steps: []func(string, []models.ToolResult) (ModelReply, error){
		func(string, []models.ToolResult) (ModelReply, error) {
			return ModelReply{}, boom
		},
	}}

	agent := NewCoachAgent(session, NewToolBridge(nil), 30)
	if _, err := agent.GenerateLesson(context.Background(), testPGN, 1500, nil); !errors.Is(err, boom) {
		t.Fatalf("model error should surface unchanged, got %v", err)
	}
}

func TestGenerateLessonRejectsBadPGN(t *testing.T) {
	session := &scriptedSession{t: t} // no sends allowed
	agent := NewCoachAgent(session, NewToolBridge(nil), 30)

	var verr *ValidationError
	if _, err := agent.GenerateLesson(context.Background(), "totally %% broken", 1500, nil); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if _, err := agent.GenerateLesson(context.Background(), "", 1500, nil); !errors.As(err, &verr) {
		t.Fatalf("empty PGN: want ValidationError, got %v", err)
	}
	if session.sends != 0 {
		t.Fatal("model should never be contacted for a bad PGN")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt(1200, []string{"endgames", "tactics"})
	if !strings.Contains(p, "1200") {
		t.Fatal("prompt should carry the student's rating")
	}
	for _, tool := range []string{"analyze_position", "analyze_move", "classify_opening", "get_position_type", "create_board_annotation", "create_question"} {
		if !strings.Contains(p, tool) {
			t.Fatalf("prompt should name tool %s", tool)
		}
	}
	if !strings.Contains(p, "endgames, tactics") {
		t.Fatal("prompt should carry the focus areas")
	}
}

func TestParseGame(t *testing.T) {
	gd, err := parseGame(`[White "anna"]
[Black "boris"]
[Result "1-0"]

1. e4 {[%clk 0:05:00]} e5 2. Nf3 Nc6 1-0`)
	if err != nil {
		t.Fatalf("parseGame: %v", err)
	}
	if gd.white != "anna" || gd.black != "boris" || gd.result != "1-0" {
		t.Fatalf("tags not read: %+v", gd)
	}
	if len(gd.ucis) != 4 || gd.ucis[0] != "e2e4" || gd.sans[2] != "Nf3" {
		t.Fatalf("moves wrong: sans=%v ucis=%v", gd.sans, gd.ucis)
	}
	// One position per ply plus the final one.
	if len(gd.fens) != 5 || gd.fens[0] != startFEN {
		t.Fatalf("positions wrong: %v", gd.fens)
	}
}
