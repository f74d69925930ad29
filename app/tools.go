package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/google/uuid"
)

// ToolKind is the closed set of tools the model may call. Adding or removing
// a kind is a breaking change to the loop's behavior; dispatch switches over
// it exhaustively.
type ToolKind int

const (
	ToolAnalyzePosition ToolKind = iota
	ToolAnalyzeMove
	ToolClassifyOpening
	ToolGetPositionType
	ToolCreateBoardAnnotation
	ToolCreateQuestion
)

var toolNames = map[string]ToolKind{
	"analyze_position":        ToolAnalyzePosition,
	"analyze_move":            ToolAnalyzeMove,
	"classify_opening":        ToolClassifyOpening,
	"get_position_type":       ToolGetPositionType,
	"create_board_annotation": ToolCreateBoardAnnotation,
	"create_question":         ToolCreateQuestion,
}

// ParseToolKind resolves a wire name to a tool kind.
func ParseToolKind(name string) (ToolKind, bool) {
	k, ok := toolNames[name]
	return k, ok
}

// ToolBridge dispatches model tool calls to the analysis services. Handler
// failures of any kind come back as failed ToolResults, never as errors:
// the loop needs failures as feedback it can react to.
type ToolBridge struct {
	coordinator *AnalysisCoordinator
}

func NewToolBridge(coordinator *AnalysisCoordinator) *ToolBridge {
	return &ToolBridge{coordinator: coordinator}
}

// Dispatch validates the call's arguments and runs the matching handler.
func (b *ToolBridge) Dispatch(ctx context.Context, call models.ToolCall) models.ToolResult {
	payload, err := b.run(ctx, call)
	if err != nil {
		log.Printf("tool %s failed: %v", call.Name, err)
		return models.ToolResult{CallID: call.ID, Name: call.Name, OK: false, ErrorMessage: err.Error()}
	}
	return models.ToolResult{CallID: call.ID, Name: call.Name, OK: true, Payload: payload}
}

func (b *ToolBridge) run(ctx context.Context, call models.ToolCall) (map[string]any, error) {
	kind, ok := ParseToolKind(call.Name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}

	args := toolArgs(call.Args)
	switch kind {
	case ToolAnalyzePosition:
		fen, err := args.str("fen")
		if err != nil {
			return nil, err
		}
		elo, err := args.integer("user_elo")
		if err != nil {
			return nil, err
		}
		analysis, err := b.coordinator.AnalyzePosition(ctx, fen, elo)
		if err != nil {
			return nil, err
		}
		return toPayload(analysis)

	case ToolAnalyzeMove:
		fen, err := args.str("fen_before")
		if err != nil {
			return nil, err
		}
		move, err := args.str("move")
		if err != nil {
			return nil, err
		}
		elo, err := args.integer("user_elo")
		if err != nil {
			return nil, err
		}
		report, err := b.coordinator.AnalyzeMove(ctx, fen, move, elo)
		if err != nil {
			return nil, err
		}
		return toPayload(report)

	case ToolClassifyOpening:
		pgn, err := args.str("pgn")
		if err != nil {
			return nil, err
		}
		match, ok := ClassifyOpening(pgn)
		if !ok {
			return map[string]any{"matched": false}, nil
		}
		payload, err := toPayload(match)
		if err != nil {
			return nil, err
		}
		payload["matched"] = true
		return payload, nil

	case ToolGetPositionType:
		fen, err := args.str("fen")
		if err != nil {
			return nil, err
		}
		phase, err := PositionType(fen)
		if err != nil {
			return nil, err
		}
		return map[string]any{"position_type": phase}, nil

	case ToolCreateBoardAnnotation:
		typ, err := args.str("annotation_type")
		if err != nil {
			return nil, err
		}
		color, err := args.str("color")
		if err != nil {
			return nil, err
		}
		ann, err := NewBoardAnnotation(typ, color, args.optStr("from_square"), args.optStr("to_square"), args.optStr("square"))
		if err != nil {
			return nil, err
		}
		return toPayload(ann)

	case ToolCreateQuestion:
		typ, err := args.str("question_type")
		if err != nil {
			return nil, err
		}
		text, err := args.str("question_text")
		if err != nil {
			return nil, err
		}
		q, err := NewQuestion(typ, text, args.optStrSlice("options"), args.optStr("correct_answer"), args.optStr("explanation"))
		if err != nil {
			return nil, err
		}
		return toPayload(q)
	}
	return nil, fmt.Errorf("unhandled tool kind %d", kind)
}

// NewBoardAnnotation builds a validated board annotation. Pure; the bridge
// returns it to the model, which embeds it in the final lesson payload.
func NewBoardAnnotation(typ, color, from, to, square string) (models.BoardAnnotation, error) {
	if !slices.Contains(models.AnnotationColors, color) {
		return models.BoardAnnotation{}, newValidationError("unknown annotation color %q", color)
	}
	ann := models.BoardAnnotation{ID: uuid.NewString(), Type: typ, Color: color}
	switch typ {
	case models.AnnotationArrow:
		if !ValidSquare(from) || !ValidSquare(to) {
			return models.BoardAnnotation{}, newValidationError("arrow needs valid from_square and to_square, got %q -> %q", from, to)
		}
		ann.From = from
		ann.To = to
	case models.AnnotationCircle, models.AnnotationHighlight:
		if !ValidSquare(square) {
			return models.BoardAnnotation{}, newValidationError("%s needs a valid square, got %q", typ, square)
		}
		ann.Square = square
	default:
		return models.BoardAnnotation{}, newValidationError("unknown annotation type %q", typ)
	}
	return ann, nil
}

// NewQuestion builds a validated question. Pure.
func NewQuestion(typ, text string, options []string, correct, explanation string) (models.Question, error) {
	if text == "" {
		return models.Question{}, newValidationError("question text is required")
	}
	q := models.Question{Type: typ, Question: text}
	switch typ {
	case models.QuestionMultipleChoice:
		if len(options) < 2 {
			return models.Question{}, newValidationError("multiple choice questions require at least 2 options")
		}
		if !slices.Contains(options, correct) {
			return models.Question{}, newValidationError("correct_answer %q is not among the options", correct)
		}
		if explanation == "" {
			return models.Question{}, newValidationError("multiple choice questions require an explanation")
		}
		q.Options = options
		q.CorrectAnswer = correct
		q.Explanation = explanation
	case models.QuestionMoveSelection, models.QuestionText:
		q.CorrectAnswer = correct
		q.Explanation = explanation
	default:
		return models.Question{}, newValidationError("unknown question type %q", typ)
	}
	return q, nil
}

// toolArgs wraps the raw argument record with typed accessors. JSON numbers
// arrive as float64.
type toolArgs map[string]any

func (a toolArgs) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", newValidationError("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", newValidationError("argument %q must be a non-empty string", key)
	}
	return s, nil
}

func (a toolArgs) optStr(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a toolArgs) integer(key string) (int, error) {
	v, ok := a[key]
	if !ok {
		return 0, newValidationError("missing required argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, newValidationError("argument %q must be an integer", key)
	}
}

func (a toolArgs) optStrSlice(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toPayload flattens a typed result into the map shape function responses
// are sent back in.
func toPayload(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
