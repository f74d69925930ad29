package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/notnil/chess"
)

// ModelReply is one reasoning-model response: tool calls, a final text
// payload, or both (trailing text alongside calls is kept as commentary).
type ModelReply struct {
	Text  string
	Calls []models.ToolCall
}

// ModelSession is one conversation with the reasoning model. The session
// owns the transcript; Send appends to it.
type ModelSession interface {
	Send(ctx context.Context, text string, results []models.ToolResult) (ModelReply, error)
	Close() error
}

// ModelClient opens sessions. *GeminiClient implements it; tests fake it.
type ModelClient interface {
	StartSession(ctx context.Context, systemPrompt string) (ModelSession, error)
}

// CoachAgent drives the reasoning model through the tool catalog until it
// produces a valid lesson. The loop is bounded: every round either
// dispatches tool calls, feeds back a correction, or terminates.
type CoachAgent struct {
	session       ModelSession
	bridge        *ToolBridge
	maxIterations int
	history       []models.AgentTurn
}

func NewCoachAgent(session ModelSession, bridge *ToolBridge, maxIterations int) *CoachAgent {
	if maxIterations <= 0 {
		maxIterations = 30
	}
	return &CoachAgent{session: session, bridge: bridge, maxIterations: maxIterations}
}

// History returns the ordered turns taken so far. Append-only for the
// lifetime of one run.
func (a *CoachAgent) History() []models.AgentTurn {
	return a.history
}

// GenerateLesson runs the agentic loop for one game. It terminates within
// maxIterations with either a validated lesson or a fatal error.
func (a *CoachAgent) GenerateLesson(ctx context.Context, pgn string, userElo int, focusAreas []string) (*models.Lesson, error) {
	gd, err := parseGame(pgn)
	if err != nil {
		return nil, err
	}

	outgoingText := buildUserPrompt(gd, userElo)
	var outgoingResults []models.ToolResult

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		reply, err := a.session.Send(ctx, outgoingText, outgoingResults)
		if err != nil {
			return nil, err
		}

		turn := models.AgentTurn{Request: outgoingText, Calls: reply.Calls, Response: reply.Text}

		if len(reply.Calls) > 0 {
			// Dispatch sequentially; each result is paired to its call id
			// and the whole turn lands in history before the next send.
			results := make([]models.ToolResult, 0, len(reply.Calls))
			for _, call := range reply.Calls {
				results = append(results, a.bridge.Dispatch(ctx, call))
			}
			turn.Results = results
			a.history = append(a.history, turn)
			outgoingText, outgoingResults = "", results
			continue
		}

		a.history = append(a.history, turn)

		lesson, err := parseLessonPayload(reply.Text)
		if err == nil {
			err = ValidateLesson(lesson)
		}
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				// The model gets a chance to repair its answer.
				outgoingText, outgoingResults = correctionPrompt(vErr), nil
				continue
			}
			return nil, err
		}

		lesson.UserElo = userElo
		lesson.FocusAreas = focusAreas
		return lesson, nil
	}

	return nil, fmt.Errorf("%w: no valid lesson after %d iterations", ErrIterationLimit, a.maxIterations)
}

// parseLessonPayload decodes the model's final text as a lesson document.
// Malformed JSON is a ValidationError so the loop can ask for a repair.
func parseLessonPayload(text string) (*models.Lesson, error) {
	body := ExtractJSONBlock(text)
	if body == "" {
		return nil, newValidationError("final answer must be a JSON lesson document, got empty text")
	}
	var lesson models.Lesson
	if err := json.Unmarshal([]byte(body), &lesson); err != nil {
		return nil, newValidationError("final answer is not valid lesson JSON: %v", err)
	}
	return &lesson, nil
}

func correctionPrompt(vErr *ValidationError) string {
	var b strings.Builder
	b.WriteString("The lesson you produced is invalid. Fix every problem below and resend the complete lesson JSON:\n")
	for _, p := range vErr.Problems {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String()
}

// gameData is what the prompt builder needs from a parsed game.
type gameData struct {
	pgn    string
	white  string
	black  string
	result string
	// fens[i] is the position before ply i+1; the final entry is the end
	// position. sans and ucis are indexed by ply.
	fens []string
	sans []string
	ucis []string
}

// parseGame parses and normalizes a PGN. A malformed PGN is a request-level
// ValidationError and fatal for the run.
func parseGame(pgn string) (gameData, error) {
	tags := ParsePGNTags(pgn)

	g := chess.NewGame()
	if err := g.UnmarshalText([]byte(NormalizePGN(pgn))); err != nil {
		return gameData{}, newValidationError("invalid PGN: %v", err)
	}
	moves := g.Moves()
	if len(moves) == 0 {
		return gameData{}, newValidationError("PGN contains no moves")
	}
	positions := g.Positions()

	gd := gameData{
		pgn:    NormalizePGN(pgn),
		white:  tagOr(tags, "White", "Unknown"),
		black:  tagOr(tags, "Black", "Unknown"),
		result: tagOr(tags, "Result", "*"),
	}
	for _, p := range positions {
		gd.fens = append(gd.fens, p.String())
	}
	for i, m := range moves {
		gd.sans = append(gd.sans, chess.AlgebraicNotation{}.Encode(positions[i], m))
		gd.ucis = append(gd.ucis, chess.UCINotation{}.Encode(positions[i], m))
	}
	return gd, nil
}

func tagOr(tags map[string]string, key, def string) string {
	if v := tags[key]; v != "" {
		return v
	}
	return def
}

// BuildSystemPrompt describes the coach role, the tool catalog, and the
// exact final-payload contract.
func BuildSystemPrompt(userElo int, focusAreas []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert chess coach creating a personalized lesson for a student with ELO rating %d.

Your goal is to analyze the provided chess game and create educational commentary that:
1. Identifies key moments and critical positions
2. Explains strategic and tactical concepts appropriate for the student's level
3. Uses visual annotations (arrows, circles, highlights) to illustrate ideas
4. Asks interactive questions to test understanding
5. Provides clear, encouraging, and actionable feedback

You have access to chess analysis tools:
- analyze_position: engine evaluation plus a human-like estimate for the student's level
- analyze_move: move quality classification against the engine's best
- classify_opening: identify the opening played
- get_position_type: opening/middlegame/endgame
- create_board_annotation: build a validated visual marker to embed in a comment
- create_question: build a validated interactive question to embed in a comment

Guidelines:
- Focus on 3-5 key moments in the game (do not comment on every move)
- Start with an opening overview, then critical moments, then a conclusion
- Use markdown formatting in comment text
- Add 1-2 visual annotations per position to highlight key squares or pieces
- Include a question every 2-3 comments to engage the student
- Adapt complexity to the student's ELO level
- Be encouraging and constructive, not critical

When you are done analyzing, reply with ONLY a JSON document (no prose outside it) of this exact shape:
{
  "comments": [
    {
      "step_number": 1,
      "position_fen": "<FEN of the position this step discusses>",
      "text": "<markdown commentary>",
      "annotations": [<annotation objects exactly as create_board_annotation returned them>],
      "move_to_make": "<optional UCI move to demonstrate, legal from position_fen>",
      "question": <optional question object exactly as create_question returned it>
    }
  ]
}
step_number values must be contiguous starting at 1, and the lesson must have between 3 and 5 comments.`, userElo)

	if len(focusAreas) > 0 {
		fmt.Fprintf(&b, "\n- Pay special attention to: %s", strings.Join(focusAreas, ", "))
	}
	return b.String()
}

func buildUserPrompt(gd gameData, userElo int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Please analyze this chess game and create a lesson:

Game Details:
- White: %s
- Black: %s
- Result: %s
- Total Moves: %d

PGN:
%s

Student ELO: %d

Positions by ply (FEN before each move):
`, gd.white, gd.black, gd.result, len(gd.ucis), gd.pgn, userElo)

	for i := range gd.ucis {
		fmt.Fprintf(&b, "ply %d: %s plays %s (%s) from %s\n", i+1, plyColor(i), gd.sans[i], gd.ucis[i], gd.fens[i])
	}

	b.WriteString("\nUse the tools to analyze the most instructive moments, then reply with the final lesson JSON.")
	return b.String()
}

func plyColor(ply int) string {
	if ply%2 == 0 {
		return "white"
	}
	return "black"
}
