// --- analysis.go ---
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/notnil/chess"
)

// Centipawn-loss thresholds for move classification, from the mover's
// viewpoint. A loss equal to a boundary falls into the better tier.
const (
	BestThreshold       = 10  // 0.10 pawns
	GoodThreshold       = 50  // 0.50 pawns
	InaccuracyThreshold = 100 // 1.00 pawns
	MistakeThreshold    = 300 // 3.00 pawns; at or above is a blunder
)

// MateValue is the saturated centipawn magnitude for forced-mate scores.
const MateValue = 10000

// Elo domain for the depth mapping; mirrors the bounds the tool schema
// advertises to the model.
const (
	minElo = 800
	maxElo = 2800
)

// AnalysisCoordinator fans out engine evaluations and turns raw scores into
// move-quality judgments. Engines are checked out of the pool per
// evaluation, never shared between concurrent calls.
type AnalysisCoordinator struct {
	pool           *EnginePool
	objectiveDepth int
	elo            config.EloConfig
}

func NewAnalysisCoordinator(pool *EnginePool, engineCfg config.EngineConfig, eloCfg config.EloConfig) *AnalysisCoordinator {
	depth := engineCfg.ObjectiveDepth
	if depth <= 0 {
		depth = 20
	}
	return &AnalysisCoordinator{pool: pool, objectiveDepth: depth, elo: eloCfg}
}

// EloToDepth maps a rating onto a search depth inside [MinDepth, MaxDepth].
// Linear over [800, 2800], clamped, monotonic non-decreasing: a stronger
// rating never maps to a shallower search.
func EloToDepth(elo int, cfg config.EloConfig) int {
	if elo <= minElo {
		return cfg.MinDepth
	}
	if elo >= maxElo {
		return cfg.MaxDepth
	}
	span := cfg.MaxDepth - cfg.MinDepth
	return cfg.MinDepth + (elo-minElo)*span/(maxElo-minElo)
}

// SaturatedCP returns the evaluation in centipawns for the side to move,
// with mate scores saturating to ±MateValue, sign preserved.
func SaturatedCP(e models.EngineEvaluation) int {
	if e.Mate != nil {
		if *e.Mate < 0 {
			return -MateValue
		}
		return MateValue
	}
	if e.CP != nil {
		return *e.CP
	}
	return 0
}

// MoverDelta normalizes both evaluations to the mover's perspective and
// returns the centipawn change the move produced (positive = good for the
// mover). The before evaluation is relative to the mover, the after
// evaluation is relative to the opponent, so it is negated.
func MoverDelta(before, after models.EngineEvaluation) int {
	return -SaturatedCP(after) - SaturatedCP(before)
}

// ClassifyMove grades a move from the evaluations of the position before and
// after it. Pure and deterministic: the verdict depends on the centipawn
// delta alone.
func ClassifyMove(before, after models.EngineEvaluation) models.MoveClassification {
	loss := -MoverDelta(before, after)
	if loss < 0 {
		loss = 0
	}
	switch {
	case loss <= BestThreshold:
		return models.MoveBest
	case loss <= GoodThreshold:
		return models.MoveGood
	case loss <= InaccuracyThreshold:
		return models.MoveInaccuracy
	case loss < MistakeThreshold:
		return models.MoveMistake
	default:
		return models.MoveBlunder
	}
}

type evalResult struct {
	eval models.EngineEvaluation
	err  error
}

// AnalyzePosition runs the objective evaluation and the elo-adjusted
// human-like evaluation in parallel and joins on both. Objective failure
// fails the call; human-like failure degrades the result to objective-only.
func (c *AnalysisCoordinator) AnalyzePosition(ctx context.Context, fen string, userElo int) (models.PositionAnalysis, error) {
	if _, err := chess.FEN(fen); err != nil {
		return models.PositionAnalysis{}, newValidationError("invalid FEN %q: %v", fen, err)
	}

	objCh := make(chan evalResult, 1)
	humCh := make(chan evalResult, 1)

	go func() {
		eval, err := c.evaluate(ctx, fen, c.objectiveDepth)
		objCh <- evalResult{eval, err}
	}()
	go func() {
		eval, err := c.evaluate(ctx, fen, EloToDepth(userElo, c.elo))
		humCh <- evalResult{eval, err}
	}()

	obj := <-objCh
	hum := <-humCh

	if obj.err != nil {
		return models.PositionAnalysis{}, fmt.Errorf("%w: objective evaluation of %s: %v", ErrEngineUnavailable, fen, obj.err)
	}

	analysis := models.PositionAnalysis{
		FEN:       fen,
		UserElo:   userElo,
		Objective: obj.eval,
	}
	if hum.err != nil {
		// Supplementary estimate; degrade rather than fail.
		log.Printf("human-like evaluation degraded for %s: %v", fen, hum.err)
	} else {
		humanLike := hum.eval
		analysis.HumanLike = &humanLike
	}
	return analysis, nil
}

// AnalyzeMove evaluates the positions before and after a played move and
// classifies the move from the mover's viewpoint.
func (c *AnalysisCoordinator) AnalyzeMove(ctx context.Context, fenBefore, moveUCI string, userElo int) (models.MoveReport, error) {
	fenOpt, err := chess.FEN(fenBefore)
	if err != nil {
		return models.MoveReport{}, newValidationError("invalid FEN %q: %v", fenBefore, err)
	}
	game := chess.NewGame(fenOpt)
	move, err := chess.UCINotation{}.Decode(game.Position(), moveUCI)
	if err != nil {
		return models.MoveReport{}, newValidationError("move %q is not legal in %q: %v", moveUCI, fenBefore, err)
	}
	if err := game.Move(move); err != nil {
		return models.MoveReport{}, newValidationError("move %q is not legal in %q: %v", moveUCI, fenBefore, err)
	}
	fenAfter := game.Position().String()

	before, err := c.AnalyzePosition(ctx, fenBefore, userElo)
	if err != nil {
		return models.MoveReport{}, err
	}
	after, err := c.evaluate(ctx, fenAfter, c.objectiveDepth)
	if err != nil {
		return models.MoveReport{}, fmt.Errorf("%w: evaluation of %s: %v", ErrEngineUnavailable, fenAfter, err)
	}

	loss := -MoverDelta(before.Objective, after)
	if loss < 0 {
		loss = 0
	}

	report := models.MoveReport{
		Move:           moveUCI,
		FENBefore:      fenBefore,
		FENAfter:       fenAfter,
		EvalBefore:     before.Objective,
		EvalAfter:      after,
		Classification: ClassifyMove(before.Objective, after),
		CentipawnLoss:  loss,
		BestMove:       before.Objective.BestMove,
	}
	if before.HumanLike != nil && before.HumanLike.BestMove != "" && before.HumanLike.BestMove != report.BestMove {
		report.Alternatives = append(report.Alternatives, before.HumanLike.BestMove)
	}
	return report, nil
}

// evaluate checks one engine out of the pool, runs a single fixed-depth
// evaluation, and always returns the handle.
func (c *AnalysisCoordinator) evaluate(ctx context.Context, fen string, depth int) (models.EngineEvaluation, error) {
	eng, err := c.pool.Acquire(ctx)
	if err != nil {
		return models.EngineEvaluation{}, err
	}
	defer c.pool.Release(eng)

	score, err := eng.EvalFEN(ctx, fen, models.EngineSettings{UseDepth: true, Depth: depth})
	if err != nil {
		return models.EngineEvaluation{}, err
	}
	return models.EngineEvaluation{
		CP:       score.CP,
		Mate:     score.Mate,
		Depth:    depth,
		BestMove: score.Best,
		BestLine: score.Line,
	}, nil
}
