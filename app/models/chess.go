package models

// MoveClassification grades a move by centipawn loss from the mover's viewpoint.
type MoveClassification string

const (
	MoveBest       MoveClassification = "best"
	MoveGood       MoveClassification = "good"
	MoveInaccuracy MoveClassification = "inaccuracy"
	MoveMistake    MoveClassification = "mistake"
	MoveBlunder    MoveClassification = "blunder"
)

// EngineEvaluation is one immutable engine verdict for a (fen, depth) pair.
type EngineEvaluation struct {
	CP       *int     `json:"cp,omitempty"`   // centipawns for the side to move
	Mate     *int     `json:"mate,omitempty"` // mate in N, sign indicates who mates
	Depth    int      `json:"depth"`
	BestMove string   `json:"best_move,omitempty"`
	BestLine []string `json:"best_line,omitempty"`
}

// PositionAnalysis pairs the objective evaluation with the elo-adjusted one.
// HumanLike is nil when the supplementary evaluation failed and the result
// was degraded to objective-only.
type PositionAnalysis struct {
	FEN       string            `json:"fen"`
	UserElo   int               `json:"user_elo"`
	Objective EngineEvaluation  `json:"objective"`
	HumanLike *EngineEvaluation `json:"human_like,omitempty"`
}

// MoveReport is the full verdict for one played move.
type MoveReport struct {
	Move           string             `json:"move"`
	FENBefore      string             `json:"fen_before"`
	FENAfter       string             `json:"fen_after"`
	EvalBefore     EngineEvaluation   `json:"eval_before"`
	EvalAfter      EngineEvaluation   `json:"eval_after"`
	Classification MoveClassification `json:"classification"`
	CentipawnLoss  int                `json:"centipawn_loss"`
	BestMove       string             `json:"best_move,omitempty"`
	Alternatives   []string           `json:"alternatives,omitempty"`
}

// OpeningMatch names the opening a move sequence falls into.
type OpeningMatch struct {
	Name         string   `json:"name"`
	ECO          string   `json:"eco"`
	MatchedPlies int      `json:"matched_plies"`
	TypicalPlans []string `json:"typical_plans,omitempty"`
}
