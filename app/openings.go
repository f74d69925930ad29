package app

import (
	"strings"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/notnil/chess"
)

// Position phase boundaries.
const (
	openingMoveLimit  = 10 // at most this many full moves still counts as the opening
	endgamePieceLimit = 10 // this many pieces or fewer is an endgame
)

// opening is one known line: SAN moves from the start position.
type opening struct {
	eco   string
	name  string
	moves []string
	plans []string
}

// openingBook is ordered; the longest matching prefix wins. Entries with the
// same length fall back to declaration order.
var openingBook = []opening{
	{"C50", "Italian Game", []string{"e4", "e5", "Nf3", "Nc6", "Bc4"},
		[]string{"Control center with d4", "Develop pieces quickly", "Castle kingside", "Attack on f7"}},
	{"C60", "Ruy Lopez", []string{"e4", "e5", "Nf3", "Nc6", "Bb5"},
		[]string{"Pressure the e5 pawn", "Prepare c3 and d4", "Play on both wings"}},
	{"B20", "Sicilian Defense", []string{"e4", "c5"},
		[]string{"Fight for d4 square", "Create pawn asymmetry", "Black plays for counterplay on queenside"}},
	{"C00", "French Defense", []string{"e4", "e6"},
		[]string{"Build pawn chain", "Black plays c5 break", "White plays for space advantage"}},
	{"B10", "Caro-Kann Defense", []string{"e4", "c6"},
		[]string{"Support d5 with the c-pawn", "Develop the light-squared bishop outside the chain", "Play for a solid structure"}},
	{"D06", "Queen's Gambit", []string{"d4", "d5", "c4"},
		[]string{"Challenge black's center", "Develop pieces to natural squares", "Fight for central control"}},
	{"E60", "King's Indian Defense", []string{"d4", "Nf6", "c4", "g6"},
		[]string{"Concede the center, then strike with e5 or c5", "Kingside attack for black", "Queenside space for white"}},
	{"A10", "English Opening", []string{"c4"},
		[]string{"Control d5 from the flank", "Fianchetto the king's bishop", "Flexible pawn structure"}},
	{"A04", "Reti Opening", []string{"Nf3"},
		[]string{"Flexible piece development", "Control from distance"}},
	{"B00", "King's Pawn Opening", []string{"e4"},
		[]string{"Control center", "Develop pieces", "Castle"}},
	{"A40", "Queen's Pawn Opening", []string{"d4"},
		[]string{"Control center", "Develop pieces", "Build solid structure"}},
}

// ClassifyOpening matches the game's SAN move sequence against the known
// openings table. Returns false when not even a first-move family matches.
func ClassifyOpening(pgn string) (models.OpeningMatch, bool) {
	sans, err := sanMoves(pgn)
	if err != nil || len(sans) == 0 {
		return models.OpeningMatch{}, false
	}

	best := -1
	bestLen := 0
	for i, o := range openingBook {
		if len(o.moves) > len(sans) || len(o.moves) <= bestLen {
			continue
		}
		matched := true
		for j, m := range o.moves {
			if sans[j] != m {
				matched = false
				break
			}
		}
		if matched {
			best = i
			bestLen = len(o.moves)
		}
	}
	if best < 0 {
		return models.OpeningMatch{}, false
	}
	o := openingBook[best]
	return models.OpeningMatch{
		Name:         o.name,
		ECO:          o.eco,
		MatchedPlies: len(o.moves),
		TypicalPlans: o.plans,
	}, true
}

// PositionType classifies a position as opening, middlegame, or endgame
// based on move number and piece count.
func PositionType(fen string) (string, error) {
	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return "", newValidationError("invalid FEN %q: %v", fen, err)
	}
	game := chess.NewGame(fenOpt)
	pos := game.Position()

	pieces := 0
	for _, p := range pos.Board().SquareMap() {
		if p != chess.NoPiece {
			pieces++
		}
	}

	fullMove := fenFullMove(fen)
	switch {
	case fullMove <= openingMoveLimit:
		return "opening", nil
	case pieces <= endgamePieceLimit:
		return "endgame", nil
	default:
		return "middlegame", nil
	}
}

// fenFullMove reads the fullmove counter from the last FEN field.
func fenFullMove(fen string) int {
	parts := strings.Fields(fen)
	if len(parts) < 6 {
		return 1
	}
	n := 0
	for _, r := range parts[5] {
		if r < '0' || r > '9' {
			return 1
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 1
	}
	return n
}

// sanMoves parses a PGN and returns its moves in standard algebraic notation.
func sanMoves(pgn string) ([]string, error) {
	g := chess.NewGame()
	if err := g.UnmarshalText([]byte(NormalizePGN(pgn))); err != nil {
		return nil, err
	}
	positions := g.Positions()
	moves := g.Moves()

	sans := make([]string, 0, len(moves))
	for i, m := range moves {
		if i >= len(positions) {
			break
		}
		sans = append(sans, chess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return sans, nil
}
