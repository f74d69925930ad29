// Tool catalog advertised to the reasoning model. This is a versioned
// contract: adding or removing a tool changes what the model may call and
// must be treated as a breaking change.

package app

import "github.com/google/generative-ai-go/genai"

// ToolDefinitions returns the function declarations for the six analysis
// tools, in Gemini's schema format.
func ToolDefinitions() []*genai.Tool {
	eloSchema := &genai.Schema{
		Type:        genai.TypeInteger,
		Description: "The user's ELO rating for personalized analysis, 800-2800",
	}

	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "analyze_position",
				Description: "Analyze a chess position with the engine. Returns the objective evaluation plus an elo-adjusted human-like estimate with best lines.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fen":      {Type: genai.TypeString, Description: "The position in FEN (Forsyth-Edwards Notation) format"},
						"user_elo": eloSchema,
					},
					Required: []string{"fen", "user_elo"},
				},
			},
			{
				Name:        "analyze_move",
				Description: "Analyze a specific move made in a position. Classifies move quality (best/good/inaccuracy/mistake/blunder) and compares it to the engine recommendation.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fen_before": {Type: genai.TypeString, Description: "The position before the move in FEN format"},
						"move":       {Type: genai.TypeString, Description: "The move in UCI format (e.g. 'e2e4', 'e7e8q')"},
						"user_elo":   eloSchema,
					},
					Required: []string{"fen_before", "move", "user_elo"},
				},
			},
			{
				Name:        "classify_opening",
				Description: "Identify the chess opening from a PGN string. Returns ECO code, opening name, and typical plans.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"pgn": {Type: genai.TypeString, Description: "The game in PGN format"},
					},
					Required: []string{"pgn"},
				},
			},
			{
				Name:        "get_position_type",
				Description: "Classify a position as opening, middlegame, or endgame based on piece count and move number.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fen": {Type: genai.TypeString, Description: "The position in FEN format"},
					},
					Required: []string{"fen"},
				},
			},
			{
				Name:        "create_board_annotation",
				Description: "Create a visual annotation for the chess board (arrow, circle, or highlight) to illustrate a concept. Embed the returned annotation in the matching lesson comment.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"annotation_type": {Type: genai.TypeString, Enum: []string{"arrow", "circle", "highlight"}, Description: "Type of annotation to create"},
						"color":           {Type: genai.TypeString, Enum: []string{"red", "green", "blue", "yellow", "orange"}, Description: "Color for the annotation"},
						"from_square":     {Type: genai.TypeString, Description: "Starting square for arrows (e.g. 'e2')"},
						"to_square":       {Type: genai.TypeString, Description: "Ending square for arrows (e.g. 'e4')"},
						"square":          {Type: genai.TypeString, Description: "Square to annotate for circles and highlights (e.g. 'd5')"},
					},
					Required: []string{"annotation_type", "color"},
				},
			},
			{
				Name:        "create_question",
				Description: "Create an interactive question to test the student's understanding. Embed the returned question in the matching lesson comment.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question_type":  {Type: genai.TypeString, Enum: []string{"multiple_choice", "move_selection", "text"}, Description: "Type of question to create"},
						"question_text":  {Type: genai.TypeString, Description: "The question to ask the user"},
						"options":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Answer options for multiple choice questions"},
						"correct_answer": {Type: genai.TypeString, Description: "The correct answer"},
						"explanation":    {Type: genai.TypeString, Description: "Explanation of why the answer is correct"},
					},
					Required: []string{"question_type", "question_text"},
				},
			},
		},
	}}
}
