package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jacobclarklds/openlings-chess-app/app"
	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"
)

// Generates one lesson from a PGN file and prints it. Handy for testing the
// agent loop without the HTTP surface.
func main() {
	pgnPath := flag.String("pgn", "", "path to a PGN file")
	elo := flag.Int("elo", app.DefaultUserElo, "student elo")
	flag.Parse()

	if *pgnPath == "" {
		log.Fatal("usage: lesson-local -pgn game.pgn [-elo 1500]")
	}
	pgn, err := os.ReadFile(*pgnPath)
	if err != nil {
		log.Fatalf("failed to read PGN: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool, err := app.NewUCIEnginePool(cfg.Engine.Path, cfg.Engine.PoolSize)
	if err != nil {
		log.Fatalf("failed to start engine pool: %v", err)
	}
	defer pool.Close()

	coordinator := app.NewAnalysisCoordinator(pool, cfg.Engine, cfg.Elo)
	bridge := app.NewToolBridge(coordinator)
	llm := app.NewGeminiClient(cfg.Gemini, app.DefaultRetryConfig())
	svc := app.NewLessonService(llm, bridge, cfg.Agent)

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	lesson, err := svc.GenerateSync(ctx, models.LessonJobMessage{PGN: string(pgn), UserElo: *elo})
	if err != nil {
		log.Fatalf("lesson generation failed: %v", err)
	}

	b, _ := json.MarshalIndent(lesson, "", "  ")
	log.Printf("Lesson (took %s):\n%s", time.Since(start), string(b))
}
