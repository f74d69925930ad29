package main

import (
	"log"

	"github.com/jacobclarklds/openlings-chess-app/app"
	"github.com/jacobclarklds/openlings-chess-app/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	app.MustInitDB()

	pool, err := app.NewUCIEnginePool(cfg.Engine.Path, cfg.Engine.PoolSize)
	if err != nil {
		log.Fatalf("failed to start engine pool: %v", err)
	}
	defer pool.Close()

	coordinator := app.NewAnalysisCoordinator(pool, cfg.Engine, cfg.Elo)
	bridge := app.NewToolBridge(coordinator)
	llm := app.NewGeminiClient(cfg.Gemini, app.DefaultRetryConfig())
	svc := app.NewLessonService(llm, bridge, cfg.Agent)

	router := app.NewRouter(svc)
	if err := router.Run("0.0.0.0:8080"); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
