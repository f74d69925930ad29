package config

import (
	"fmt"
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	DB       PostgresConfig
	Engine   EngineConfig
	Elo      EloConfig
	Gemini   GeminiConfig
	Agent    AgentConfig
	QueueURL string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

type EngineConfig struct {
	Path           string
	ObjectiveDepth int // fixed high depth for the objective baseline
	MoveTime       int // fallback movetime in ms when depth is unusable
	PoolSize       int // number of engine processes to keep running
}

// EloConfig bounds the elo-to-depth mapping for the human-like evaluation.
// Raising MaxDepth increases fidelity and latency of that estimate.
type EloConfig struct {
	MinDepth int
	MaxDepth int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type AgentConfig struct {
	MaxIterations int
	MaxRetries    int
}

func LoadConfig() (*Config, error) {
	objectiveDepth, err := envInt("ENGINE_OBJECTIVE_DEPTH", 20)
	if err != nil {
		return nil, err
	}
	moveTime, err := envInt("ENGINE_MOVE_TIME", 500)
	if err != nil {
		return nil, err
	}
	poolSize, err := envInt("ENGINE_POOL_SIZE", 2)
	if err != nil {
		return nil, err
	}
	minDepth, err := envInt("ELO_MIN_DEPTH", 6)
	if err != nil {
		return nil, err
	}
	maxDepth, err := envInt("ELO_MAX_DEPTH", 20)
	if err != nil {
		return nil, err
	}
	if minDepth > maxDepth {
		return nil, fmt.Errorf("ELO_MIN_DEPTH %d exceeds ELO_MAX_DEPTH %d", minDepth, maxDepth)
	}
	maxIterations, err := envInt("AGENT_MAX_ITERATIONS", 30)
	if err != nil {
		return nil, err
	}
	maxRetries, err := envInt("AGENT_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		Engine: EngineConfig{
			Path:           os.Getenv("ENGINE_PATH"),
			ObjectiveDepth: objectiveDepth,
			MoveTime:       moveTime,
			PoolSize:       poolSize,
		},
		Elo: EloConfig{
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Agent: AgentConfig{
			MaxIterations: maxIterations,
			MaxRetries:    maxRetries,
		},
	}

	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}
