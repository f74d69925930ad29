package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"

	_ "github.com/lib/pq"
)

var db *sql.DB

// MustInitDB initializes the global db and logs fatally on error. When no
// Postgres URL is configured the service runs without persistence; completed
// lessons then live only in the job store.
func MustInitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.DB.URL == "" {
		log.Println("POSTGRES_URL not set; lesson persistence disabled")
		return
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}
	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	db = d
}

// SaveLesson writes a completed lesson and its comments in one transaction.
func SaveLesson(ctx context.Context, lesson *models.Lesson) error {
	if db == nil {
		// Allow runs without a backing DB.
		return nil
	}
	if lesson == nil {
		return nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lessons (id, user_elo, focus_areas)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING;
	`, lesson.ID, lesson.UserElo, marshalJSON(lesson.FocusAreas))
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}

	for _, c := range lesson.Comments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lesson_comments
				(lesson_id, step_number, position_fen, move_to_make, text, annotations, question)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
			ON CONFLICT (lesson_id, step_number) DO NOTHING;
		`, lesson.ID, c.StepNumber, c.PositionFEN, c.MoveToMake, c.Text,
			marshalJSON(c.Annotations), marshalJSON(c.Question))
		if err != nil {
			return fmt.Errorf("insert comment %d: %w", c.StepNumber, err)
		}
	}

	return tx.Commit()
}

// FindLesson loads a persisted lesson, or sql.ErrNoRows when unknown.
func FindLesson(ctx context.Context, id string) (*models.Lesson, error) {
	if db == nil {
		return nil, sql.ErrNoRows
	}

	lesson := &models.Lesson{ID: id}
	var focusAreas []byte
	err := db.QueryRowContext(ctx, `
		SELECT user_elo, focus_areas FROM lessons WHERE id = $1;
	`, id).Scan(&lesson.UserElo, &focusAreas)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(focusAreas, &lesson.FocusAreas)

	rows, err := db.QueryContext(ctx, `
		SELECT step_number, position_fen, COALESCE(move_to_make, ''), text, annotations, question
		FROM lesson_comments WHERE lesson_id = $1 ORDER BY step_number;
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.LessonComment
		var annotations, question []byte
		if err := rows.Scan(&c.StepNumber, &c.PositionFEN, &c.MoveToMake, &c.Text, &annotations, &question); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(annotations, &c.Annotations)
		if len(question) > 0 && string(question) != "null" {
			var q models.Question
			if json.Unmarshal(question, &q) == nil {
				c.Question = &q
			}
		}
		lesson.Comments = append(lesson.Comments, c)
	}
	return lesson, rows.Err()
}

// DeleteLessonRow removes a persisted lesson and its comments.
func DeleteLessonRow(ctx context.Context, id string) error {
	if db == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM lesson_comments WHERE lesson_id = $1;`, id); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1;`, id)
	return err
}

func marshalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
