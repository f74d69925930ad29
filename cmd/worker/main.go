package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jacobclarklds/openlings-chess-app/app"
	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func main() {
	baseCtx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.QueueURL == "" {
		log.Fatal("QUEUE_URL environment variable is required")
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

	awsCfg, err := awsconfig.LoadDefaultConfig(baseCtx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	log.Printf("Worker started, listening on SQS queue: %s", cfg.QueueURL)

	for {
		// Long-poll SQS
		recvCtx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
		resp, err := sqsClient.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
			QueueUrl:            &cfg.QueueURL,
			MaxNumberOfMessages: 1,   // lesson generation is slow; take one at a time
			WaitTimeSeconds:     20,  // enable long polling
			VisibilityTimeout:   600, // seconds; must exceed the longest generation
		})
		cancel()

		if err != nil {
			log.Printf("ReceiveMessage error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(resp.Messages) == 0 {
			time.Sleep(2 * time.Second)
			continue
		}

		for _, m := range resp.Messages {
			if m.Body == nil {
				log.Printf("received message with empty body, skipping: %#v", m)
				continue
			}

			var msg models.LessonJobMessage
			if err := json.Unmarshal([]byte(*m.Body), &msg); err != nil {
				log.Printf("failed to unmarshal job message: %v, body=%s", err, *m.Body)
				// Poison pill; delete to avoid infinite retries.
				deleteMessage(sqsClient, cfg.QueueURL, m)
				continue
			}

			log.Printf("Received lesson job: job_id=%s elo=%d", msg.JobID, msg.UserElo)

			jobCtx, jobCancel := context.WithTimeout(baseCtx, 8*time.Minute)
			lesson, err := svc.GenerateSync(jobCtx, msg)
			jobCancel()

			if err != nil {
				log.Printf("error generating lesson job_id=%s: %v", msg.JobID, err)
				// Leave the message so SQS retries after the visibility timeout.
				continue
			}

			log.Printf("Lesson complete: job_id=%s comments=%d", lesson.ID, len(lesson.Comments))
			deleteMessage(sqsClient, cfg.QueueURL, m)
		}
	}
}

func deleteMessage(sqsClient *sqs.Client, queueURL string, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := sqsClient.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete SQS message: %v", err)
	}
}
