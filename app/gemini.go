package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jacobclarklds/openlings-chess-app/app/config"
	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// RetryConfig bounds the backoff applied to transient model errors before
// they are surfaced as fatal.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// GeminiClient starts tool-enabled chat sessions against the Gemini API.
type GeminiClient struct {
	apiKey string
	model  string
	retry  RetryConfig
}

func NewGeminiClient(cfg config.GeminiConfig, retry RetryConfig) *GeminiClient {
	return &GeminiClient{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  strings.TrimSpace(cfg.Model),
		retry:  retry,
	}
}

// StartSession opens a chat session carrying the tool catalog and system
// prompt. The caller owns Close.
func (g *GeminiClient) StartSession(ctx context.Context, systemPrompt string) (ModelSession, error) {
	if g.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, err
	}

	m := cl.GenerativeModel(g.model)
	m.Tools = ToolDefinitions()
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	return &geminiSession{client: cl, chat: m.StartChat(), retry: g.retry}, nil
}

type geminiSession struct {
	client *genai.Client
	chat   *genai.ChatSession
	retry  RetryConfig
}

// Send delivers text and/or tool results and returns the model's reply.
// Transient upstream errors are retried with exponential backoff; an
// exhausted budget surfaces as ErrModelCommunication.
func (s *geminiSession) Send(ctx context.Context, text string, results []models.ToolResult) (ModelReply, error) {
	var parts []genai.Part
	for _, r := range results {
		parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: resultResponse(r)})
	}
	if text != "" {
		parts = append(parts, genai.Text(text))
	}
	if len(parts) == 0 {
		return ModelReply{}, errors.New("nothing to send")
	}

	resp, err := sendWithRetry(ctx, s.retry, func() (*genai.GenerateContentResponse, error) {
		return s.chat.SendMessage(ctx, parts...)
	})
	if err != nil {
		return ModelReply{}, fmt.Errorf("%w: %v", ErrModelCommunication, err)
	}
	return parseReply(resp)
}

func (s *geminiSession) Close() error {
	return s.client.Close()
}

// resultResponse shapes a tool result for the FunctionResponse wire format.
func resultResponse(r models.ToolResult) map[string]any {
	if !r.OK {
		return map[string]any{"ok": false, "error": r.ErrorMessage}
	}
	if r.Payload == nil {
		return map[string]any{"ok": true}
	}
	out := make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		out[k] = v
	}
	out["ok"] = true
	return out
}

func parseReply(resp *genai.GenerateContentResponse) (ModelReply, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ModelReply{}, fmt.Errorf("%w: empty candidate", ErrModelCommunication)
	}

	var reply ModelReply
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			reply.Calls = append(reply.Calls, models.ToolCall{
				ID:   uuid.NewString(),
				Name: p.Name,
				Args: p.Args,
			})
		}
	}
	reply.Text = text.String()
	return reply, nil
}

// sendWithRetry retries fn on transient errors with exponential backoff,
// respecting context cancellation between attempts.
func sendWithRetry(ctx context.Context, cfg RetryConfig, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	delay := cfg.InitialInterval

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryableModelError(err) {
			return nil, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		log.Printf("model call failed (attempt %d), retrying in %s: %v", attempt+1, delay, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay = min(delay*2, cfg.MaxInterval)
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", cfg.MaxRetries, lastErr)
}

// retryableModelError reports whether an upstream error is worth retrying.
func retryableModelError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"rate limit", "quota", "429",
		"500", "502", "503", "504", "unavailable",
		"connection reset", "timeout", "temporary",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
