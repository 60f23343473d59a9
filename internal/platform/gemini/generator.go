package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/config"
	"github.com/revisehq/revision-api/internal/generation"
	"google.golang.org/genai"
)

const (
	maxCandidatesPerRequest = 10
	maxRetries              = 3
	baseRetryDelaySeconds   = 2
)

// responseSchema is the JSON shape the prompt instructs the model to return.
type responseSchema struct {
	Cards []generation.CardCandidate `json:"cards"`
}

// Generator implements the generation.Generator interface using Google's
// Gemini API.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// Ensure Generator implements generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed candidate generator.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateCandidates implements generation.Generator.GenerateCandidates.
func (g *Generator) GenerateCandidates(
	ctx context.Context,
	subjectID uuid.NullUUID,
	topic string,
) ([]generation.CardCandidate, error) {
	data := promptData{
		Topic:         topic,
		MaxCandidates: maxCandidatesPerRequest,
	}
	if subjectID.Valid {
		data.SubjectID = subjectID.UUID.String()
	}

	prompt, err := buildPrompt(data)
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates(text)
	if err != nil {
		g.logger.WarnContext(ctx, "failed to parse model response",
			slog.String("error", err.Error()),
			slog.Int("response_length", len(text)))
		return nil, err
	}

	g.logger.DebugContext(ctx, "generated card candidates",
		slog.Int("count", len(candidates)),
		slog.String("topic", topic))
	return candidates, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter. Permanent failures (safety blocks, empty
// responses) return immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		text, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !transient {
			return "", err
		}
		if attempt == maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseRetryDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying Gemini call",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded %d attempts: %v",
		generation.ErrTransientFailure, maxRetries+1, lastErr)
}

// callOnce performs a single API call. transient reports whether a failure is
// worth retrying.
func (g *Generator) callOnce(ctx context.Context, prompt string) (text string, transient bool, err error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	text = resp.Text()
	if text == "" {
		return "", false, fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}
	return text, false, nil
}

// parseCandidates decodes and validates the model's JSON output. A single
// invalid candidate rejects the whole response; partial acceptance would hide
// prompt or model regressions.
func parseCandidates(text string) ([]generation.CardCandidate, error) {
	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if len(parsed.Cards) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}

	for i, candidate := range parsed.Cards {
		if err := candidate.Validate(); err != nil {
			return nil, fmt.Errorf("%w: candidate %d: %v", generation.ErrInvalidResponse, i, err)
		}
	}
	return parsed.Cards, nil
}
