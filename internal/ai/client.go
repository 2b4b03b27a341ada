// Package ai implements the Gemini-backed generation client used by the
// chat fall-through path and the /img command.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"scopebot/internal/config"
	"scopebot/internal/history"
)

// ChatRequest carries one chat completion request. Model and sampling
// settings come from the per-conversation user configuration.
type ChatRequest struct {
	InitMessage string
	Model       string // empty selects the configured default
	Temperature float64
	ExtraParams map[string]any
	Turns       []history.Entry
}

// Client defines the generation operations the rest of the application uses.
type Client interface {
	// GenerateReply produces the assistant's next turn and reports the
	// total tokens the request consumed.
	GenerateReply(ctx context.Context, req ChatRequest) (string, int, error)

	// GenerateImage renders an image for the prompt and returns its bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type sdkClient struct {
	genaiClient  *genai.Client
	log          *slog.Logger
	defaultModel string
	imageModel   string
	maxRetries   int
	retryDelay   time.Duration
}

// NewClient creates a new Gemini client with the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "ai_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model, "image_model", cfg.ImageModel)
	return &sdkClient{
		genaiClient:  gi,
		log:          logger,
		defaultModel: cfg.Model,
		imageModel:   cfg.ImageModel,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) GenerateReply(ctx context.Context, req ChatRequest) (string, int, error) {
	c.log.DebugContext(ctx, "Generating reply", "turns", len(req.Turns))

	contents := conversationContents(req.Turns)

	temperature := float32(req.Temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.InitMessage != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.InitMessage}}}
	}
	applyExtraParams(genCfg, req.ExtraParams)

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	resp, err := c.generateContentWithRetries(ctx, model, contents, genCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini reply generation failed", "error", err)
		return "", 0, err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		return "", 0, fmt.Errorf("reply blocked by safety filter: %s", reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("reply generation returned empty content")
	}

	text := resp.Text()
	if text == "" {
		return "", 0, fmt.Errorf("reply generation returned empty text")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return text, tokens, nil
}

func (c *sdkClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	c.log.DebugContext(ctx, "Generating image", "prompt_len", len(prompt))

	resp, err := c.genaiClient.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini image generation failed", "error", err)
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("image generation returned no image")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// conversationContents converts stored transcript turns into genai contents,
// mapping the assistant role to the model role.
func conversationContents(turns []history.Entry) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role == history.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}

// applyExtraParams maps the recognized keys of a user's extra-params object
// onto the generation config. Unknown keys are ignored.
func applyExtraParams(cfg *genai.GenerateContentConfig, params map[string]any) {
	if v, ok := asFloat(params["top_p"]); ok {
		topP := float32(v)
		cfg.TopP = &topP
	}
	if v, ok := asFloat(params["top_k"]); ok {
		topK := float32(v)
		cfg.TopK = &topK
	}
	if v, ok := asFloat(params["max_output_tokens"]); ok {
		cfg.MaxOutputTokens = int32(v)
	}
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.WarnContext(ctx, "Gemini API call failed, retrying", "attempt", i+1, "code", apiErr.Code, "delay", c.retryDelay)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}
