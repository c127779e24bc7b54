package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiClient implements LLMClient on the Gemini API.
type geminiClient struct {
	cfg      LLMConfig
	client   *genai.Client
	observer Observer
}

// NewGeminiClient creates an LLMClient backed by Gemini. cfg.Endpoint, when
// set, replaces the default API base URL.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini requires llm.api_key", ErrNotConfigured)
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	cfg.Provider = ProviderGemini

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client, observer: observer}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTok := c.cfg.taskParams(req)
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(temp)),
		MaxOutputTokens:  int32(maxTok),
		ResponseMIMEType: "application/json",
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	return generate(ctx, c.cfg, req.Task, c.observer, func(ctx context.Context) (string, string, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.UserPrompt), genCfg)
		if err != nil {
			return "", "", fmt.Errorf("gemini generate: %w", err)
		}
		return resp.Text(), resp.ModelVersion, nil
	})
}

// Available reports whether the configured model can be fetched.
func (c *geminiClient) Available(ctx context.Context) bool {
	_, err := c.client.Models.Get(ctx, c.cfg.Model, nil)
	return err == nil
}
