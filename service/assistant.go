package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/config"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Fallback texts returned when the generative call cannot be made. They
// are a contract of this interface: callers always get usable text.
const (
	FallbackSummary = "AI risk summary unavailable. Review the detected risk triggers and the submitted risk description manually."
)

// Assistant produces advisory text for a contract. Both operations are
// best-effort: they degrade to a fallback instead of returning an error,
// and their output never gates a workflow transition.
type Assistant interface {
	SummarizeRisk(ctx context.Context, c *model.Contract) string
	Refine(ctx context.Context, text, context string) string
}

// GeminiAssistant calls the Gemini API through the official SDK.
type GeminiAssistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiAssistant creates the assistant. With no API key configured it
// returns a disabled assistant that always answers with fallbacks.
func NewGeminiAssistant(ctx context.Context, cfg *config.AIConfig) (Assistant, error) {
	if cfg.APIKey == "" {
		slog.Warn("no Gemini API key configured, AI assistant disabled")
		return &disabledAssistant{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiAssistant{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
	}, nil
}

// SummarizeRisk asks for a three-bullet risk summary of the contract.
func (a *GeminiAssistant) SummarizeRisk(ctx context.Context, c *model.Contract) string {
	var triggers []string
	for _, t := range c.DetectedTriggers {
		triggers = append(triggers, t.Description)
	}

	prompt := fmt.Sprintf(`You are a contracts risk analyst for an oil and gas operator.
Summarize the key risks of the following contract in exactly 3 short bullet points.

Contractor: %s
Entity: %s
Type: %s, value %.2f %s
Scope of work: %s
Triggered risk flags: %s
Declared risks: %s
Mitigation measures: %s`,
		c.Contractor, c.Entity, c.ContractType, c.Amount, c.Currency,
		c.ScopeOfWork, strings.Join(triggers, "; "), c.RiskDescription, c.MitigationMeasures)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		slog.Warn("risk summary generation failed", "contract_id", c.ID, "error", err)
		return FallbackSummary
	}
	return text
}

// Refine rewrites a free-text fragment. On failure the original text is
// returned unchanged.
func (a *GeminiAssistant) Refine(ctx context.Context, text, fieldContext string) string {
	prompt := fmt.Sprintf(`Rewrite the following %s text for a contract approval form.
Keep it factual and concise, do not invent details. Return only the rewritten text.

%s`, fieldContext, text)

	refined, err := a.generate(ctx, prompt)
	if err != nil {
		slog.Warn("text refinement failed", "error", err)
		return text
	}
	return refined
}

func (a *GeminiAssistant) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}
	if strings.TrimSpace(fullText) == "" {
		return "", fmt.Errorf("empty response from gemini")
	}

	return strings.TrimSpace(fullText), nil
}

// Close releases the underlying client.
func (a *GeminiAssistant) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// disabledAssistant answers every call with the documented fallback.
type disabledAssistant struct{}

func (d *disabledAssistant) SummarizeRisk(ctx context.Context, c *model.Contract) string {
	return FallbackSummary
}

func (d *disabledAssistant) Refine(ctx context.Context, text, fieldContext string) string {
	return text
}
