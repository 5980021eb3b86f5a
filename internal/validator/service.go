package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arusso/matchbook/internal/llm"
	"github.com/arusso/matchbook/internal/matches"
)

const systemPrompt = "You are a strict arbitrage validator. Determine if two binary markets resolve identically with no ambiguity. Reject if timing, definitions, or data sources differ. Respond only with JSON."

// Config controls the validator behavior.
type Config struct {
	LLMClient    *llm.Client
	SystemPrompt string
}

// Service double-checks that a matched pair of markets truly resolves on the
// same terms. The lexical matcher only scores surface similarity; this is
// the semantic gate before an opportunity is trusted.
type Service struct {
	llm          *llm.Client
	systemPrompt string
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{llm: cfg.LLMClient, systemPrompt: system}, nil
}

// Validate runs the LLM prompt and returns the verdict.
func (s *Service) Validate(ctx context.Context, payload *matches.Payload) (*matches.ResolutionVerdict, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}
	if payload == nil {
		return nil, fmt.Errorf("validator: payload is nil")
	}

	promptInput := buildPromptPayload(payload)
	inputJSON, err := json.MarshalIndent(promptInput, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("validator: marshal prompt input: %w", err)
	}

	userPrompt := strings.Join([]string{
		"Compare the following two prediction-market listings from different platforms. You are helping an arbitrage detection system.",
		"A risk-free arbitrage only exists if the two markets resolve identically.",
		"They must represent the exact same binary outcome with matching cutoff and resolution criteria to be valid.",
		"Different resolution sources are acceptable only when they necessarily agree on the exact definition of the outcome.",
		"If either market allows outcomes other than strictly YES/NO for the same event, answer false.",
		"Pay special attention to timing, settlement sources, definitions, tiebreakers, cancellations, or alternate clauses.",
		"If unsure, treat it as invalid. Answer concisely.",
		"Return EXACTLY this JSON format:\n{\n  \"valid\": true|false,\n  \"reason\": \"short explanation\"\n}\n\nInput JSON:\n" + string(inputJSON),
	}, "\n")

	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("validator: llm call: %w", err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, fmt.Errorf("validator: parse response: %w", err)
	}
	return verdict, nil
}
