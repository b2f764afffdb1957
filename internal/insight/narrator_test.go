package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

type stubProvider struct {
	lastReq ChatRequest
	content string
	err     error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Content: s.content}, nil
}

func narratorRun() *optimizer.RunResult {
	return &optimizer.RunResult{
		ID:         "run-7",
		Tickers:    []string{"GLD", "SPY"},
		Portfolios: make([]optimizer.SimulatedPortfolio, 100),
		Discarded:  1,
		MaxSharpe: &optimizer.SimulatedPortfolio{
			Weights:       []float64{0.4, 0.6},
			Return:        0.08,
			Volatility:    0.11,
			Sharpe:        0.55,
			SharpeDefined: true,
		},
		MinVolatility: &optimizer.SimulatedPortfolio{
			Weights:       []float64{0.7, 0.3},
			Return:        0.05,
			Volatility:    0.08,
			Sharpe:        0.38,
			SharpeDefined: true,
		},
	}
}

func TestNarrator_Narrate(t *testing.T) {
	provider := &stubProvider{content: "A balanced allocation."}
	n := NewNarrator(provider, zap.NewNop())

	got, err := n.Narrate(context.Background(), narratorRun())
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if got != "A balanced allocation." {
		t.Errorf("unexpected commentary: %q", got)
	}

	if provider.lastReq.SystemPrompt == "" {
		t.Error("expected system prompt")
	}
	if len(provider.lastReq.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(provider.lastReq.Messages))
	}
	prompt := provider.lastReq.Messages[0].Content
	for _, want := range []string{"GLD, SPY", "60.0%", "Sharpe ratio: 0.55", "discarded 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNarrator_Narrate_NoMaxSharpe(t *testing.T) {
	provider := &stubProvider{content: "ok"}
	n := NewNarrator(provider, zap.NewNop())

	run := narratorRun()
	run.MaxSharpe = nil
	if _, err := n.Narrate(context.Background(), run); err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if !strings.Contains(provider.lastReq.Messages[0].Content, "No portfolio had a defined Sharpe ratio") {
		t.Error("expected prompt to note missing Sharpe portfolio")
	}
}

func TestNarrator_Narrate_ProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limited")}
	n := NewNarrator(provider, zap.NewNop())

	_, err := n.Narrate(context.Background(), narratorRun())
	if !errors.Is(err, core.ErrInsightFailed) {
		t.Errorf("expected ErrInsightFailed, got %v", err)
	}
}

func TestNarrator_Narrate_EmptyContent(t *testing.T) {
	provider := &stubProvider{content: "   "}
	n := NewNarrator(provider, zap.NewNop())

	_, err := n.Narrate(context.Background(), narratorRun())
	if !errors.Is(err, core.ErrInsightFailed) {
		t.Errorf("expected ErrInsightFailed, got %v", err)
	}
}
