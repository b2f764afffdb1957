package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

const systemPrompt = `You are a portfolio analyst. You are given the outcome of a
Monte Carlo portfolio optimization: the maximum-Sharpe portfolio and the
minimum-volatility portfolio found on the simulated frontier. Write a short
plain-language summary (3-5 sentences) of what the allocations imply for an
investor. Do not give personalized financial advice.`

// Narrator produces a plain-language commentary for a run.
type Narrator struct {
	provider Provider
	log      *zap.Logger
}

// NewNarrator creates a narrator backed by the given provider.
func NewNarrator(provider Provider, log *zap.Logger) *Narrator {
	return &Narrator{provider: provider, log: log}
}

// Narrate asks the provider for a commentary on the run. The caller treats
// failures as non-fatal; the run itself has already succeeded.
func (n *Narrator) Narrate(ctx context.Context, run *optimizer.RunResult) (string, error) {
	resp, err := n.provider.Chat(ctx, ChatRequest{
		SystemPrompt: systemPrompt,
		Messages: []Message{
			{Role: "user", Content: renderRun(run)},
		},
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		return "", core.WrapError(core.ErrInsightFailed, err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", core.WrapError(core.ErrInsightFailed,
			fmt.Errorf("provider %s returned empty content", n.provider.Name()))
	}

	n.log.Debug("generated run commentary",
		zap.String("provider", n.provider.Name()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return content, nil
}

// renderRun formats the run outcome as the user prompt.
func renderRun(run *optimizer.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assets: %s\n", strings.Join(run.Tickers, ", "))
	fmt.Fprintf(&b, "Simulated portfolios: %d (discarded %d)\n\n",
		len(run.Portfolios), run.Discarded)

	if run.MaxSharpe != nil {
		b.WriteString("Maximum-Sharpe portfolio:\n")
		writePortfolio(&b, run.Tickers, run.MaxSharpe)
	} else {
		b.WriteString("No portfolio had a defined Sharpe ratio.\n")
	}

	if run.MinVolatility != nil {
		b.WriteString("\nMinimum-volatility portfolio:\n")
		writePortfolio(&b, run.Tickers, run.MinVolatility)
	}

	return b.String()
}

func writePortfolio(b *strings.Builder, tickers []string, p *optimizer.SimulatedPortfolio) {
	for i, t := range tickers {
		fmt.Fprintf(b, "  %s: %.1f%%\n", t, p.Weights[i]*100)
	}
	fmt.Fprintf(b, "  expected annual return: %.2f%%\n", p.Return*100)
	fmt.Fprintf(b, "  annual volatility: %.2f%%\n", p.Volatility*100)
	if p.SharpeDefined {
		fmt.Fprintf(b, "  Sharpe ratio: %.2f\n", p.Sharpe)
	}
}
