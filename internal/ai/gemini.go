package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider asks a Gemini model for per-symbol opinions. Authentication
// comes from the ambient Google credentials picked up by the SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *logger.Logger
}

var _ ModelProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates the provider. A client construction failure is
// returned, not deferred; an unconfigured environment should surface at
// startup.
func NewGeminiProvider(ctx context.Context, model string, l *logger.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelUnavailable, "failed to create gemini client", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	if l == nil {
		l = logger.NewNopLogger()
	}

	return &GeminiProvider{client: client, model: model, logger: l}, nil
}

// Name implements ModelProvider.
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable implements ModelProvider.
func (g *GeminiProvider) IsAvailable() bool {
	return g.client != nil
}

// Analyze implements ModelProvider.
func (g *GeminiProvider) Analyze(ctx context.Context, mc MarketContext) (types.ModelAnalysis, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(mc)), nil)
	if err != nil {
		if ctx.Err() != nil {
			return types.ModelAnalysis{}, errors.Wrap(errors.ErrCodeModelTimeout, "gemini analysis timed out", err)
		}

		return types.ModelAnalysis{}, errors.Wrap(errors.ErrCodeModelUnavailable, "gemini request failed", err)
	}

	analysis, err := parseAnalysis(resp.Text())
	if err != nil {
		return types.ModelAnalysis{}, err
	}

	analysis.Model = g.Name()

	return analysis, nil
}

// buildPrompt renders the market context into the instruction the model
// answers with strict JSON.
func buildPrompt(mc MarketContext) string {
	var b strings.Builder

	if mc.Scope == ScopeMacro {
		b.WriteString("You are a crypto macro analyst. Assess the market regime and each symbol below.\n")
	} else {
		b.WriteString("You are a crypto trading analyst. Assess each symbol below.\n")
	}

	for symbol, snapshot := range mc.Snapshots {
		fmt.Fprintf(&b, "\n%s: price %.4f, 24h change %.2f%%, volume %.0f",
			symbol, snapshot.Price, snapshot.Change24h*100, snapshot.Volume)

		if ind, ok := mc.Indicators[symbol]; ok {
			fmt.Fprintf(&b, ", RSI %.1f, EMA short/long %.4f/%.4f, MACD histogram %.4f, volume ratio %.2f",
				ind.RSI, ind.EMAShort, ind.EMALong, ind.MACD.Histogram, ind.Volume.Ratio)
		}
	}

	if mc.Risk != (RiskContext{}) {
		fmt.Fprintf(&b, "\n\nRisk parameters: daily profit target %.1f%%, max daily loss %.1f%%, max position %.1f%% of portfolio.",
			mc.Risk.DailyProfitTarget*100, mc.Risk.MaxDailyLoss*100, mc.Risk.MaxPositionPct*100)
	}

	b.WriteString("\n\nAnswer with JSON only, no markdown fences, in the form: ")
	b.WriteString(`{"signals":[{"symbol":"...","action":"BUY|SELL|WAIT","confidence":0.0,"reasoning":"..."}],`)
	b.WriteString(`"market_sentiment":"bullish|bearish|neutral","risk_level":"low|medium|high","summary":"..."}`)

	return b.String()
}

// parseAnalysis decodes the model's JSON answer, tolerating markdown fences
// some models wrap around it.
func parseAnalysis(text string) (types.ModelAnalysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis types.ModelAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return types.ModelAnalysis{}, errors.Wrap(errors.ErrCodeModelBadResponse, "model returned malformed JSON", err)
	}

	for i, opinion := range analysis.Signals {
		analysis.Signals[i] = opinion.Normalize()
	}

	return analysis, nil
}
