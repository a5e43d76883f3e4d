package types

// ModelOpinion is the normalized per-symbol output of one AI model.
// Missing fields default to WAIT / zero confidence at the consensus boundary.
type ModelOpinion struct {
	Symbol     string  `json:"symbol"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	// Model names the provider that produced the opinion.
	Model string `json:"model"`
}

// ModelAnalysis is one model's full answer for a market context.
type ModelAnalysis struct {
	Signals         []ModelOpinion `json:"signals"`
	MarketSentiment string         `json:"market_sentiment"`
	RiskLevel       string         `json:"risk_level"`
	Summary         string         `json:"summary"`
	Model           string         `json:"model"`
}

// Normalize fills defaulted fields on a partially populated opinion and
// clamps confidence into [0,1].
func (o ModelOpinion) Normalize() ModelOpinion {
	if o.Action != ActionBuy && o.Action != ActionSell && o.Action != ActionWait {
		o.Action = ActionWait
	}

	if o.Confidence < 0 {
		o.Confidence = 0
	}

	if o.Confidence > 1 {
		o.Confidence = 1
	}

	return o
}
