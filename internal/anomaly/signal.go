package anomaly

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aegis-lab/aegis-trading/internal/types"
)

// AsSignal converts a detected anomaly into a consensus vote. A pump reads
// as BUY momentum and a dump as SELL momentum; the vote carries the
// anomaly's own confidence.
func AsSignal(a types.Anomaly) types.Signal {
	action := types.ActionBuy
	if a.Type == types.AnomalyTypeDump {
		action = types.ActionSell
	}

	return types.Signal{
		ID:         uuid.New().String(),
		Symbol:     a.Symbol,
		Action:     action,
		Confidence: a.Confidence,
		Reasoning:  fmt.Sprintf("%s anomaly: %.1f%% move at %.1fx volume", a.Type, a.PriceChange*100, a.VolumeRatio),
		Source:     types.SignalSourceAnomaly,
		Time:       a.Time,
	}
}
