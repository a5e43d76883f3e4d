package types

// IndicatorType identifies a technical indicator.
type IndicatorType string

const (
	IndicatorTypeRSI         IndicatorType = "rsi"
	IndicatorTypeEMA         IndicatorType = "ema"
	IndicatorTypeMACD        IndicatorType = "macd"
	IndicatorTypeBollinger   IndicatorType = "bollinger_bands"
	IndicatorTypeVolumeRatio IndicatorType = "volume_ratio"
)

// MACDResult holds the three MACD components.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerBands holds the band levels. Upper >= Middle >= Lower always holds.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// VolumeLabel classifies current volume against its recent average.
type VolumeLabel string

const (
	VolumeLabelHigh    VolumeLabel = "high"
	VolumeLabelLow     VolumeLabel = "low"
	VolumeLabelNormal  VolumeLabel = "normal"
	VolumeLabelNeutral VolumeLabel = "neutral"
)

// VolumeAnalysis is the volume ratio with its classification.
type VolumeAnalysis struct {
	Ratio   float64     `json:"volume_ratio"`
	Trend   VolumeLabel `json:"volume_trend"`
	Average float64     `json:"avg_volume"`
}

// IndicatorSnapshot is the derived indicator state for one evaluation cycle.
// It is recomputed every cycle and never persisted.
type IndicatorSnapshot struct {
	RSI       float64        `json:"rsi"`
	EMAShort  float64        `json:"ema_short"`
	EMALong   float64        `json:"ema_long"`
	MACD      MACDResult     `json:"macd"`
	Bollinger BollingerBands `json:"bollinger_bands"`
	Volume    VolumeAnalysis `json:"volume"`
}
