package types

import "time"

// AnomalyType distinguishes upward from downward abnormal moves.
type AnomalyType string

const (
	AnomalyTypePump AnomalyType = "pump"
	AnomalyTypeDump AnomalyType = "dump"
)

// Anomaly is a simple 24h price/volume anomaly for one symbol.
type Anomaly struct {
	Symbol      string      `json:"symbol"`
	Type        AnomalyType `json:"type"`
	PriceChange float64     `json:"price_change"`
	VolumeRatio float64     `json:"volume_ratio"`
	Price       float64     `json:"current_price"`
	Confidence  float64     `json:"confidence"`
	Time        time.Time   `json:"timestamp"`
}

// PumpClass grades a detected pump by score quality.
type PumpClass string

const (
	PumpClassStrong   PumpClass = "strong"
	PumpClassModerate PumpClass = "moderate"
)

// VolumeTrend labels the direction of recent volume.
type VolumeTrend string

const (
	VolumeTrendIncreasing VolumeTrend = "increasing"
	VolumeTrendStable     VolumeTrend = "stable"
	VolumeTrendDecreasing VolumeTrend = "decreasing"
	VolumeTrendUnknown    VolumeTrend = "unknown"
)

// PumpCriteria records which hard thresholds a pump met.
type PumpCriteria struct {
	PriceThreshold  bool `json:"price_threshold"`
	VolumeThreshold bool `json:"volume_threshold"`
	Reasonable24h   bool `json:"reasonable_24h"`
	VolumeTrendOK   bool `json:"volume_trend_ok"`
}

// PumpEvent is a scored pump detection with its quality breakdown.
type PumpEvent struct {
	Symbol         string       `json:"symbol"`
	Class          PumpClass    `json:"pump_type"`
	Confidence     float64      `json:"confidence"`
	Score          float64      `json:"pump_score"`
	PriceChange15m float64      `json:"price_change"`
	PriceChange1h  float64      `json:"price_change_1h"`
	VolumeRatio    float64      `json:"volume_ratio"`
	VolumeTrend    VolumeTrend  `json:"volume_trend"`
	RiskFactors    []string     `json:"risk_factors"`
	CriteriaMet    PumpCriteria `json:"criteria_met"`
	DetectedAt     time.Time    `json:"detected_at"`
}

// PumpStats summarizes the pump history retained by the detector.
type PumpStats struct {
	TotalPumps        int               `json:"total_pumps"`
	AvgConfidence     float64           `json:"avg_confidence"`
	PumpTypes         map[PumpClass]int `json:"pump_types"`
	MostActiveSymbols []string          `json:"most_active_symbols"`
}
