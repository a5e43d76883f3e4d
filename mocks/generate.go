package mocks

//go:generate mockgen -destination=./mock_market_provider.go -package=mocks github.com/aegis-lab/aegis-trading/internal/market Provider
//go:generate mockgen -destination=./mock_model_provider.go -package=mocks github.com/aegis-lab/aegis-trading/internal/ai ModelProvider
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/aegis-lab/aegis-trading/internal/notify Notifier
//go:generate mockgen -destination=./mock_recorder.go -package=mocks github.com/aegis-lab/aegis-trading/internal/engine Recorder
