package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidType          ErrorCode = 106
	ErrCodeInsufficientData     ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Consensus errors (400-499)
	ErrCodeNoOpinions        ErrorCode = 400
	ErrCodeAggregationFailed ErrorCode = 401

	// Risk errors (500-599)
	ErrCodePositionNotFound    ErrorCode = 500
	ErrCodePositionAlreadyOpen ErrorCode = 501
	ErrCodeDailyLimitReached   ErrorCode = 502

	// Model errors (600-699)
	ErrCodeModelUnavailable ErrorCode = 600
	ErrCodeModelTimeout     ErrorCode = 601
	ErrCodeModelBadResponse ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetch   ErrorCode = 700
	ErrCodeMarketDataMissing ErrorCode = 701
	ErrCodeUnsupportedSymbol ErrorCode = 702

	// History/storage errors (800-899)
	ErrCodeHistoryWriteFailed ErrorCode = 800
	ErrCodeHistoryReadFailed  ErrorCode = 801

	// Server errors (900-999)
	ErrCodeServerStart ErrorCode = 900
)
