package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Fatal at configuration-load time,
	// never raised during an analysis call.
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidWeights       ErrorCode = 101
	ErrCodeInvalidThreshold     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidMultiplier    ErrorCode = 104
	ErrCodeInvalidRiskPolicy    ErrorCode = 105
	ErrCodeInvalidRatio         ErrorCode = 106

	// Data errors (200-299). Fatal to the single analysis call that
	// received the malformed series.
	ErrCodeInsufficientData   ErrorCode = 200
	ErrCodeEmptySeries        ErrorCode = 201
	ErrCodeNonMonotonicSeries ErrorCode = 202
	ErrCodeMalformedBar       ErrorCode = 203
	ErrCodeNonFiniteValue     ErrorCode = 204
	ErrCodeDataParseFailed    ErrorCode = 205
	ErrCodeDataSourceNotFound ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300
	ErrCodeIndicatorNotReady    ErrorCode = 301

	// Risk errors (500-599)
	ErrCodeInvalidSetup ErrorCode = 500

	// Backtest errors (600-699)
	ErrCodeLedgerFailure  ErrorCode = 600
	ErrCodeBacktestFailed ErrorCode = 601
)

// IsConfigError reports whether the error carries a configuration error code.
func IsConfigError(err error) bool {
	code := GetCode(err)

	return code >= 100 && code < 200
}

// IsDataError reports whether the error carries a data error code.
// InsufficientDataError belongs to the data category as well.
func IsDataError(err error) bool {
	if IsInsufficientDataError(err) {
		return true
	}

	code := GetCode(err)

	return code >= 200 && code < 300
}
