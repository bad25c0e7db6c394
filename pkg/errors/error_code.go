package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Fatal before any run starts, or fatal to
	// the single sweep cell they belong to.
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeUnknownParameter     ErrorCode = 103
	ErrCodeInvalidTakeProfit    ErrorCode = 104
	ErrCodeInvalidStopLoss      ErrorCode = 105
	ErrCodeInvalidTrailingStop  ErrorCode = 106
	ErrCodeInvalidMaxHold       ErrorCode = 107
	ErrCodeInvalidSizer         ErrorCode = 108
	ErrCodeInvalidEntryRule     ErrorCode = 109
	ErrCodeInvalidExitRule      ErrorCode = 110
	ErrCodeInvalidTradeType     ErrorCode = 111
	ErrCodeInvalidIndicator     ErrorCode = 112
	ErrCodeInvalidPeriod        ErrorCode = 113
	ErrCodeInvalidVersion       ErrorCode = 114
	ErrCodeInvalidMetric        ErrorCode = 115
	ErrCodeInvalidGrid          ErrorCode = 116

	// Data errors (200-299). Fatal to the affected run only.
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeMalformedBar          ErrorCode = 203
	ErrCodeNaNValue              ErrorCode = 204
	ErrCodeBarOutOfOrder         ErrorCode = 205
	ErrCodeEmptyFeed             ErrorCode = 206

	// Sizing (300-399). Informational: a degenerate size skips the entry.
	ErrCodeSizingDegenerate ErrorCode = 300

	// Broker errors (500-599)
	ErrCodeOrderFailed       ErrorCode = 500
	ErrCodePositionNotFound  ErrorCode = 501
	ErrCodePositionExists    ErrorCode = 502
	ErrCodeMarketDataMissing ErrorCode = 503

	// Run errors (600-699)
	ErrCodeRunFailed       ErrorCode = 600
	ErrCodeRunStateInvalid ErrorCode = 601

	// Sweep errors (700-799)
	ErrCodeSweepNoParameterSets ErrorCode = 700
	ErrCodeSweepCancelled       ErrorCode = 701

	// Storage errors (800-899)
	ErrCodeWriteFailed ErrorCode = 800
)

// Category groups error codes by their hundreds range.
type Category int

const (
	CategoryGeneral Category = 0
	CategoryConfig  Category = 1
	CategoryData    Category = 2
	CategorySizing  Category = 3
	CategoryBroker  Category = 5
	CategoryRun     Category = 6
	CategorySweep   Category = 7
	CategoryStorage Category = 8
)

// Category returns the category the code belongs to.
func (c ErrorCode) Category() Category {
	return Category(int(c) / 100)
}
