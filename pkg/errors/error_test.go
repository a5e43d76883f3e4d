package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewAndFormat() {
	err := New(ErrCodeInvalidSignal, "malformed signal")
	suite.Equal("[102] malformed signal", err.Error())
	suite.Equal(ErrCodeInvalidSignal, GetCode(err))
}

func (suite *ErrorTestSuite) TestWrapPreservesCause() {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeMarketDataFetch, "failed to fetch tickers", cause)

	suite.Contains(err.Error(), "connection refused")
	suite.Equal(cause, err.Unwrap())
	suite.True(HasCode(err, ErrCodeMarketDataFetch))
}

func (suite *ErrorTestSuite) TestGetCodeOnForeignError() {
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func (suite *ErrorTestSuite) TestHasCodeThroughChain() {
	inner := Newf(ErrCodeQueryFailed, "select failed for %s", "signals")
	outer := Wrap(ErrCodeHistoryReadFailed, "recent signals", inner)

	// Outermost code wins.
	suite.True(HasCode(outer, ErrCodeHistoryReadFailed))
	suite.False(HasCode(outer, ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(50, 12, "BTCUSDT", "need 50 candles, have 12")

	suite.True(IsInsufficientDataError(err))
	suite.Equal(50, err.Required)
	suite.Equal(12, err.Actual)

	wrapped := Wrap(ErrCodeInsufficientData, "rule evaluation", err)
	suite.True(IsInsufficientDataError(wrapped))
	suite.False(IsInsufficientDataError(fmt.Errorf("other")))
}
