package swapper

import (
	"errors"
	"fmt"
)

// ErrorCode tags a SwapError.
type ErrorCode string

const (
	CodeUnsupportedChain         ErrorCode = "UnsupportedChain"
	CodeUnsupportedTradePair     ErrorCode = "UnsupportedTradePair"
	CodeInternalError            ErrorCode = "InternalError"
	CodeQueryFailed              ErrorCode = "QueryFailed"
	CodeNoQuotesAvailable        ErrorCode = "NoQuotesAvailable"
	CodeTradeQuoteAmountTooSmall ErrorCode = "TradeQuoteAmountTooSmall"
)

// SwapError is the failure side of every fallible swap operation. Callers
// branch on Code with errors.As or CodeOf.
type SwapError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *SwapError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SwapError) Unwrap() error { return e.Cause }

// MakeSwapError builds a SwapError; details may be nil.
func MakeSwapError(code ErrorCode, message string, details map[string]any) *SwapError {
	return &SwapError{Code: code, Message: message, Details: details}
}

// WrapSwapError attaches cause to a new SwapError.
func WrapSwapError(code ErrorCode, message string, cause error) *SwapError {
	return &SwapError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the SwapError code in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var se *SwapError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
