package backtest

import "errors"

var (
	// ErrSchema reports input that does not satisfy the candle schema.
	ErrSchema = errors.New("invalid input schema")

	// ErrUnknownColumn reports a requested trade field missing from the series.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidFee reports a fee that is negative or not a finite number.
	ErrInvalidFee = errors.New("fee_percent must be a finite, non-negative number")

	// ErrNoStrategy reports a Backtester built without a strategy.
	ErrNoStrategy = errors.New("strategy is required")
)
