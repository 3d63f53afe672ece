package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data errors
	ErrInsufficientData = errors.New("insufficient data for fitting")
	ErrEmptyPool        = fmt.Errorf("%w: empty pool", ErrInsufficientData)

	// Metric errors
	ErrInvalidLR = errors.New("invalid likelihood ratio")

	// Sampling errors
	ErrSplitSize = errors.New("invalid split size")

	// Lifecycle errors
	ErrNotFitted        = errors.New("calibrator not fitted")
	ErrNoEvaluationMode = errors.New("no evaluation mode applicable to configuration")
	ErrUndefinedCost    = errors.New("cllr undefined for empty class")
)

// Error constructors with context
func NewInvalidLRError(value float64) error {
	return fmt.Errorf("%w: %g", ErrInvalidLR, value)
}

func NewSplitSizeError(requested, available int) error {
	return fmt.Errorf("%w: requested %d from pool of %d", ErrSplitSize, requested, available)
}

func NewInsufficientDataError(class int) error {
	return fmt.Errorf("%w: no samples for class %d", ErrInsufficientData, class)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsInvalidLR(err error) bool {
	return errors.Is(err, ErrInvalidLR)
}

func IsSplitSize(err error) bool {
	return errors.Is(err, ErrSplitSize)
}
