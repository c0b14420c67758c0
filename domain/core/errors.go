package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Table construction errors
	ErrEmptyColumnName = errors.New("column name is empty")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrLengthMismatch  = errors.New("column lengths differ")
	ErrColumnNotFound  = errors.New("column not found")
	ErrEmptyTable      = errors.New("table has no columns")

	// Input errors
	ErrNonNumeric     = errors.New("column is not numeric")
	ErrNonFinite      = errors.New("column contains NaN or infinite values")
	ErrUnknownSortKey = errors.New("unknown sort key")
	ErrInvalidOption  = errors.New("invalid option")

	// Computation errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrZeroRange        = errors.New("all values are identical")
	ErrTooFewGroups     = errors.New("at least two groups are required")
	ErrDegenerate       = errors.New("test statistic is undefined")
)

// FeatureError ties a failed computation to the feature (column) that caused it.
type FeatureError struct {
	Feature string
	Op      string
	Err     error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s failed for feature %q: %v", e.Op, e.Feature, e.Err)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// Error constructors with context
func NewFeatureError(op, feature string, err error) error {
	if err == nil {
		return nil
	}
	return &FeatureError{Feature: feature, Op: op, Err: err}
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewInsufficientDataError(got, need int) error {
	return fmt.Errorf("%w: got %d values, need at least %d", ErrInsufficientData, got, need)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyColumnName) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrNonNumeric) ||
		errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrUnknownSortKey) ||
		errors.Is(err, ErrInvalidOption)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrZeroRange) ||
		errors.Is(err, ErrTooFewGroups) ||
		errors.Is(err, ErrDegenerate)
}

// FailedFeature returns the feature named by err, if any.
func FailedFeature(err error) (string, bool) {
	var fe *FeatureError
	if errors.As(err, &fe) {
		return fe.Feature, true
	}
	return "", false
}
