package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrInsufficientData indicates there are not enough price bars to
	// compute indicators or train a model.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelNotFound indicates no trained artifact exists for the
	// requested symbol and model kind.
	ErrModelNotFound = errors.New("model not found")

	// ErrFeatureMismatch indicates the features available at prediction
	// time do not match the columns the model was trained on.
	ErrFeatureMismatch = errors.New("feature mismatch")

	// ErrInvalidPeriod indicates an indicator period is not positive or
	// exceeds the series length.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrArtifactCorrupt indicates a stored model artifact could not be
	// decoded.
	ErrArtifactCorrupt = errors.New("artifact corrupt")

	// ErrConfigInvalid indicates the configuration failed validation.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrSymbolNotFound indicates the requested symbol has no data.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrDatabaseError indicates a storage operation failed.
	ErrDatabaseError = errors.New("database error")
)

// DataError provides context about a data-related failure.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("data error [%s] for %s: %s", e.DataType, e.Symbol, e.Message)
	}
	return fmt.Sprintf("data error [%s]: %s", e.DataType, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a DataError wrapping an underlying cause.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// ModelError provides context about a model training or prediction failure.
type ModelError struct {
	Kind      string
	Symbol    string
	Operation string
	Err       error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error [%s/%s] during %s: %v", e.Kind, e.Symbol, e.Operation, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError wrapping an underlying cause.
func NewModelError(kind, symbol, operation string, err error) *ModelError {
	return &ModelError{
		Kind:      kind,
		Symbol:    symbol,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError indicates an input failed validation.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s=%v: %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap adds context to an error, preserving the chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error, preserving the chain.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error with the supplied message.
func New(message string) error {
	return errors.New(message)
}
