package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataErrorFormatting(t *testing.T) {
	err := NewDataError("price", "SBIN", "missing bars", ErrInsufficientData)
	require.Equal(t, "data error [price] for SBIN: missing bars", err.Error())

	noSymbol := NewDataError("csv", "", "bad header", nil)
	require.Equal(t, "data error [csv]: bad header", noSymbol.Error())
}

func TestDataErrorUnwrap(t *testing.T) {
	err := Wrap(NewDataError("price", "SBIN", "missing bars", ErrInsufficientData), "loading history")
	require.True(t, Is(err, ErrInsufficientData))

	var dataErr *DataError
	require.True(t, As(err, &dataErr))
	require.Equal(t, "SBIN", dataErr.Symbol)
}

func TestModelErrorChain(t *testing.T) {
	err := NewModelError("neural", "TCS", "predict", ErrModelNotFound)
	require.True(t, Is(err, ErrModelNotFound))
	require.Contains(t, err.Error(), "neural/TCS")
	require.Contains(t, err.Error(), "predict")
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("days", -1, "must be positive")
	require.Equal(t, "validation error on days=-1: must be positive", err.Error())
}

func TestWrapNilPassthrough(t *testing.T) {
	require.NoError(t, Wrap(nil, "context"))
	require.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestWrapfPreservesChain(t *testing.T) {
	err := Wrapf(ErrSymbolNotFound, "fetching %s", "INFY")
	require.True(t, Is(err, ErrSymbolNotFound))
	require.Equal(t, "fetching INFY: symbol not found", err.Error())
}
