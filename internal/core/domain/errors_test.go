package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrProviderFailure", ErrProviderFailure},
		{"ErrStoreFailure", ErrStoreFailure},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestErrors_DistinctKinds(t *testing.T) {
	kinds := []error{ErrNotFound, ErrDimensionMismatch, ErrProviderFailure, ErrStoreFailure}
	for i := range kinds {
		for j := range kinds {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(kinds[i], kinds[j]), "%v should not match %v", kinds[i], kinds[j])
		}
	}
}

func TestErrors_WrappedKindsSurvive(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("%w: %w", ErrProviderFailure, cause)

	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStoreFailure)
}
