package domain

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrAdmissionDeferred", ErrAdmissionDeferred},
		{"ErrPersistence", ErrPersistence},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestPersistenceFailure(t *testing.T) {
	err := PersistenceFailure("scanning chunks", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "scanning chunks")
	assert.NoError(t, PersistenceFailure("noop", nil))
}

func TestConfigurationFailure(t *testing.T) {
	err := ConfigurationFailure("opening database", io.ErrClosedPipe)

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.NoError(t, ConfigurationFailure("noop", nil))
}
