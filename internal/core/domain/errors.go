package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent engine failures the caller can act on.
var (
	// ErrAdmissionDeferred indicates work was skipped because admission
	// control reported overload. It is not a failure; retry later.
	ErrAdmissionDeferred = errors.New("admission deferred")

	// ErrPersistence indicates the storage layer could not complete a read
	// or write. It is distinct from an empty result and safe to retry.
	ErrPersistence = errors.New("persistence failure")

	// ErrConfiguration indicates an invalid or inaccessible storage location
	// or setting at startup. It is not retryable without operator action.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput indicates malformed input to an adapter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// PersistenceFailure wraps a storage error so that it matches both
// ErrPersistence and the underlying cause.
func PersistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// ConfigurationFailure wraps a startup error so that it matches ErrConfiguration.
func ConfigurationFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
}
