// Package store defines the persistence ports for admin credentials and
// form submissions. Backends live in the sub-packages.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contact-intake-api/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned by Create when the id is already taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidID is returned by write paths for ids that cannot be used as a storage key.
	ErrInvalidID = errors.New("invalid record id")
)

// StorageError wraps a failure of the underlying medium.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise err wrapped in a StorageError.
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

// SubmissionStore owns the set of submission records, keyed by id.
type SubmissionStore interface {
	// Create persists a new record. Returns ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, sub models.Submission) error

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Submission, error)

	// List returns every record. Order is unspecified.
	List(ctx context.Context) ([]models.Submission, error)

	// Put replaces an existing record. Returns ErrNotFound if it is absent.
	Put(ctx context.Context, sub models.Submission) error

	// Delete removes the record with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// CredentialStore holds the singleton admin record.
type CredentialStore interface {
	// Get returns the admin record, or ErrNotFound before initialisation.
	Get(ctx context.Context) (*models.Admin, error)

	// InitializeIfAbsent stores admin only when no record exists yet and
	// reports whether it did.
	InitializeIfAbsent(ctx context.Context, admin models.Admin) (bool, error)

	// Replace overwrites the admin record.
	Replace(ctx context.Context, admin models.Admin) error
}

// MaxIDLength is the longest id, in bytes, any backend accepts. It matches
// the file name limit and the submissions.id column width.
const MaxIDLength = 255

// ValidID reports whether id is safe to use as a storage key: non-empty, no
// path separators, no leading dot and no control characters.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength || strings.HasPrefix(id, ".") {
		return false
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
