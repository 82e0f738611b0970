package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"
)

var _ store.CredentialStore = (*CredentialStore)(nil)

// AdminFileName is the credential document inside the data directory.
const AdminFileName = "admin.json"

// CredentialStore keeps the admin record as a single JSON document.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates dataDir if needed and returns a store for
// dataDir/admin.json.
func NewCredentialStore(dataDir string) (*CredentialStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, store.Wrap("init", dataDir, err)
	}
	return &CredentialStore{path: filepath.Join(dataDir, AdminFileName)}, nil
}

// Path returns the credential document location.
func (s *CredentialStore) Path() string { return s.path }

// adminDocument is the on-disk shape. Older setups stored the hash under
// "password".
type adminDocument struct {
	Username       string     `json:"username"`
	PasswordHash   string     `json:"passwordHash,omitempty"`
	LegacyPassword string     `json:"password,omitempty"`
	Email          string     `json:"email"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Get reads the admin record.
func (s *CredentialStore) Get(ctx context.Context) (*models.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap("read", AdminFileName, err)
	}

	var doc adminDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, store.Wrap("decode", AdminFileName, err)
	}

	hash := doc.PasswordHash
	if hash == "" {
		hash = doc.LegacyPassword
	}
	return &models.Admin{
		Username:     doc.Username,
		PasswordHash: hash,
		Email:        doc.Email,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

// InitializeIfAbsent writes admin only when no credential document exists.
func (s *CredentialStore) InitializeIfAbsent(ctx context.Context, admin models.Admin) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := encode(admin)
	if err != nil {
		return false, fmt.Errorf("encode admin: %w", err)
	}

	err = createExclusive(s.path, data)
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, store.Wrap("create", AdminFileName, err)
	}
	return true, nil
}

// Replace overwrites the admin record atomically.
func (s *CredentialStore) Replace(ctx context.Context, admin models.Admin) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(admin)
	if err != nil {
		return fmt.Errorf("encode admin: %w", err)
	}
	return store.Wrap("write", AdminFileName, replace(s.path, data))
}
