package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"contact-intake-api/models"
	"contact-intake-api/store"
)

// Compile-time interface satisfaction check.
var _ store.SubmissionStore = (*SubmissionStore)(nil)

// SubmissionStore keeps one <id>.json file per submission in a directory.
type SubmissionStore struct {
	dir string
}

// NewSubmissionStore creates dir if needed and returns a store rooted there.
func NewSubmissionStore(dir string) (*SubmissionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, store.Wrap("init", dir, err)
	}
	return &SubmissionStore{dir: dir}, nil
}

// Dir returns the directory the store reads and writes.
func (s *SubmissionStore) Dir() string { return s.dir }

func (s *SubmissionStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Create writes a new record, failing with store.ErrAlreadyExists on an id clash.
func (s *SubmissionStore) Create(ctx context.Context, sub models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !store.ValidID(sub.ID) {
		return store.ErrInvalidID
	}

	data, err := encode(sub)
	if err != nil {
		return fmt.Errorf("encode submission %q: %w", sub.ID, err)
	}

	err = createExclusive(s.path(sub.ID), data)
	if errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	return store.Wrap("create", sub.ID, err)
}

// Get reads one record.
func (s *SubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !store.ValidID(id) {
		return nil, store.ErrNotFound
	}
	return s.read(id, s.path(id))
}

func (s *SubmissionStore) read(id, path string) (*models.Submission, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap("read", id, err)
	}

	var sub models.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, store.Wrap("decode", id, err)
	}
	if sub.ID == "" {
		sub.ID = id
	}
	return &sub, nil
}

// List reads every *.json document in the directory. A file removed between
// the directory scan and the read is skipped.
func (s *SubmissionStore) List(ctx context.Context) ([]models.Submission, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, store.Wrap("list", s.dir, err)
	}

	subs := make([]models.Submission, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}

		id := strings.TrimSuffix(name, fileExt)
		sub, err := s.read(id, filepath.Join(s.dir, name))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

// Put overwrites an existing record in place.
func (s *SubmissionStore) Put(ctx context.Context, sub models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !store.ValidID(sub.ID) {
		return store.ErrNotFound
	}

	path := s.path(sub.ID)
	ok, err := exists(path)
	if err != nil {
		return store.Wrap("stat", sub.ID, err)
	}
	if !ok {
		return store.ErrNotFound
	}

	data, err := encode(sub)
	if err != nil {
		return fmt.Errorf("encode submission %q: %w", sub.ID, err)
	}
	return store.Wrap("write", sub.ID, replace(path, data))
}

// Delete removes a record.
func (s *SubmissionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !store.ValidID(id) {
		return store.ErrNotFound
	}

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return store.ErrNotFound
	}
	return store.Wrap("delete", id, err)
}
