package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"
	"contact-intake-api/utils"
)

const (
	// MaxListLimit caps the number of records returned by List.
	MaxListLimit = 100

	// maxIDAttempts bounds the retries when two submissions with the same
	// name land on the same millisecond.
	maxIDAttempts = 50
)

// ListOptions narrows the page returned by List. Counts are never affected.
type ListOptions struct {
	Status models.Status
	Limit  int
}

// SubmissionSummary is the admin listing: counts over every record plus the
// newest records.
type SubmissionSummary struct {
	Total       int                 `json:"total"`
	Completed   int                 `json:"completed"`
	Pending     int                 `json:"pending"`
	Urgent      int                 `json:"urgent"`
	Submissions []models.Submission `json:"submissions"`
}

// SubmissionService implements public intake and the admin operations on
// submissions.
type SubmissionService struct {
	store    store.SubmissionStore
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewSubmissionService(st store.SubmissionStore, notifier Notifier, logger *slog.Logger) *SubmissionService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and stores a new submission and returns its id.
func (s *SubmissionService) Submit(ctx context.Context, fields map[string]any) (string, error) {
	sub := models.Submission{
		Status: models.StatusPending,
		Fields: make(map[string]any, len(fields)),
	}
	for k, v := range fields {
		if models.IsSystemKey(k) {
			continue
		}
		if str, ok := v.(string); ok {
			v = utils.SanitizeInput(str)
		}
		sub.Fields[k] = v
	}

	name := sub.FieldString(models.FieldName)
	if name == "" || sub.FieldString(models.FieldPhone) == "" {
		return "", newValidationError("Nombre y teléfono son campos requeridos")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	sub.SubmissionDate = now

	writeCtx := persistentContext(ctx)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		sub.ID = BuildSubmissionID(name, now.Add(time.Duration(attempt)*time.Millisecond))
		err := s.store.Create(writeCtx, sub)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create submission: %w", err)
		}

		s.logger.InfoContext(ctx, "submission accepted", "id", sub.ID)
		if err := s.notifier.SubmissionCreated(writeCtx, sub); err != nil {
			s.logger.WarnContext(ctx, "submission notification failed", "id", sub.ID, "error", err)
		}
		return sub.ID, nil
	}
	return "", fmt.Errorf("create submission: no free id after %d attempts", maxIDAttempts)
}

// List returns status counts over every record and the newest records,
// optionally filtered by status.
func (s *SubmissionService) List(ctx context.Context, opts ListOptions) (*SubmissionSummary, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	summary := &SubmissionSummary{Total: len(subs)}
	for _, sub := range subs {
		switch sub.Status.Canonical() {
		case models.StatusPending:
			summary.Pending++
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusUrgent:
			summary.Urgent++
		}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		di, dj := subs[i].SortDate(), subs[j].SortDate()
		if di.Equal(dj) {
			return subs[i].ID > subs[j].ID
		}
		return di.After(dj)
	})

	if opts.Status != "" {
		want := opts.Status.Canonical()
		filtered := subs[:0]
		for _, sub := range subs {
			if sub.Status.Canonical() == want {
				filtered = append(filtered, sub)
			}
		}
		subs = filtered
	}

	limit := opts.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if len(subs) > limit {
		subs = subs[:limit]
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	summary.Submissions = subs
	return summary, nil
}

// Get returns one submission or store.ErrNotFound.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	id = strings.TrimSpace(id)
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.ID == "" {
		sub.ID = id
	}
	return sub, nil
}

// Complete marks a submission Completed and stamps updatedAt.
func (s *SubmissionService) Complete(ctx context.Context, id string) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	// Write back under the requested key even if the stored body names
	// another id.
	sub.ID = strings.TrimSpace(id)
	now := s.now().UTC().Truncate(time.Millisecond)
	sub.Status = models.StatusCompleted
	sub.UpdatedAt = &now
	if err := s.store.Put(persistentContext(ctx), *sub); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "submission completed", "id", sub.ID)
	return nil
}

// Delete removes a submission or returns store.ErrNotFound.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.Delete(persistentContext(ctx), id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "submission deleted", "id", id)
	return nil
}
