package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ store.SubmissionStore = (*SubmissionRepo)(nil)

// SubmissionRepo is the SQLite implementation of store.SubmissionStore.
type SubmissionRepo struct {
	db *DB
}

func NewSubmissionRepo(db *DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// Create inserts a new submission.
func (r *SubmissionRepo) Create(ctx context.Context, sub models.Submission) error {
	if !store.ValidID(sub.ID) {
		return store.ErrInvalidID
	}
	fields, err := store.EncodeFields(sub.Fields)
	if err != nil {
		return err
	}

	const query = `INSERT INTO submissions (id, submission_date, status, updated_at, fields) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		sub.ID, store.FormatTime(sub.SubmissionDate), string(sub.Status), formatOptional(sub.UpdatedAt), fields)
	if isConstraintViolation(err) {
		return store.ErrAlreadyExists
	}
	return store.Wrap("create", sub.ID, err)
}

// Get returns one submission.
func (r *SubmissionRepo) Get(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT id, submission_date, status, updated_at, fields FROM submissions WHERE id = ?`
	sub, err := scanSubmission(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap("get", id, err)
	}
	return sub, nil
}

// List returns all submissions, newest first.
func (r *SubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	const query = `SELECT id, submission_date, status, updated_at, fields FROM submissions ORDER BY submission_date DESC`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, store.Wrap("list", "", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, store.Wrap("scan", "", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list", "", err)
	}
	return subs, nil
}

// Put replaces an existing submission.
func (r *SubmissionRepo) Put(ctx context.Context, sub models.Submission) error {
	fields, err := store.EncodeFields(sub.Fields)
	if err != nil {
		return err
	}

	const query = `UPDATE submissions SET submission_date = ?, status = ?, updated_at = ?, fields = ? WHERE id = ?`
	res, err := r.db.Writer.ExecContext(ctx, query,
		store.FormatTime(sub.SubmissionDate), string(sub.Status), formatOptional(sub.UpdatedAt), fields, sub.ID)
	if err != nil {
		return store.Wrap("update", sub.ID, err)
	}
	return requireAffected(res, sub.ID)
}

// Delete removes a submission.
func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM submissions WHERE id = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return store.Wrap("delete", id, err)
	}
	return requireAffected(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub            models.Submission
		status, fields string
		submissionDate sql.NullString
		updatedAt      sql.NullString
	)
	if err := row.Scan(&sub.ID, &submissionDate, &status, &updatedAt, &fields); err != nil {
		return nil, err
	}

	var err error
	sub.Status = models.Status(status)
	if sub.SubmissionDate, err = store.ParseTime(submissionDate.String); err != nil {
		return nil, err
	}
	if updatedAt.Valid && updatedAt.String != "" {
		t, err := store.ParseTime(updatedAt.String)
		if err != nil {
			return nil, err
		}
		sub.UpdatedAt = &t
	}
	if sub.Fields, err = store.DecodeFields(fields); err != nil {
		return nil, err
	}
	return &sub, nil
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return store.FormatTime(*t)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return store.Wrap("rows affected", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
