// Package gormstore keeps submissions in MySQL through gorm.
package gormstore

import (
	"context"
	"errors"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

var _ store.SubmissionStore = (*SubmissionRepo)(nil)

// SubmissionRow represents the submissions table.
type SubmissionRow struct {
	ID             string     `gorm:"primaryKey;column:id;size:255"` // store.MaxIDLength
	SubmissionDate *time.Time `gorm:"column:submission_date;index"`
	Status         string     `gorm:"column:status;size:32"`
	LastUpdate     *time.Time `gorm:"column:updated_at"`
	Fields         string     `gorm:"column:fields;type:text"`
}

func (SubmissionRow) TableName() string {
	return "submissions"
}

// SubmissionRepo is the gorm implementation of store.SubmissionStore.
type SubmissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo wraps db. Single-row writes run without gorm's implicit
// transaction.
func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db.Session(&gorm.Session{SkipDefaultTransaction: true})}
}

// Migrate creates or updates the submissions table.
func (r *SubmissionRepo) Migrate() error {
	return r.db.AutoMigrate(&SubmissionRow{})
}

func (r *SubmissionRepo) Create(ctx context.Context, sub models.Submission) error {
	if !store.ValidID(sub.ID) {
		return store.ErrInvalidID
	}
	row, err := toRow(sub)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Create(&row).Error
	if isDuplicateKey(err) {
		return store.ErrAlreadyExists
	}
	return store.Wrap("create", sub.ID, err)
}

func (r *SubmissionRepo) Get(ctx context.Context, id string) (*models.Submission, error) {
	var rows []SubmissionRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Find(&rows).Error; err != nil {
		return nil, store.Wrap("get", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return fromRow(rows[0])
}

func (r *SubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	var rows []SubmissionRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, store.Wrap("list", "", err)
	}

	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}

// Put replaces an existing row. MySQL reports zero affected rows for an
// update that changes nothing, so absence is checked with a count first.
func (r *SubmissionRepo) Put(ctx context.Context, sub models.Submission) error {
	row, err := toRow(sub)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&SubmissionRow{}).Where("id = ?", sub.ID).Count(&count).Error; err != nil {
		return store.Wrap("get", sub.ID, err)
	}
	if count == 0 {
		return store.ErrNotFound
	}

	err = db.Model(&SubmissionRow{}).Where("id = ?", sub.ID).Updates(map[string]any{
		"submission_date": row.SubmissionDate,
		"status":          row.Status,
		"updated_at":      row.LastUpdate,
		"fields":          row.Fields,
	}).Error
	return store.Wrap("update", sub.ID, err)
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&SubmissionRow{})
	if res.Error != nil {
		return store.Wrap("delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toRow(sub models.Submission) (SubmissionRow, error) {
	fields, err := store.EncodeFields(sub.Fields)
	if err != nil {
		return SubmissionRow{}, err
	}

	row := SubmissionRow{
		ID:         sub.ID,
		Status:     string(sub.Status),
		LastUpdate: sub.UpdatedAt,
		Fields:     fields,
	}
	if !sub.SubmissionDate.IsZero() {
		at := sub.SubmissionDate.UTC()
		row.SubmissionDate = &at
	}
	return row, nil
}

func fromRow(row SubmissionRow) (*models.Submission, error) {
	fields, err := store.DecodeFields(row.Fields)
	if err != nil {
		return nil, store.Wrap("decode", row.ID, err)
	}

	sub := &models.Submission{
		ID:        row.ID,
		Status:    models.Status(row.Status),
		UpdatedAt: row.LastUpdate,
		Fields:    fields,
	}
	if row.SubmissionDate != nil {
		sub.SubmissionDate = row.SubmissionDate.UTC()
	}
	return sub, nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
