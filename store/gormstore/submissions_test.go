package gormstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm/schema"
)

var (
	insertPattern = regexp.MustCompile("INSERT INTO `submissions`")
	selectByID    = regexp.MustCompile("SELECT \\* FROM `submissions` WHERE id = \\?")
	selectAll     = regexp.MustCompile("^SELECT \\* FROM `submissions`$")
	countByID     = regexp.MustCompile("(?i)SELECT count\\(\\*\\) FROM `submissions` WHERE id = \\?")
	updateByID    = regexp.MustCompile("UPDATE `submissions` SET .*`status`=\\?.* WHERE id = \\?")
	deleteByID    = regexp.MustCompile("DELETE FROM `submissions` WHERE id = \\?")
	rowColumns    = []string{"id", "submission_date", "status", "updated_at", "fields"}
)

func TestCreateInsertsRow(t *testing.T) {
	db, state := newScriptedGormDB(t, []*queryStep{
		{kind: kindExec, pattern: insertPattern, result: scriptedResult{rowsAffected: 1}},
	})
	repo := NewSubmissionRepo(db)

	sub := models.Submission{
		ID:             "ana-1",
		SubmissionDate: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Status:         models.StatusPending,
		Fields:         map[string]any{"nombre": "Ana", "telefono": "1"},
	}
	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCreateMapsDuplicateEntry(t *testing.T) {
	db, _ := newScriptedGormDB(t, []*queryStep{
		{kind: kindExec, pattern: insertPattern, err: &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}},
	})
	repo := NewSubmissionRepo(db)

	err := repo.Create(context.Background(), models.Submission{ID: "dup", Fields: map[string]any{}})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetDecodesRow(t *testing.T) {
	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	db, state := newScriptedGormDB(t, []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectByID,
			args:    []driver.Value{"ana-1"},
			columns: rowColumns,
			rows:    [][]driver.Value{{"ana-1", at, "Pending", nil, `{"nombre":"Ana","telefono":"555"}`}},
		},
	})
	repo := NewSubmissionRepo(db)

	sub, err := repo.Get(context.Background(), "ana-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if sub.ID != "ana-1" || sub.Status != models.StatusPending {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if !sub.SubmissionDate.Equal(at) {
		t.Fatalf("expected submission date %v, got %v", at, sub.SubmissionDate)
	}
	if sub.FieldString("telefono") != "555" {
		t.Fatalf("expected telefono 555, got %q", sub.FieldString("telefono"))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	db, _ := newScriptedGormDB(t, []*queryStep{
		{kind: kindQuery, pattern: selectByID, args: []driver.Value{"nope"}, columns: rowColumns},
	})
	repo := NewSubmissionRepo(db)

	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsAllRows(t *testing.T) {
	db, _ := newScriptedGormDB(t, []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectAll,
			columns: rowColumns,
			rows: [][]driver.Value{
				{"a", time.Now().UTC(), "Pending", nil, `{}`},
				{"b", time.Now().UTC(), "Completed", time.Now().UTC(), `{"nombre":"B"}`},
			},
		},
	})
	repo := NewSubmissionRepo(db)

	subs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	if subs[1].UpdatedAt == nil {
		t.Fatalf("expected updatedAt on second row")
	}
}

func TestPutMissingSkipsUpdate(t *testing.T) {
	db, state := newScriptedGormDB(t, []*queryStep{
		{kind: kindQuery, pattern: countByID, args: []driver.Value{"ghost"}, columns: []string{"count(*)"}, rows: [][]driver.Value{{int64(0)}}},
	})
	repo := NewSubmissionRepo(db)

	err := repo.Put(context.Background(), models.Submission{ID: "ghost", Fields: map[string]any{}})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestPutUpdatesExistingRow(t *testing.T) {
	db, state := newScriptedGormDB(t, []*queryStep{
		{kind: kindQuery, pattern: countByID, args: []driver.Value{"a"}, columns: []string{"count(*)"}, rows: [][]driver.Value{{int64(1)}}},
		{kind: kindExec, pattern: updateByID, result: scriptedResult{rowsAffected: 1}},
	})
	repo := NewSubmissionRepo(db)

	now := time.Now().UTC()
	err := repo.Put(context.Background(), models.Submission{
		ID:        "a",
		Status:    models.StatusCompleted,
		UpdatedAt: &now,
		Fields:    map[string]any{"nombre": "A"},
	})
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDeleteReportsMissingRow(t *testing.T) {
	db, state := newScriptedGormDB(t, []*queryStep{
		{kind: kindExec, pattern: deleteByID, args: []driver.Value{"a"}, result: scriptedResult{rowsAffected: 1}},
		{kind: kindExec, pattern: deleteByID, args: []driver.Value{"a"}, result: scriptedResult{rowsAffected: 0}},
	})
	repo := NewSubmissionRepo(db)

	if err := repo.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("first Delete returned error: %v", err)
	}
	if err := repo.Delete(context.Background(), "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIDColumnFitsLongestValidID(t *testing.T) {
	s, err := schema.Parse(&SubmissionRow{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	field := s.LookUpField("id")
	if field == nil {
		t.Fatalf("id field missing")
	}
	if field.Size != store.MaxIDLength {
		t.Fatalf("id column size = %d, want %d", field.Size, store.MaxIDLength)
	}
}
