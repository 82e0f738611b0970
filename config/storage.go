package config

import (
	"fmt"
	"os"
	"path/filepath"

	"contact-intake-api/store"
	"contact-intake-api/store/filestore"
	"contact-intake-api/store/gormstore"
	"contact-intake-api/store/sqlitestore"
)

// OpenSubmissionStore opens the backend selected by STORE_DRIVER and runs
// its migrations. The returned close func releases database handles.
func (c *Config) OpenSubmissionStore() (store.SubmissionStore, func() error, error) {
	noop := func() error { return nil }

	switch c.Storage.Driver {
	case DriverFile:
		st, err := filestore.NewSubmissionStore(c.Storage.SubmissionsDir)
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil

	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(c.Storage.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		db, err := sqlitestore.NewDB(c.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlitestore.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlitestore.NewSubmissionRepo(db), db.Close, nil

	case DriverMySQL:
		db, err := c.OpenDB()
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		repo := gormstore.NewSubmissionRepo(db)
		if err := repo.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate submissions table: %w", err)
		}
		return repo, sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", c.Storage.Driver)
}

// OpenCredentialStore opens the admin credential file under DATA_DIR.
func (c *Config) OpenCredentialStore() (*filestore.CredentialStore, error) {
	return filestore.NewCredentialStore(c.Storage.DataDir)
}
