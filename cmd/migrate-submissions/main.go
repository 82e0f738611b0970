// Migration script to import legacy JSON submission files into a database backend
// cmd/migrate-submissions/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"contact-intake-api/config"
	"contact-intake-api/models"
	"contact-intake-api/store"
	"contact-intake-api/store/filestore"

	"github.com/joho/godotenv"
)

type tally struct {
	Imported int
	Skipped  int
	Failed   int
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, logCloser := config.InitLogging(cfg.Log)
	if logCloser != nil {
		defer logCloser.Close()
	}

	if cfg.Storage.Driver == config.DriverFile {
		logger.Error("STORE_DRIVER must be sqlite or mysql; nothing to migrate into")
		os.Exit(1)
	}

	src, err := filestore.NewSubmissionStore(cfg.Storage.SubmissionsDir)
	if err != nil {
		logger.Error("open legacy submissions", "dir", cfg.Storage.SubmissionsDir, "error", err)
		os.Exit(1)
	}
	dst, closeStore, err := cfg.OpenSubmissionStore()
	if err != nil {
		logger.Error("open target store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	result, err := migrate(context.Background(), src, dst, logger)
	if err != nil {
		logger.Error("submission migration aborted", "error", err)
		os.Exit(1)
	}
	logger.Info("submission migration completed",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

// migrate copies every record from src into dst. Records already present in
// dst are skipped; legacy status labels are rewritten to their canonical form.
func migrate(ctx context.Context, src, dst store.SubmissionStore, logger *slog.Logger) (tally, error) {
	var result tally

	subs, err := src.List(ctx)
	if err != nil {
		return result, fmt.Errorf("read legacy submissions: %w", err)
	}

	for _, sub := range subs {
		if status, ok := models.ParseStatus(string(sub.Status)); ok {
			sub.Status = status
		} else {
			logger.Warn("unknown status kept as-is", "id", sub.ID, "status", sub.Status)
		}

		err := dst.Create(ctx, sub)
		switch {
		case err == nil:
			result.Imported++
			logger.Info("imported submission", "id", sub.ID)
		case errors.Is(err, store.ErrAlreadyExists):
			result.Skipped++
			logger.Info("submission already present, skipping", "id", sub.ID)
		default:
			result.Failed++
			logger.Error("failed to import submission", "id", sub.ID, "error", err)
		}
	}
	return result, nil
}
