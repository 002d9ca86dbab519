// Command closer closes every open regarding whose end date has passed:
// for each one it computes the settlement summary, persists it as the frozen
// balance snapshot and marks the regarding closed. Intended to run on a
// schedule (cron or similar).
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/config"
	"github.com/LucasMoraesMarques/ExpenseManager/internal/database"
	"github.com/LucasMoraesMarques/ExpenseManager/internal/regarding"
	"github.com/LucasMoraesMarques/ExpenseManager/pkg/logging"
)

func main() {
	logger := logging.Setup()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	repo := regarding.NewRepository(db)
	service := regarding.NewService(repo, logger)

	ctx := context.Background()
	report, err := service.CloseEnded(ctx, time.Now())
	if err != nil {
		logger.Error("bulk close failed", "error", err)
		os.Exit(1)
	}
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
