package migrations

import (
	"context"
	"fmt"

	"manytomany/database"

	"github.com/ottomillrath/goose/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// this goose fork scopes its version table per service, so several
// services can share one database; the name only has to stay stable
const service = "manytomany"

// Commands accepted by Run.
var Commands = []string{"up", "down", "status", "version"}

// Run executes a goose command against db. dir must exist: goose looks for
// SQL migrations there, although every migration of this service is a Go
// migration registered from this package.
func Run(ctx context.Context, db *gorm.DB, dir, command string, logger *zap.Logger) error {
	if !isCommand(command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Running migrations",
		zap.String("command", command),
		zap.String("dir", dir))

	if err := goose.Run(command, database.Conn(ctx, db), service, dir); err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", command, err)
	}
	return nil
}

func isCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}
