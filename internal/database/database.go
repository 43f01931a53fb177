package database

import (
	"context"

	"github.com/kebairia/mongosnap/internal/runner"
	"github.com/kebairia/mongosnap/internal/target"
)

// Database dumps a source into a backup folder and restores one dataset of a
// backup folder into a target.
type Database interface {
	GetEngine() string
	Backup(ctx context.Context, outDir string) (runner.Result, error)
	Restore(ctx context.Context, sel target.Selection) (runner.Result, error)
}
