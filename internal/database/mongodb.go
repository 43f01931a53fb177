package database

import (
	"context"
	"time"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/config"
	"github.com/kebairia/mongosnap/internal/logger"
	"github.com/kebairia/mongosnap/internal/runner"
	"github.com/kebairia/mongosnap/internal/target"
)

const EngineMongoDB = "mongodb"

// MongoDBOption defines a functional option for configuring a MongoDB instance.
type MongoDBOption func(*MongoDB)

// MongoDB runs mongodump and mongorestore against one connection string.
type MongoDB struct {
	URI           string
	DumpBinary    string
	RestoreBinary string
	DumpArgs      []string
	RestoreArgs   []string
	Runner        *runner.Runner
	Logger        logger.Logger
}

// Ensure MongoDB satisfies Database.
var _ Database = (*MongoDB)(nil)

// NewMongoDB creates a MongoDB instance from config defaults and supplied options.
func NewMongoDB(cfg config.Config, opts ...MongoDBOption) *MongoDB {
	m := &MongoDB{
		DumpBinary:    cfg.Backup.DumpBinary,
		RestoreBinary: cfg.Backup.RestoreBinary,
		DumpArgs:      cfg.Backup.DumpArgs,
		RestoreArgs:   cfg.Backup.RestoreArgs,
		Logger:        logger.Global(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.Runner == nil {
		m.Runner = runner.New(
			runner.WithTimeout(cfg.Backup.Timeout),
			runner.WithLogger(m.Logger),
		)
	}
	return m
}

// WithMongoURI sets the connection string.
func WithMongoURI(uri string) MongoDBOption {
	return func(m *MongoDB) {
		if uri != "" {
			m.URI = uri
		}
	}
}

// WithMongoDumpBinary overrides the mongodump executable.
func WithMongoDumpBinary(bin string) MongoDBOption {
	return func(m *MongoDB) {
		if bin != "" {
			m.DumpBinary = bin
		}
	}
}

// WithMongoRestoreBinary overrides the mongorestore executable.
func WithMongoRestoreBinary(bin string) MongoDBOption {
	return func(m *MongoDB) {
		if bin != "" {
			m.RestoreBinary = bin
		}
	}
}

// WithMongoRunner overrides the process runner.
func WithMongoRunner(r *runner.Runner) MongoDBOption {
	return func(m *MongoDB) {
		if r != nil {
			m.Runner = r
		}
	}
}

// WithMongoLogger overrides the logger.
func WithMongoLogger(log logger.Logger) MongoDBOption {
	return func(m *MongoDB) {
		if log != nil {
			m.Logger = log
		}
	}
}

// DumpCommand builds the mongodump invocation writing into outDir.
func (m *MongoDB) DumpCommand(outDir string) runner.Command {
	args := []string{
		"--uri=" + m.URI,
		"--out=" + outDir,
	}
	args = append(args, m.DumpArgs...)
	return runner.Command{Name: m.DumpBinary, Args: args}
}

// RestoreCommand builds the mongorestore invocation for one dataset.
func (m *MongoDB) RestoreCommand(sel target.Selection) runner.Command {
	args := []string{
		"--uri=" + m.URI,
		"--nsInclude=" + sel.Namespace, // restore only this DB's namespaces
	}
	if sel.Drop {
		args = append(args, "--drop") // replace collections if they already exist
	}
	args = append(args, m.RestoreArgs...)
	args = append(args, "--dir="+sel.SourcePath)
	return runner.Command{Name: m.RestoreBinary, Args: args}
}

// Backup dumps the source database into outDir using mongodump.
func (m *MongoDB) Backup(ctx context.Context, outDir string) (runner.Result, error) {
	log := m.Logger
	cmd := m.DumpCommand(outDir)

	log.Info("backup started",
		"engine", EngineMongoDB,
		"source", catalog.Redact(m.URI),
		"path", outDir,
	)
	startTime := time.Now()
	res, err := m.Runner.Run(ctx, cmd)
	if err != nil {
		log.Error("backup failed",
			"engine", EngineMongoDB,
			"path", outDir,
			"exit_code", res.ExitCode,
			"error", err.Error(),
		)
		return res, err
	}

	log.Info("backup completed",
		"engine", EngineMongoDB,
		"path", outDir,
		"duration", time.Since(startTime).String(),
	)
	return res, nil
}

// Restore restores one dataset of a backup using mongorestore.
func (m *MongoDB) Restore(ctx context.Context, sel target.Selection) (runner.Result, error) {
	log := m.Logger
	cmd := m.RestoreCommand(sel)

	log.Info("restore started",
		"engine", EngineMongoDB,
		"target", catalog.Redact(m.URI),
		"namespace", sel.Namespace,
		"source", sel.SourcePath,
	)
	startTime := time.Now()
	res, err := m.Runner.Run(ctx, cmd)
	if err != nil {
		log.Error("restore failed",
			"engine", EngineMongoDB,
			"source", sel.SourcePath,
			"exit_code", res.ExitCode,
			"error", err.Error(),
		)
		return res, err
	}

	log.Info("restore completed",
		"engine", EngineMongoDB,
		"source", sel.SourcePath,
		"duration", time.Since(startTime).String(),
	)
	return res, nil
}

func (m *MongoDB) GetEngine() string {
	return EngineMongoDB
}
