package operations

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/kebairia/mongosnap/internal/config"
	"github.com/kebairia/mongosnap/internal/database"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/logger"
	"github.com/kebairia/mongosnap/internal/metrics"
	"github.com/kebairia/mongosnap/internal/naming"
	"github.com/kebairia/mongosnap/internal/paths"
	"github.com/kebairia/mongosnap/internal/prompt"
)

var (
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	mutedColor   = color.New(color.FgHiBlack)
)

// Operator runs one backup, restore or listing against the backup root.
type Operator struct {
	cfg     config.Config
	root    string
	prompt  prompt.Prompter
	out     io.Writer
	log     logger.Logger
	gen     *naming.Generator
	source  database.Database
	target  database.Database
	metrics *metrics.Recorder
	workDir string
}

// Option configures an Operator.
type Option func(*Operator)

// WithPrompter sets the interactive collaborator.
func WithPrompter(p prompt.Prompter) Option {
	return func(o *Operator) { o.prompt = p }
}

// WithOutput sets where operator-facing messages are written.
func WithOutput(w io.Writer) Option {
	return func(o *Operator) { o.out = w }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Operator) { o.log = log }
}

// WithClock replaces the wall clock used for backup names.
func WithClock(now func() time.Time) Option {
	return func(o *Operator) { o.gen.Now = now }
}

// WithWorkDir sets the directory a relative backup path is resolved against.
func WithWorkDir(dir string) Option {
	return func(o *Operator) { o.workDir = dir }
}

// WithSource overrides the database that backups dump from.
func WithSource(db database.Database) Option {
	return func(o *Operator) { o.source = db }
}

// WithTarget overrides the database that restores write into.
func WithTarget(db database.Database) Option {
	return func(o *Operator) { o.target = db }
}

// NewOperator validates cfg, fills missing connection strings from Vault when
// configured and resolves the backup root. Nothing is written to disk.
func NewOperator(ctx context.Context, cfg config.Config, opts ...Option) (*Operator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Operator{
		cfg:    cfg,
		out:    os.Stdout,
		log:    logger.Global(),
		gen:    naming.NewGenerator(cfg.Backup.TimestampFormat),
		prompt: prompt.NewLinePrompter(os.Stdin, os.Stdout),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfig, "working directory: %v", err)
		}
		o.workDir = wd
	}
	o.root = paths.Resolve(o.workDir, cfg.Backup.Path)

	eps, err := database.InitializeDatabases(ctx, &o.cfg, o.log)
	if err != nil {
		return nil, err
	}
	if o.source == nil {
		o.source = eps.Source
	}
	if o.target == nil {
		o.target = eps.Target
	}
	o.metrics = metrics.New(o.cfg.Metrics.TextfileDir)
	return o, nil
}

// Root returns the resolved backup root.
func (o *Operator) Root() string { return o.root }

func (o *Operator) say(c *color.Color, format string, args ...any) {
	c.Fprintf(o.out, format, args...)
	fmt.Fprintln(o.out)
}

// record stores metrics for a finished run. Failing to write them never
// changes the outcome of the run.
func (o *Operator) record(operation string, exitCode int, d time.Duration, err error) {
	o.metrics.Observe(operation, exitCode, d, err)
	if ferr := o.metrics.Flush(operation); ferr != nil {
		o.log.Warn("metrics not written", "error", ferr.Error())
	}
}
