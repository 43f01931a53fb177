package operations

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/metrics"
	"github.com/kebairia/mongosnap/internal/naming"
	"github.com/kebairia/mongosnap/internal/paths"
	"github.com/kebairia/mongosnap/internal/runner"
)

const (
	labelPrompt = "Enter a name for this backup (e.g., 'before-migration')"
	retryPrompt = "Do you want to enter a different name?"
)

// state is a step of an interactive naming or selection loop.
type state int

const (
	statePrompting state = iota
	stateValidating
	stateRejected
	stateConfirmed
)

// BackupReport describes a finished backup run.
type BackupReport struct {
	Name     string
	Path     string
	Result   runner.Result
	Manifest *Manifest
}

// Backup asks for a label (unless label is non-empty), picks a unique folder
// name and dumps the source database into it.
//
// A label passed in is not re-prompted: a collision is returned as an error.
// Declining to enter a different name returns errors.ErrAborted and leaves
// the backup root untouched.
func (o *Operator) Backup(ctx context.Context, label string) (*BackupReport, error) {
	if err := o.cfg.RequireSource(); err != nil {
		return nil, err
	}
	if o.source == nil {
		return nil, errors.Wrap(errors.ErrConfig, "no source database configured")
	}

	created, err := paths.EnsureRoot(o.root)
	if err != nil {
		return nil, err
	}
	if created {
		o.say(mutedColor, "📁 Created backup root at: %s", o.root)
	}

	id, err := o.chooseIdentifier(label)
	if err != nil {
		return nil, err
	}

	backupPath := filepath.Join(o.root, id.Name())
	report := &BackupReport{Name: id.Name(), Path: backupPath}
	o.say(infoColor, "📦 Starting backup to: %s", backupPath)

	started := time.Now()
	res, err := o.source.Backup(ctx, backupPath)
	report.Result = res
	duration := time.Since(started)
	if err != nil {
		o.record(metrics.OperationBackup, res.ExitCode, duration, err)
		return report, errors.Wrapf(err, "backup %s", id.Name())
	}

	report.Manifest = o.writeManifest(id, backupPath, started, duration)
	if entry, err := catalog.Describe(o.root, id.Name()); err == nil {
		o.metrics.ObserveSize(metrics.OperationBackup, entry.Size)
	}
	o.record(metrics.OperationBackup, res.ExitCode, duration, nil)
	return report, nil
}

// chooseIdentifier drives Prompting → Validating → (Rejected → Prompting |
// Confirmed). Nothing is created on disk here.
func (o *Operator) chooseIdentifier(fixedLabel string) (naming.Identifier, error) {
	var (
		label string
		id    naming.Identifier
		err   error
	)

	st := statePrompting
	if fixedLabel != "" {
		label = fixedLabel
		st = stateValidating
	}

	for {
		switch st {
		case statePrompting:
			label, err = o.prompt.Input(labelPrompt, naming.DefaultLabel)
			if err != nil {
				return naming.Identifier{}, err
			}
			st = stateValidating

		case stateValidating:
			existing, err := naming.ExistingNames(o.root)
			if err != nil {
				return naming.Identifier{}, err
			}
			id, err = o.gen.Generate(label, existing)
			switch {
			case errors.Is(err, errors.ErrCollision) && fixedLabel != "":
				return naming.Identifier{}, err
			case errors.Is(err, errors.ErrCollision):
				o.say(errorColor, "❌ %v.", err)
				st = stateRejected
			case err != nil:
				return naming.Identifier{}, err
			default:
				st = stateConfirmed
			}

		case stateRejected:
			retry, err := o.prompt.Confirm(retryPrompt, true)
			if err != nil {
				return naming.Identifier{}, err
			}
			if !retry {
				return naming.Identifier{}, errors.Wrap(errors.ErrAborted, "backup canceled by user")
			}
			st = statePrompting

		case stateConfirmed:
			o.log.Debug("backup name chosen", "name", id.Name())
			return id, nil
		}
	}
}

func (o *Operator) writeManifest(id naming.Identifier, backupPath string, started time.Time, d time.Duration) *Manifest {
	if info, err := os.Stat(backupPath); err != nil || !info.IsDir() {
		o.log.Warn("backup folder missing after dump, manifest skipped", "path", backupPath)
		return nil
	}

	datasets, _ := catalog.ListDatasets(backupPath)
	m := &Manifest{
		RunID:       uuid.New().String(),
		Name:        id.Name(),
		Label:       id.Label,
		Source:      catalog.Redact(o.cfg.Source),
		Datasets:    datasets,
		StartedAt:   started.UTC(),
		CompletedAt: started.Add(d).UTC(),
		Duration:    d,
		Version:     Version,
	}
	if err := m.Write(backupPath); err != nil {
		o.log.Warn("manifest not written", "path", backupPath, "error", err.Error())
		return nil
	}
	return m
}
