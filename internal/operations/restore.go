package operations

import (
	"context"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/metrics"
	"github.com/kebairia/mongosnap/internal/paths"
	"github.com/kebairia/mongosnap/internal/runner"
	"github.com/kebairia/mongosnap/internal/target"
)

const (
	folderPrompt       = "Select a backup folder to restore:"
	datasetPrompt      = "Enter the name of the dataset to restore"
	datasetRetryPrompt = "Do you want to try a different dataset name?"
)

// RestoreRequest carries values given on the command line. Empty fields are
// asked for interactively.
type RestoreRequest struct {
	Backup    string
	Dataset   string
	AssumeYes bool
}

// RestoreReport describes a finished restore run.
type RestoreReport struct {
	Selection target.Selection
	Result    runner.Result
}

// Restore picks a backup folder and a dataset inside it and restores that
// dataset into the target database, dropping the collections it replaces.
//
// A missing or empty backup root fails before anything is asked.
func (o *Operator) Restore(ctx context.Context, req RestoreRequest) (*RestoreReport, error) {
	if err := o.cfg.RequireTarget(); err != nil {
		return nil, err
	}
	if o.target == nil {
		return nil, errors.Wrap(errors.ErrConfig, "no target database configured")
	}
	if err := paths.RequireRoot(o.root); err != nil {
		return nil, errors.WithHint(err, "no backups have been taken yet")
	}
	folders, err := catalog.ListBackups(o.root)
	if err != nil {
		return nil, err
	}

	defaultDataset, err := catalog.DefaultDatasetName(o.cfg.Target)
	if err != nil {
		return nil, err
	}

	folder, err := o.chooseFolder(req.Backup, folders)
	if err != nil {
		return nil, err
	}
	backupPath := filepath.Join(o.root, folder)

	sel, err := o.chooseDataset(backupPath, req.Dataset, defaultDataset)
	if err != nil {
		return nil, err
	}

	if !req.AssumeYes {
		o.say(warnColor, "⚠️  Collections of %q in %s will be dropped and replaced.",
			sel.Dataset, catalog.Redact(o.cfg.Target))
		ok, err := o.prompt.Confirm("Continue with the restore?", false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Wrap(errors.ErrAborted, "restore canceled by user")
		}
	}

	o.say(infoColor, "♻️  Restoring %s from %s", sel.Dataset, sel.SourcePath)
	started := time.Now()
	res, err := o.target.Restore(ctx, sel)
	o.record(metrics.OperationRestore, res.ExitCode, time.Since(started), err)

	report := &RestoreReport{Selection: sel, Result: res}
	if err != nil {
		return report, errors.Wrapf(err, "restore %s/%s", sel.Backup, sel.Dataset)
	}
	return report, nil
}

func (o *Operator) chooseFolder(requested string, folders []string) (string, error) {
	if requested != "" {
		if !slices.Contains(folders, requested) {
			return "", errors.WithHint(
				errors.Wrapf(errors.ErrNotFound, "backup %q", requested),
				"run: mongosnap list",
			)
		}
		return requested, nil
	}
	return o.prompt.Select(folderPrompt, folders)
}

// chooseDataset loops Prompting → Validating → (Rejected → Prompting |
// Confirmed) until the name matches a dataset folder or the user gives up.
func (o *Operator) chooseDataset(backupPath, requested, defaultName string) (target.Selection, error) {
	var (
		name string
		sel  target.Selection
		err  error
	)

	st := statePrompting
	if requested != "" {
		name = requested
		st = stateValidating
	}

	for {
		switch st {
		case statePrompting:
			name, err = o.prompt.Input(datasetPrompt, defaultName)
			if err != nil {
				return target.Selection{}, err
			}
			st = stateValidating

		case stateValidating:
			sel, err = target.Resolve(backupPath, name, defaultName)
			switch {
			case err == nil:
				st = stateConfirmed
			case requested != "":
				return target.Selection{}, err
			case errors.Is(err, errors.ErrInvalidSelection):
				o.say(errorColor, "❌ %v", err)
				st = stateRejected
			default:
				return target.Selection{}, err
			}

		case stateRejected:
			retry, err := o.prompt.Confirm(datasetRetryPrompt, true)
			if err != nil {
				return target.Selection{}, err
			}
			if !retry {
				return target.Selection{}, errors.Wrap(errors.ErrAborted, "restore canceled by user")
			}
			st = statePrompting

		case stateConfirmed:
			o.log.Debug("restore dataset chosen", "backup", sel.Backup, "dataset", sel.Dataset)
			return sel, nil
		}
	}
}

// ListItem is one backup folder with its manifest, when it has one.
type ListItem struct {
	catalog.Entry
	Manifest *Manifest
}

// List describes every backup folder, newest first.
func (o *Operator) List() ([]ListItem, error) {
	if err := paths.RequireRoot(o.root); err != nil {
		return nil, err
	}
	names, err := catalog.ListBackups(o.root)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(names))
	for _, name := range names {
		entry, err := catalog.Describe(o.root, name)
		if err != nil {
			return nil, err
		}
		item := ListItem{Entry: entry}
		if m, err := LoadManifest(entry.Path); err == nil {
			item.Manifest = m
		} else if !errors.Is(err, errors.ErrNotFound) {
			o.log.Warn("unreadable manifest", "backup", name, "error", err.Error())
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ModTime.After(items[j].ModTime)
	})
	return items, nil
}
