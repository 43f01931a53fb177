package operations

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kebairia/mongosnap/internal/errors"
)

// ManifestFilename is written next to the dataset folders of a backup.
const ManifestFilename = "manifest.json"

// Version is stamped into manifests. Overridden at build time with
// -ldflags "-X github.com/kebairia/mongosnap/internal/operations.Version=...".
var Version = "dev"

// Manifest describes one successful backup run.
type Manifest struct {
	RunID       string        `json:"run_id"`
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Source      string        `json:"source"`
	Datasets    []string      `json:"datasets"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration_ns"`
	Version     string        `json:"version"`
}

// LoadManifest reads the manifest of the backup folder dir.
func LoadManifest(dir string) (*Manifest, error) {
	filePath := filepath.Join(dir, ManifestFilename)
	jsonFile, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "manifest %s", filePath)
		}
		return nil, errors.Wrapf(err, "open manifest %s", filePath)
	}
	defer jsonFile.Close()

	var m Manifest
	if err := json.NewDecoder(jsonFile).Decode(&m); err != nil {
		return nil, errors.Wrapf(err, "decode manifest %s", filePath)
	}
	return &m, nil
}

// Write stores the manifest in dir, which must already exist.
func (m *Manifest) Write(dir string) error {
	filePath := filepath.Join(dir, ManifestFilename)

	jsonFile, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "create manifest %s", filePath)
	}
	defer jsonFile.Close()

	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	return nil
}
