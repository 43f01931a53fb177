package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kebairia/mongosnap/internal/errors"
)

var schemes = []string{"mongodb://", "mongodb+srv://"}

var credentials = regexp.MustCompile(`://([^:/@]*):([^@/]*)@`)

// ConnectionTarget is the part of a connection string mongosnap cares about.
type ConnectionTarget struct {
	Scheme   string
	Hosts    string
	Database string
	Options  string
}

// ParseTarget splits a MongoDB connection string. Multi-host seed lists are
// accepted, which net/url rejects.
func ParseTarget(uri string) (ConnectionTarget, error) {
	uri = strings.TrimSpace(uri)
	var t ConnectionTarget
	for _, s := range schemes {
		if strings.HasPrefix(uri, s) {
			t.Scheme = strings.TrimSuffix(s, "://")
			uri = strings.TrimPrefix(uri, s)
			break
		}
	}
	if t.Scheme == "" {
		return ConnectionTarget{}, errors.Wrap(errors.ErrInvalidTarget, "connection string must start with mongodb:// or mongodb+srv://")
	}

	rest, opts, _ := strings.Cut(uri, "?")
	t.Options = opts
	hosts, path, _ := strings.Cut(rest, "/")
	if i := strings.LastIndex(hosts, "@"); i >= 0 {
		hosts = hosts[i+1:]
	}
	if hosts == "" {
		return ConnectionTarget{}, errors.Wrap(errors.ErrInvalidTarget, "connection string has no host")
	}
	t.Hosts = hosts

	db, err := url.PathUnescape(path)
	if err != nil {
		return ConnectionTarget{}, errors.Wrapf(errors.ErrInvalidTarget, "database name: %v", err)
	}
	t.Database = db
	return t, nil
}

// DefaultDatasetName returns the database named in the connection string.
// It is only a suggestion for the restore prompt.
func DefaultDatasetName(uri string) (string, error) {
	t, err := ParseTarget(uri)
	if err != nil {
		return "", err
	}
	if t.Database == "" {
		return "", errors.Wrap(errors.ErrInvalidTarget, "connection string does not name a database")
	}
	return t.Database, nil
}

// Redact masks the password in a connection string.
func Redact(uri string) string {
	return credentials.ReplaceAllString(uri, "://$1:***@")
}
