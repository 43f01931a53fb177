package database

import (
	"context"

	"github.com/kebairia/mongosnap/internal/config"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/logger"
	"github.com/kebairia/mongosnap/internal/vault"
)

// Endpoints are the databases one run may touch. A nil endpoint means its
// connection string is not configured.
type Endpoints struct {
	Source Database
	Target Database
}

// secretRef ties a connection string in the config to its Vault path.
type secretRef struct {
	name string
	uri  *string
	path string
}

// ResolveSecrets reads connection strings that are unset in cfg from Vault.
// It does nothing unless vault.address and a matching path are configured.
func ResolveSecrets(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	v := cfg.Vault
	refs := []secretRef{
		{name: "source", uri: &cfg.Source, path: v.SourcePath},
		{name: "target", uri: &cfg.Target, path: v.TargetPath},
	}

	var pending []secretRef
	for _, ref := range refs {
		if *ref.uri == "" && ref.path != "" {
			pending = append(pending, ref)
		}
	}
	if v.Address == "" || len(pending) == 0 {
		return nil
	}

	client, err := vault.NewClient(ctx,
		vault.WithAddress(v.Address),
		vault.WithAppRole(v.RoleID, v.RoleName),
	)
	if err != nil {
		return errors.Wrapf(errors.ErrConfig, "vault client init: %v", err)
	}

	for _, ref := range pending {
		uri, err := client.GetConnectionString(ctx, ref.path, v.Field)
		if err != nil {
			return errors.Wrapf(errors.ErrConfig, "%s connection string: %v", ref.name, err)
		}
		*ref.uri = uri
		log.Debug("connection string read from vault", "endpoint", ref.name, "path", ref.path)
	}
	return nil
}

// InitializeDatabases resolves secrets and builds a MongoDB endpoint for
// every configured connection string. cfg is updated in place.
func InitializeDatabases(ctx context.Context, cfg *config.Config, log logger.Logger) (Endpoints, error) {
	if err := ResolveSecrets(ctx, cfg, log); err != nil {
		return Endpoints{}, err
	}

	var eps Endpoints
	if cfg.Source != "" {
		eps.Source = NewMongoDB(*cfg, WithMongoURI(cfg.Source), WithMongoLogger(log))
	}
	if cfg.Target != "" {
		eps.Target = NewMongoDB(*cfg, WithMongoURI(cfg.Target), WithMongoLogger(log))
	}
	return eps, nil
}
