package vault

import (
	"context"
	"fmt"
	"os"

	vault "github.com/hashicorp/vault/api"
	"github.com/mitchellh/mapstructure"

	"github.com/kebairia/mongosnap/internal/errors"
)

const (
	approleSecretIDPath = "auth/approle/role/%s/secret-id"
	approleLoginPath    = "auth/approle/login"
)

// ErrClientInit indicates failure to initialize the Vault API client.
var ErrClientInit = errors.New("vault client initialization failed")

// ErrSecretNotFound indicates the KV path or field holds no value.
var ErrSecretNotFound = errors.New("vault secret not found")

type Option func(*config)

type config struct {
	address  string
	token    string
	roleID   string
	roleName string
}

// Client reads connection strings from Vault KV secrets.
type Client struct {
	api    *vault.Client
	config *config
}

// kvEnvelope is the shape of a KV v2 read; v1 reads have no "data" key.
type kvEnvelope struct {
	Data     map[string]any `mapstructure:"data"`
	Metadata map[string]any `mapstructure:"metadata"`
}

func WithAddress(address string) Option {
	return func(c *config) {
		if address != "" {
			c.address = address
		}
	}
}

func WithToken(token string) Option {
	return func(c *config) {
		if token != "" {
			c.token = token
		}
	}
}

func WithAppRole(roleID, roleName string) Option {
	return func(c *config) {
		c.roleID = roleID
		c.roleName = roleName
	}
}

// NewClient creates and initializes a Vault Client using provided options.
// It will perform AppRole login if roleID and roleName are both set, otherwise
// a static token (from env or WithToken) is used.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		address: os.Getenv("VAULT_ADDR"),
		token:   os.Getenv("VAULT_TOKEN"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiCfg := vault.DefaultConfig()
	if cfg.address != "" {
		apiCfg.Address = cfg.address
	}

	api, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, errors.Wrapf(ErrClientInit, "%v", err)
	}

	client := &Client{api: api, config: cfg}
	if cfg.token != "" {
		client.api.SetToken(cfg.token)
	}

	if cfg.roleID != "" && cfg.roleName != "" {
		if err := client.loginAppRole(ctx); err != nil {
			return nil, errors.Wrap(err, "AppRole login failed")
		}
	}

	return client, nil
}

// loginAppRole performs AppRole login using the configured roleID and roleName.
func (c *Client) loginAppRole(ctx context.Context) error {
	path := fmt.Sprintf(approleSecretIDPath, c.config.roleName)
	resp, err := c.api.Logical().WriteWithContext(ctx, path, nil)
	if err != nil {
		return errors.Wrap(err, "generate secret_id")
	}
	if resp == nil {
		return errors.Newf("empty response from %s", path)
	}
	sid, ok := resp.Data["secret_id"].(string)
	if !ok || sid == "" {
		return errors.Newf("no secret_id returned from %s", path)
	}

	loginData := map[string]any{
		"role_id":   c.config.roleID,
		"secret_id": sid,
	}
	loginResp, err := c.api.Logical().WriteWithContext(ctx, approleLoginPath, loginData)
	if err != nil {
		return errors.Wrap(err, "approle login request")
	}
	if loginResp == nil || loginResp.Auth == nil || loginResp.Auth.ClientToken == "" {
		return errors.New("no token in login response")
	}
	c.api.SetToken(loginResp.Auth.ClientToken)
	return nil
}

// GetConnectionString reads field from the KV secret at path. Both KV v1 and
// KV v2 (data wrapped under "data") layouts are accepted.
func (c *Client) GetConnectionString(ctx context.Context, path, field string) (string, error) {
	secret, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", errors.Wrapf(err, "vault read %s", path)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.Wrapf(ErrSecretNotFound, "no data found at path: %s", path)
	}
	return fieldFrom(secret.Data, path, field)
}

func fieldFrom(data map[string]any, path, field string) (string, error) {
	var env kvEnvelope
	if err := mapstructure.Decode(data, &env); err != nil {
		return "", errors.Wrapf(err, "decode secret at %s", path)
	}
	if env.Data != nil && env.Metadata != nil {
		data = env.Data
	}

	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", errors.Wrapf(ErrSecretNotFound, "field %q missing at path: %s", field, path)
	}
	return value, nil
}
