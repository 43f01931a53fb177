package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/naming"
	"github.com/kebairia/mongosnap/internal/paths"
)

// AppName names the config file and its XDG directory.
const AppName = "mongosnap"

// DefaultEnvFile is read when present; an explicit --env-file must exist.
const DefaultEnvFile = ".env"

// ErrLoadConfig indicates a failure to read or parse the configuration.
var ErrLoadConfig = errors.Mark(errors.New("config load failed"), errors.ErrConfig)

// Config is read once at startup and passed to every component.
type Config struct {
	Source  string        `mapstructure:"source_uri" yaml:"source_uri"`
	Target  string        `mapstructure:"target_uri" yaml:"target_uri"`
	Backup  BackupConfig  `mapstructure:"backup"     yaml:"backup"`
	Vault   VaultConfig   `mapstructure:"vault"      yaml:"vault"`
	Metrics MetricsConfig `mapstructure:"metrics"    yaml:"metrics"`
}

// BackupConfig contains backup root and external tool options.
type BackupConfig struct {
	Path            string        `mapstructure:"path"             yaml:"path"`
	TimestampFormat string        `mapstructure:"timestamp_format" yaml:"timestamp_format"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	DumpBinary      string        `mapstructure:"dump_binary"      yaml:"dump_binary"`
	RestoreBinary   string        `mapstructure:"restore_binary"   yaml:"restore_binary"`
	DumpArgs        []string      `mapstructure:"dump_args"        yaml:"dump_args,omitempty"`
	RestoreArgs     []string      `mapstructure:"restore_args"     yaml:"restore_args,omitempty"`
}

// VaultConfig points at KV secrets holding the connection strings. Vault is
// only consulted for a connection string that is not set otherwise.
type VaultConfig struct {
	Address    string `mapstructure:"address"     yaml:"address"`
	RoleID     string `mapstructure:"role_id"     yaml:"role_id,omitempty"`
	RoleName   string `mapstructure:"role_name"   yaml:"role_name,omitempty"`
	SourcePath string `mapstructure:"source_path" yaml:"source_path,omitempty"`
	TargetPath string `mapstructure:"target_path" yaml:"target_path,omitempty"`
	Field      string `mapstructure:"field"       yaml:"field,omitempty"`
}

// MetricsConfig controls the Prometheus textfile output. An empty
// TextfileDir disables it.
type MetricsConfig struct {
	TextfileDir string `mapstructure:"textfile_dir" yaml:"textfile_dir,omitempty"`
}

// keys lists every leaf key; each is also readable from MONGOSNAP_<KEY>.
var keys = []string{
	"source_uri",
	"target_uri",
	"backup.path",
	"backup.timestamp_format",
	"backup.timeout",
	"backup.dump_binary",
	"backup.restore_binary",
	"backup.dump_args",
	"backup.restore_args",
	"vault.address",
	"vault.role_id",
	"vault.role_name",
	"vault.source_path",
	"vault.target_path",
	"vault.field",
	"metrics.textfile_dir",
}

// legacyEnv maps the historical variable names onto config keys.
var legacyEnv = map[string]string{
	"OLD_DB_URI":  "source_uri",
	"NEW_DB_URI":  "target_uri",
	"BACKUP_PATH": "backup.path",
}

func envName(key string) string {
	return strings.ToUpper(AppName + "_" + strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backup.path", paths.DefaultBackupPath)
	v.SetDefault("backup.timestamp_format", naming.DefaultTimestampFormat)
	v.SetDefault("backup.timeout", time.Duration(0))
	v.SetDefault("backup.dump_binary", "mongodump")
	v.SetDefault("backup.restore_binary", "mongorestore")
	v.SetDefault("vault.field", "uri")
}

// Load reads configuration from, in increasing precedence: defaults, the
// dotenv file, the YAML config file and the environment.
//
// An empty path searches ./mongosnap.yaml and $XDG_CONFIG_HOME/mongosnap/.
// An empty envFile tries DefaultEnvFile and ignores its absence.
func (c *Config) Load(path, envFile string) error {
	v := viper.New()
	setDefaults(v)

	if err := loadEnvFile(v, envFile); err != nil {
		return err
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return errors.Wrapf(ErrLoadConfig, "read config %s: %v", path, err)
		}
	}

	for _, key := range keys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return errors.Wrapf(ErrLoadConfig, "bind env %s: %v", key, err)
		}
	}
	for env, key := range legacyEnv {
		if _, ok := os.LookupEnv(envName(key)); ok {
			continue
		}
		if val, ok := os.LookupEnv(env); ok {
			v.Set(key, val)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return errors.Wrapf(ErrLoadConfig, "unmarshal config: %v", err)
	}
	return nil
}

// loadEnvFile feeds a dotenv file into viper as defaults, so both the
// config file and the real environment override it.
func loadEnvFile(v *viper.Viper, envFile string) error {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(ErrLoadConfig, "env file %s: %v", envFile, err)
	}

	ev := viper.New()
	ev.SetConfigFile(envFile)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return errors.Wrapf(ErrLoadConfig, "read env file %s: %v", envFile, err)
	}

	for env, key := range legacyEnv {
		if ev.IsSet(env) {
			v.SetDefault(key, ev.GetString(env))
		}
	}
	for _, key := range keys {
		if ev.IsSet(envName(key)) {
			v.SetDefault(key, ev.Get(envName(key)))
		}
	}
	return nil
}

// Validate checks values that do not depend on the operation being run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backup.Path) == "" {
		return errors.Wrap(errors.ErrConfig, "backup.path must not be empty")
	}
	if err := naming.ValidateLayout(c.Backup.TimestampFormat); err != nil {
		return err
	}
	if c.Backup.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfig, "backup.timeout must not be negative, got %s", c.Backup.Timeout)
	}
	if c.Backup.DumpBinary == "" || c.Backup.RestoreBinary == "" {
		return errors.Wrap(errors.ErrConfig, "backup.dump_binary and backup.restore_binary must be set")
	}
	return nil
}

// RequireSource checks the connection string used by backups.
func (c *Config) RequireSource() error {
	return requireURI("source", "OLD_DB_URI", c.Source)
}

// RequireTarget checks the connection string used by restores.
func (c *Config) RequireTarget() error {
	return requireURI("target", "NEW_DB_URI", c.Target)
}

func requireURI(name, env, uri string) error {
	if uri == "" {
		return errors.WithHint(
			errors.Wrapf(errors.ErrConfig, "%s connection string is not set", name),
			"set "+env+" in the environment or .env file",
		)
	}
	if _, err := catalog.ParseTarget(uri); err != nil {
		return errors.Wrapf(errors.ErrConfig, "%s connection string: %v", name, err)
	}
	return nil
}
