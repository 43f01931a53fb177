package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kebairia/mongosnap/internal/config"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/logger"
	"github.com/kebairia/mongosnap/internal/operations"
	"github.com/kebairia/mongosnap/internal/prompt"
)

var (
	// ConfigFile is the path to the YAML configuration. Empty means search
	// ./mongosnap.yaml and the XDG config directories.
	ConfigFile string
	// EnvFile holds legacy KEY=VALUE settings.
	EnvFile string

	timeout time.Duration
	verbose bool
	noColor bool

	// cfg is loaded once in PersistentPreRunE.
	cfg config.Config
	log logger.Logger = logger.Nop()

	// newPrompter is replaced in tests.
	newPrompter = func(out io.Writer) prompt.Prompter { return prompt.New(os.Stdin, out) }

	rootCmd = &cobra.Command{
		Use:   "mongosnap",
		Short: "Labeled, timestamped MongoDB backups and restores",
		Long: `mongosnap wraps mongodump and mongorestore. Backups are written to
<backup path>/<label>-<timestamp>; restores pick a backup folder and one
dataset inside it and replace the matching database on the target.`,
		Example: `  # Interactive backup of OLD_DB_URI
  mongosnap backup

  # Non-interactive backup with a label
  mongosnap backup --label before-migration

  # Restore into NEW_DB_URI
  mongosnap restore

  # Show existing backups
  mongosnap list`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ConfigFile, "config", "c", "", "path to YAML config file")
	flags.StringVar(&EnvFile, "env-file", config.DefaultEnvFile, "path to a .env file with OLD_DB_URI, NEW_DB_URI and BACKUP_PATH")
	flags.DurationVar(&timeout, "timeout", 0, "abort mongodump/mongorestore after this long (0 disables)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Version = operations.Version
	rootCmd.SetVersionTemplate("mongosnap version {{.Version}}\n")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(listCmd)
}

// setup initializes logging and loads the configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if noColor {
		color.NoColor = true
	}

	l, err := logger.Init(verbose)
	if err != nil {
		return errors.NewSystemError(err, "failed to initialize logger")
	}
	log = l

	// an explicit --env-file must exist, the default one may be absent
	envFile := ""
	if cmd.Flags().Changed("env-file") {
		envFile = EnvFile
	}

	var c config.Config
	if err := c.Load(ConfigFile, envFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		c.Backup.Timeout = timeout
	}
	cfg = c
	log.Debug("configuration loaded", "config", ConfigFile, "env_file", envFile, "backup_path", cfg.Backup.Path)
	return nil
}

func newOperator(cmd *cobra.Command) (*operations.Operator, error) {
	out := cmd.OutOrStdout()
	return operations.NewOperator(cmd.Context(), cfg,
		operations.WithOutput(out),
		operations.WithPrompter(newPrompter(out)),
		operations.WithLogger(log),
	)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	defer logger.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stderr)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}

	exitErr := errors.Classify(err)
	report(stderr, exitErr)
	log.Debug("command failed", "exit_code", exitErr.Code, "error", fmt.Sprintf("%+v", err))
	return exitErr.Code
}

func report(w io.Writer, exitErr *errors.ExitError) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, exitErr.Error())

	for _, hint := range errors.GetAllHints(exitErr) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	if exitErr.Suggestion != "" {
		color.New(color.FgYellow).Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
}
