// Package cli holds the cobra commands of the credmerge binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"credmerge/internal/config"
	"credmerge/internal/ingest"
	"credmerge/internal/logging"
	"credmerge/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "credmerge.yml"

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitNoInput = 2
)

var version = "dev"

type app struct {
	configPath string
	verbose    bool
	logFormat  string

	logsDir    string
	outputPath string
	format     string
	dryRun     bool
	noArchive  bool
	showNew    bool

	cfg    *types.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree. Running the root command performs one
// merge pass.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "credmerge",
		Short: "Consolidate Responder capture files into one deduplicated hash list",
		Long: `credmerge reads the per-protocol capture files Responder writes to its logs
directory, keeps the first credential seen for each identity and hash type,
rewrites the consolidated output atomically and moves the consumed files
into a dated archive folder.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOnce(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", DefaultConfigPath, "Path to config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&a.logFormat, "log-format", "json", "Log format: json or console")
	pf.StringVar(&a.logsDir, "logs-dir", "", "Directory holding the capture files")
	pf.StringVarP(&a.outputPath, "output", "o", "", "Consolidated output file")
	pf.StringVar(&a.format, "format", "", "Report format: text or json")
	pf.BoolVar(&a.dryRun, "dry-run", false, "Report what would be merged without writing or archiving")
	pf.BoolVar(&a.noArchive, "no-archive", false, "Leave capture files in place after the merge")
	pf.BoolVar(&a.showNew, "show-new", false, "List newly accepted records (payloads masked)")

	root.AddCommand(
		newWatchCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(a.logFormat, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	if a.logsDir != "" {
		cfg.Input.LogsDir = a.logsDir
	}
	if a.outputPath != "" {
		cfg.Output.Path = a.outputPath
	}
	if a.noArchive {
		cfg.Archive.Enabled = false
	}
	switch a.format {
	case "":
	case "text", "json":
		cfg.Output.Format = a.format
	default:
		return fmt.Errorf("invalid --format %q (want text or json)", a.format)
	}

	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		zap.String("logs_dir", cfg.Input.LogsDir),
		zap.String("output", cfg.Output.Path),
		zap.Bool("archive", cfg.Archive.Enabled),
	)
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) (*types.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(a.configPath); errors.Is(err, os.ErrNotExist) {
			return config.FromEnv()
		}
	}
	return config.LoadConfig(a.configPath)
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ingest.ErrNoInput):
		// already reported
		return ExitNoInput
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFailure
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "credmerge %s\n", version)
		},
	}
}
