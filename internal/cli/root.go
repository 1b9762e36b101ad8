package cli

import (
	"io"
	"path/filepath"

	"github.com/soyeahso/clawdock/internal/config"
	"github.com/soyeahso/clawdock/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	logLevel     string
	resourcesDir string

	// loaded at init time
	paths     config.Paths
	cfg       config.Config
	cfgErr    error
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clawdock",
		Short: "clawdock installs and runs the zeroclaw agent",
		Long: "clawdock installs the bundled zeroclaw agent on first run, keeps its gateway " +
			"configuration in shape, and starts or queries the agent's gateway.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// Config errors are reported by the commands that need the
			// config, so `config set` can still repair a broken file.
			cfg, cfgErr = config.Load(paths.Config)
			if resourcesDir != "" {
				cfg.Resources.Dir = resourcesDir
			}

			opts := logging.Options{Level: cfg.Logging.Level, Style: cfg.Logging.Style}
			if logLevel != "" {
				opts.Level = logLevel
			}
			if cfg.Logging.File != "" {
				opts.File = logFilePath(cfg.Logging.File)
			}
			log, logCloser, err = logging.Open(opts)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.clawdock/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.PersistentFlags().StringVar(&resourcesDir, "resources", "", "resource bundle directory (default: resources/ next to the executable)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newGatewayCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newPathsCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// logFilePath resolves a relative logging.file under the logs directory.
func logFilePath(p string) string {
	if expanded, err := config.ExpandHome(p); err == nil {
		p = expanded
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(paths.Logs, p)
	}
	return p
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
