package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"quoteboard/internal/board"
	"quoteboard/internal/config"
	"quoteboard/internal/logging"
	"quoteboard/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	sourceFlag string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quoteboard",
	Short: "quoteboard - vendor price quote dashboard",
	Long: `quoteboard loads vendor price quotes from a local CSV, a shared
spreadsheet, or a SQLite table and ranks them by unit price.

Run without arguments to open the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		// Skip logger init for interactive mode (it owns the terminal)
		if cmd.Use == "quoteboard" && cmd.CalledAs() == "quoteboard" {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "Quote source: CSV path, sheet URL, or file.db#table (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout for one-shot commands")

	rootCmd.AddCommand(queryCmd, vendorsCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file, flags, and logging setup.
func loadConfig() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if sourceFlag != "" {
		c.Source.Location = sourceFlag
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logging.Initialize(c.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Get(logging.CategoryBoot).Info("config %s, source %s", configPath, c.Source.Location)
	cfg = c
	return nil
}

// openBoard builds the board for the configured source.
func openBoard(c *config.Config) (*board.Board, source.Descriptor, error) {
	d, err := source.Parse(c.Source.Location)
	if err != nil {
		return nil, source.Descriptor{}, err
	}
	src, err := source.Open(d, source.Options{FetchTimeout: c.GetFetchTimeout()})
	if err != nil {
		return nil, d, err
	}
	b := board.New(src, board.Options{
		Schema: c.Columns,
		Policy: c.Query.Policy,
		Cache:  board.DefaultCachePolicy(d.Kind, c.GetCacheTTL()),
	})
	return b, d, nil
}

// commandContext bounds a one-shot command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(baseCtx)
	}
	return context.WithTimeout(baseCtx, timeout)
}
