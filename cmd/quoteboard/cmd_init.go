package main

import (
	"fmt"
	"os"

	"quoteboard/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initForce bool

// initCmd writes a default config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes the default configuration to --config (default .quoteboard/config.yaml).
Edit source.location to point at your CSV, shared spreadsheet, or SQLite table.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	c := config.DefaultConfig()
	if sourceFlag != "" {
		c.Source.Location = sourceFlag
	}
	if err := c.Save(configPath); err != nil {
		return err
	}
	logger.Info("Wrote config", zap.String("path", configPath))
	fmt.Printf("Wrote %s\n", configPath)
	return nil
}
