package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/database"
	"github.com/JaimeStill/legal-lab/pkg/logging"
)

var (
	configDir string
	cfg       *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "legalctl",
	Short:        "Operate the legal document analysis service",
	Long:         `Analyze documents locally, manage the database schema, issue development tokens, and export case records.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}

		loaded, err := config.LoadFrom(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := loaded.Finalize(); err != nil {
			return fmt.Errorf("finalize config: %w", err)
		}

		cfg = loaded
		logger = logging.NewWithWriter(&cfg.Logging, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing config.toml")
}

// openDatabase connects and verifies the configured database.
func openDatabase(cmd *cobra.Command) (*database.System, error) {
	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Start(cmd.Context(), cfg.Database.ConnTimeoutDuration()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(true)
	table.SetColWidth(80)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(false)
	return table
}
