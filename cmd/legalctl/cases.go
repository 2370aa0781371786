package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/legal-lab/internal/cases"
	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/storage"
)

var (
	casesUser string
	casesOut  string
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Browse and export persisted case records",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's case records",
	Args:  cobra.NoArgs,
	RunE:  runCasesList,
}

var casesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's case records to an xlsx workbook",
	Args:  cobra.NoArgs,
	RunE:  runCasesExport,
}

func init() {
	casesCmd.PersistentFlags().StringVarP(&casesUser, "user", "u", "", "Owner of the case records")
	_ = casesCmd.MarkPersistentFlagRequired("user")
	casesExportCmd.Flags().StringVarP(&casesOut, "out", "o", "legal-cases.xlsx", "Output file")

	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesExportCmd)
	rootCmd.AddCommand(casesCmd)
}

// openCaseStore opens the configured case backend. The returned func releases it.
func openCaseStore(cmd *cobra.Command) (cases.Store, func(), error) {
	if cfg.Cases.Backend == config.CasesStorage {
		blobs, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := blobs.Init(cmd.Context()); err != nil {
			return nil, nil, err
		}
		return cases.NewBlobStore(blobs, cfg.Pagination), func() {}, nil
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cases.NewPostgresStore(db.Connection(), cfg.Pagination), func() { db.Close() }, nil
}

func runCasesList(cmd *cobra.Command, _ []string) error {
	store, closeStore, err := openCaseStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.All(cmd.Context(), casesUser)
	if err != nil {
		return fmt.Errorf("list cases: %w", err)
	}

	if len(records) == 0 {
		cmd.Printf("No case records for %s\n", casesUser)
		return nil
	}

	table := newTable(cmd.OutOrStdout(), "ID", "Date", "File", "Type", "Status")
	for _, r := range records {
		table.Append([]string{r.ID.String(), r.Date, r.FileName, r.DocumentType, r.Status})
	}
	table.SetFooter([]string{"", "", "", "Total", fmt.Sprint(len(records))})
	table.Render()
	return nil
}

func runCasesExport(cmd *cobra.Command, _ []string) error {
	if !strings.HasSuffix(strings.ToLower(casesOut), ".xlsx") {
		return fmt.Errorf("output file must end in .xlsx: %s", casesOut)
	}

	store, closeStore, err := openCaseStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.All(cmd.Context(), casesUser)
	if err != nil {
		return fmt.Errorf("load cases: %w", err)
	}

	data, err := cases.ExportXLSX(records)
	if err != nil {
		return err
	}

	if err := os.WriteFile(casesOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", casesOut, err)
	}

	cmd.Printf("exported %d case records to %s\n", len(records), casesOut)
	return nil
}
