package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/legal-lab/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or revert the embedded schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := database.Migrate(db.Connection(), database.Direction(args[0]))
	if err != nil {
		return err
	}

	cmd.Printf("migrations %s complete, schema version %d\n", args[0], version)
	return nil
}
