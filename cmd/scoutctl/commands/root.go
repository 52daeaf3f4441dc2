// Package commands implements the scoutctl command tree.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// global flags
var (
	datasetPath   string
	datasetSource string
	sqliteTable   string
	serverURL     string
	outputFormat  string
)

// NewRootCmd builds the scoutctl command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scoutctl",
		Short: "Query a players dataset for similar players",
		Long: `scoutctl runs similarity searches either directly against a dataset
file (--dataset) or against a running scout server (--url).

Environment variables may be placed in a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			if outputFormat != formatTable && outputFormat != formatJSON {
				return fmt.Errorf("--format must be %q or %q, got %q", formatTable, formatJSON, outputFormat)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&datasetPath, "dataset", "", "Dataset file, CSV or SQLite (default $SCOUT_DATASET_PATH)")
	pf.StringVar(&datasetSource, "source", "auto", "Dataset source: auto, csv or sqlite")
	pf.StringVar(&sqliteTable, "table", "players", "SQLite table holding the players")
	pf.StringVar(&serverURL, "url", "", "Base URL of a scout server, e.g. http://localhost:9080")
	pf.StringVar(&outputFormat, "format", formatTable, "Output format: table or json")

	cmd.AddCommand(NewSimilarCmd(), NewPlayersCmd(), NewVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
