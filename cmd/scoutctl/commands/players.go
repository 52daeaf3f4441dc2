package commands

import (
	"github.com/spf13/cobra"
)

var (
	playersOffset int
	playersLimit  int
)

// NewPlayersCmd creates the players command.
func NewPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List players in table order",
		Long: `List players of a dataset in table order, one page at a time.

Examples:
  scoutctl players --dataset players.csv
  scoutctl players --dataset players.csv --offset 100 --limit 50 --format json`,
		Args: cobra.NoArgs,
		RunE: runPlayers,
	}

	cmd.Flags().IntVar(&playersOffset, "offset", 0, "Rows to skip")
	cmd.Flags().IntVar(&playersLimit, "limit", 20, "Rows to show")

	return cmd
}

func runPlayers(cmd *cobra.Command, _ []string) error {
	if err := validatePositiveInt(playersLimit, "limit"); err != nil {
		return err
	}
	b, err := newBackend(cmd.Context())
	if err != nil {
		return err
	}
	page, err := b.Players(cmd.Context(), playersOffset, playersLimit)
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), page)
	}
	return writePlayerTable(cmd.OutOrStdout(), page)
}
