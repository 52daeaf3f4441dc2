package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/scout/internal/domain/search"
)

// similar flags
var (
	similarCount    int
	similarMaxValue float64
	similarMaxAge   int
	similarLeague   string
	similarByID     bool
	similarSort     string
	similarDesc     bool
)

// NewSimilarCmd creates the similar command.
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <name>",
		Short: "Find players similar to a reference player",
		Long: `Find the players closest to a reference player in the standardized
feature space, optionally restricted by valuation, age and league.

The reference player is matched by short name (first match in table
order) or, with --id, by player id.

Examples:
  scoutctl similar --dataset players.csv "L. Messi"
  scoutctl similar --dataset players.csv --count 10 --max-age 23 "K. Mbappé"
  scoutctl similar --url http://localhost:9080 --league "Serie A" --format json "P. Dybala"
  scoutctl similar --dataset players.db --id 158023`,
		Args: cobra.ExactArgs(1),
		RunE: runSimilar,
	}

	f := cmd.Flags()
	f.IntVar(&similarCount, "count", 5, "Number of similar players to return")
	f.Float64Var(&similarMaxValue, "max-value", 0, "Only players valued at most this many euros")
	f.IntVar(&similarMaxAge, "max-age", 0, "Only players at most this old")
	f.StringVar(&similarLeague, "league", "", "Only players from this league")
	f.BoolVar(&similarByID, "id", false, "Treat the argument as a player id")
	f.StringVar(&similarSort, "sort", string(search.SortDistance), "Order by distance, overall, potential, value or age")
	f.BoolVar(&similarDesc, "desc", false, "Reverse the sort order")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(similarCount, "count"); err != nil {
		return err
	}
	key, err := search.ParseSortKey(similarSort)
	if err != nil {
		return err
	}

	q := search.NewQuery(similarCount)
	if cmd.Flags().Changed("max-value") {
		q = q.WithMaxValue(similarMaxValue)
	}
	if cmd.Flags().Changed("max-age") {
		q = q.WithMaxAge(similarMaxAge)
	}
	if cmd.Flags().Changed("league") {
		if strings.TrimSpace(similarLeague) == "" {
			return errors.New("--league must not be empty")
		}
		q = q.WithLeague(similarLeague)
	}

	b, err := newBackend(cmd.Context())
	if err != nil {
		return err
	}
	resp, err := b.Similar(cmd.Context(), similarRequest{
		Ref:   args[0],
		ByID:  similarByID,
		Query: q,
		Sort:  key,
		Desc:  similarDesc,
	})
	if err != nil {
		return fmt.Errorf("similar %q: %w", args[0], err)
	}

	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return writeMatchTable(cmd.OutOrStdout(), resp)
}
