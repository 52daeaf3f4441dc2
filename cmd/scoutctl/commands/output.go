package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"github.com/okian/scout/internal/domain/types"
)

func validatePositiveInt(v int, name string) error {
	if v < 1 {
		return fmt.Errorf("--%s must be positive, got %d", name, v)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func writeMatchTable(out io.Writer, resp types.SimilarResponse) error {
	ref := resp.Reference
	fmt.Fprintf(out, "Reference: %s (%s, age %d, value_eur %.0f)\n\n", ref.Name, ref.Club, ref.Age, ref.ValueEUR)

	if len(resp.Matches) == 0 {
		_, err := fmt.Fprintln(out, "No matches")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tCLUB\tLEAGUE\tAGE\tVALUE_EUR\tOVR\tPOS\tDISTANCE")
	for i, m := range resp.Matches {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.0f\t%d\t%s\t%.3f\n",
			i+1,
			truncate(m.Name, 24),
			truncate(m.Club, 24),
			truncate(orDash(m.League), 20),
			m.Age,
			m.ValueEUR,
			m.Overall,
			strings.Join(m.Positions, ","),
			m.Distance,
		)
	}
	return w.Flush()
}

func writePlayerTable(out io.Writer, page types.PlayerPage) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCLUB\tLEAGUE\tAGE\tVALUE_EUR\tOVR\tPOT")
	for _, p := range page.Players {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.0f\t%d\t%d\n",
			p.ID,
			truncate(p.Name, 24),
			truncate(p.Club, 24),
			truncate(orDash(p.League), 20),
			p.Age,
			p.ValueEUR,
			p.Overall,
			p.Potential,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d-%d of %d\n", page.Offset+min(1, len(page.Players)), page.Offset+len(page.Players), page.Total)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
