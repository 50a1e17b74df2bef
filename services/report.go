package services

import (
	"fmt"
	"io"
	"strings"

	"auction-etl/models"
)

// PrintReport renders the run summary.
func PrintReport(w io.Writer, r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  AUCTION EXTRACTION SUMMARY\n")
	fmt.Fprintf(w, "%s\n\n", sep)

	fmt.Fprintf(w, "  Overview\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Documents processed : %d\n", r.Documents)
	fmt.Fprintf(w, "  Listings processed  : %d\n", r.Listings)
	fmt.Fprintf(w, "  Records skipped     : %d\n", r.Skipped)
	fmt.Fprintf(w, "  Unknown months      : %d\n", r.UnknownMonths)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Rows written per relation\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, rel := range models.AllRelations {
		fmt.Fprintf(w, "  %-12s %8d\n", rel.Name(), r.Rows[rel])
	}
	fmt.Fprintf(w, "  %-12s %8d\n", "TOTAL", r.TotalRows())

	if len(r.Loaded) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Rows loaded per table\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for _, rel := range models.AllRelations {
			fmt.Fprintf(w, "  %-12s %8d\n", rel.Table(), r.Loaded[rel])
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", sep)
}
