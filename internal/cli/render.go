package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/exp/slices"

	"github.com/dreamware/reel/internal/catalog"
	"github.com/dreamware/reel/internal/movie"
)

// renderMovies writes movies sorted by id. The input slice is not modified.
func renderMovies(w io.Writer, format string, movies []movie.Movie) error {
	sorted := slices.Clone(movies)
	slices.SortFunc(sorted, func(a, b movie.Movie) int {
		return strings.Compare(a.ID, b.ID)
	})
	if sorted == nil {
		sorted = []movie.Movie{}
	}

	if format == "json" {
		return writeJSON(w, sorted)
	}
	return writeTable(w, sorted)
}

func renderMovie(w io.Writer, format string, m movie.Movie) error {
	if format == "json" {
		return writeJSON(w, m)
	}
	return writeTable(w, []movie.Movie{m})
}

func renderStats(w io.Writer, format string, info catalog.Info) error {
	if format == "json" {
		return writeJSON(w, info)
	}
	ops := info.Operations
	_, err := fmt.Fprintf(w,
		"movies:  %d\nlists:   %d\ngets:    %d\ncreates: %d\nupdates: %d\ndeletes: %d\nmisses:  %d\n",
		info.Movies, ops.Lists, ops.Gets, ops.Creates, ops.Updates, ops.Deletes, ops.Misses)
	return err
}

func writeTable(w io.Writer, movies []movie.Movie) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tYEAR\tGOOD")
	for _, m := range movies {
		good := "no"
		if m.WasGood {
			good = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", m.ID, m.Name, m.Year, good)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
