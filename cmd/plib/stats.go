package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show photo counts per year",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "Print as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	counts, err := a.GetYearCounts()
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(stdout(), counts)
	}

	albums, err := a.GetAlbums()
	if err != nil {
		return err
	}
	favorites, err := a.GetFavorites()
	if err != nil {
		return err
	}

	total := 0
	tw := tabwriter.NewWriter(stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tPHOTOS")
	for _, c := range counts {
		total += c.Count
		fmt.Fprintf(tw, "%d\t%s\n", c.Year, humanize.Comma(int64(c.Count)))
	}
	tw.Flush()

	util.InfoLog("")
	util.InfoLog("Total: %s photos, %s favorites, %s albums",
		humanize.Comma(int64(total)), humanize.Comma(int64(len(favorites))), humanize.Comma(int64(len(albums))))
	util.InfoLog("Database: %s", a.DBPath())
	util.InfoLog("Library: %s", a.LibraryRoot())
	return nil
}
