package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/photo-librarian/internal/ingest"
	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPhotos(w io.Writer, photos []store.Photo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN\tSIZE\tTYPE\tFAV\tPATH")
	for _, p := range photos {
		fav := ""
		if p.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			time.Unix(p.DateTaken, 0).Format("2006-01-02 15:04"),
			dimensions(p), p.Kind, fav, p.Path)
	}
	tw.Flush()
}

func printAlbums(w io.Writer, albums []store.Album) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHOTOS\tCREATED\tCOVER")
	for _, a := range albums {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, humanize.Comma(int64(a.Count)),
			humanize.Time(time.Unix(a.CreatedAt, 0)), a.CoverPath)
	}
	tw.Flush()
}

func dimensions(p store.Photo) string {
	if p.Width == 0 || p.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// reportIngest logs the outcome of a scan or upload batch
func reportIngest(verb string, result *ingest.Result, elapsed time.Duration) {
	util.SuccessLog("%s %s files in %v", verb, humanize.Comma(int64(len(result.Records))), elapsed.Round(time.Millisecond))
	if result.Skipped > 0 {
		util.InfoLog("  Skipped (unsupported): %s", humanize.Comma(int64(result.Skipped)))
	}
	if len(result.Failures) > 0 {
		util.WarnLog("  Failed: %d", len(result.Failures))
		for _, f := range result.Failures {
			util.WarnLog("    %s: %v", f.Path, f.Err)
		}
	}
}

func stdout() io.Writer {
	return os.Stdout
}
