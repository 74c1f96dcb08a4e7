package main

import (
	"fmt"
	"time"

	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List photos in the library",
	Long: `List photos newest first.

By default every photo is listed. Use --album, --favorites or
--year/--month to narrow the list.`,
	Args: cobra.NoArgs,
	RunE: runPhotos,
}

func init() {
	rootCmd.AddCommand(photosCmd)

	photosCmd.Flags().Int64("album", 0, "List photos in this album")
	photosCmd.Flags().Bool("favorites", false, "List favorites only")
	photosCmd.Flags().Int("year", 0, "List photos taken in this year (requires --month)")
	photosCmd.Flags().Int("month", 0, "List photos taken in this month (1-12)")
	photosCmd.Flags().Bool("json", false, "Print as JSON")
}

func runPhotos(cmd *cobra.Command, args []string) error {
	albumID, _ := cmd.Flags().GetInt64("album")
	favorites, _ := cmd.Flags().GetBool("favorites")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	var photos []store.Photo
	switch {
	case albumID != 0:
		photos, err = a.GetAlbumPhotos(albumID)
	case favorites:
		photos, err = a.GetFavorites()
	case year != 0 || month != 0:
		if year == 0 || month == 0 {
			return fmt.Errorf("--year and --month must be used together")
		}
		photos, err = a.GetPhotosByMonth(year, time.Month(month))
	default:
		photos, err = a.GetAllPhotos()
	}
	if err != nil {
		return err
	}

	if asJSON {
		if photos == nil {
			photos = []store.Photo{}
		}
		return printJSON(stdout(), photos)
	}

	if len(photos) == 0 {
		util.InfoLog("No photos found")
		return nil
	}
	printPhotos(stdout(), photos)
	return nil
}
