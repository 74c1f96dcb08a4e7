package main

import (
	"fmt"
	"strconv"

	"github.com/franz/photo-librarian/internal/store"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List albums with their photo count and cover",
	Args:  cobra.NoArgs,
	RunE:  runAlbums,
}

var albumCmd = &cobra.Command{
	Use:   "album",
	Short: "Create albums and add photos to them",
}

var albumCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty album",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlbumCreate,
}

var albumAddCmd = &cobra.Command{
	Use:   "add <album-id> <path>...",
	Short: "Add photos to an album",
	Long: `Add photos to an album by their library path.

Adding a photo that is already in the album does nothing. If any path is
not in the library, nothing is added.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAlbumAdd,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(albumCmd)
	albumCmd.AddCommand(albumCreateCmd)
	albumCmd.AddCommand(albumAddCmd)

	albumsCmd.Flags().Bool("json", false, "Print as JSON")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	albums, err := a.GetAlbums()
	if err != nil {
		return err
	}

	if asJSON {
		if albums == nil {
			albums = []store.Album{}
		}
		return printJSON(stdout(), albums)
	}

	if len(albums) == 0 {
		util.InfoLog("No albums yet. Create one with 'plib album create <name>'.")
		return nil
	}
	printAlbums(stdout(), albums)
	return nil
}

func runAlbumCreate(cmd *cobra.Command, args []string) error {
	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	album, err := a.CreateAlbum(args[0])
	if err != nil {
		return err
	}

	util.SuccessLog("Created album %q (id %d)", album.Name, album.ID)
	return nil
}

func runAlbumAdd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid album id %q", args[0])
	}

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := a.AddToAlbum(id, args[1:]); err != nil {
		return err
	}

	album, err := a.GetAlbum(id)
	if err != nil {
		return err
	}

	util.SuccessLog("Album %q now holds %d photos", album.Name, album.Count)
	return nil
}
