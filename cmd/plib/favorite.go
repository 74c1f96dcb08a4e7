package main

import (
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <path>",
	Short: "Mark a photo as favorite (or unmark with --unset)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavorite,
}

func init() {
	rootCmd.AddCommand(favoriteCmd)

	favoriteCmd.Flags().Bool("unset", false, "Remove the favorite mark")
}

func runFavorite(cmd *cobra.Command, args []string) error {
	unset, _ := cmd.Flags().GetBool("unset")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := a.ToggleFavorite(args[0], !unset); err != nil {
		return err
	}

	if unset {
		util.SuccessLog("Removed favorite: %s", args[0])
	} else {
		util.SuccessLog("Marked favorite: %s", args[0])
	}
	return nil
}
