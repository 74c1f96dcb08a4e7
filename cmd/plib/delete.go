package main

import (
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <path>...",
	Short: "Remove photos from the library",
	Long: `Remove photos from the library database and their album memberships.

Files that were uploaded into the managed library are deleted from disk.
Scanned originals are left where they are; only their records are removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	deleted, err := a.DeletePhotos(args)
	if err != nil {
		return err
	}

	if deleted < len(args) {
		util.WarnLog("%d of %d paths were not in the library", len(args)-deleted, len(args))
	}
	util.SuccessLog("Deleted %d photos", deleted)
	return nil
}
