package main

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Copy files into the managed library",
	Long: `Copy photos and videos into the managed library and record them.

Each file lands in <library>/<YYYY>/<MM>/ according to its capture date.
A name that is already taken gets a _1, _2, ... suffix; existing files are
never overwritten. Files that cannot be read are reported and the rest of
the batch still goes through.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().Bool("json", false, "Print records as JSON")
}

func runUpload(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	util.InfoLog("Library: %s", a.LibraryRoot())

	start := time.Now()
	result, err := a.UploadPhotos(context.Background(), args)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	reportIngest("Uploaded", result, time.Since(start))

	if asJSON {
		if err := printJSON(stdout(), result.Records); err != nil {
			return err
		}
	} else {
		printPhotos(stdout(), result.Records)
	}

	if len(result.Records) == 0 && len(result.Failures) > 0 {
		return fmt.Errorf("no files uploaded")
	}
	return nil
}
