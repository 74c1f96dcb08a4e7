package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Index photos and videos in a directory without copying them",
	Long: `Walk a directory recursively and resolve a capture date and dimensions
for every supported photo or video.

Files stay where they are. With --save the results are written to the
database so they show up in 'plib photos'; scanned originals are never
deleted by 'plib delete'.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("save", false, "Save scanned records to the database")
	scanCmd.Flags().Bool("json", false, "Print records as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, logger, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Close()

	start := time.Now()
	result, err := a.ScanDirectory(context.Background(), args[0], save)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	reportIngest("Indexed", result, time.Since(start))

	if asJSON {
		return printJSON(stdout(), result.Records)
	}
	printPhotos(stdout(), result.Records)
	return nil
}
