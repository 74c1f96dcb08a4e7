package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/franz/photo-librarian/internal/metrics"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "plib",
		Short: "Photo Librarian - index and organize your photos and videos",
		Long: `plib (Photo Librarian) keeps a local photo and video library.
It indexes folders in place or copies files into a date-partitioned managed
library, resolves a capture date for every file, and keeps favorites and
albums in a local SQLite database.`,
		Version:            Version,
		SilenceUsage:       true,
		PersistentPreRun:   applyLogLevel,
		PersistentPostRunE: writeMetricsTextfile,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/plib.yaml)")
	rootCmd.PersistentFlags().String("db", "", "metadata database file (default <user config dir>/photo-librarian/photos.db)")
	rootCmd.PersistentFlags().String("library", "", "managed library root (default ~/Pictures/PhotoLibrarian)")
	rootCmd.PersistentFlags().IntP("concurrency", "j", runtime.GOMAXPROCS(0), "number of files processed in parallel")
	rootCmd.PersistentFlags().String("artifacts", "artifacts", "directory for JSONL event logs")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "write Prometheus metrics to this file after each command")
	rootCmd.PersistentFlags().Int("retry-attempts", 1, "attempts for library file operations (1 = no retry)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	for _, name := range []string{"db", "library", "concurrency", "artifacts", "metrics-textfile", "retry-attempts", "verbose", "quiet"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("plib")
	}

	// PLIB_DB, PLIB_LIBRARY, PLIB_METRICS_TEXTFILE, ...
	viper.SetEnvPrefix("PLIB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func applyLogLevel(cmd *cobra.Command, args []string) {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
}

func writeMetricsTextfile(cmd *cobra.Command, args []string) error {
	path := viper.GetString("metrics-textfile")
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	util.DebugLog("Metrics written to %s", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
