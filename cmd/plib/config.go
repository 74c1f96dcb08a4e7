package main

import (
	"os"
	"path/filepath"

	"github.com/franz/photo-librarian/internal/app"
	"github.com/franz/photo-librarian/internal/report"
	"github.com/franz/photo-librarian/internal/util"
	"github.com/spf13/viper"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (PLIB_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "photos.db"
	}
	return filepath.Join(dir, "photo-librarian", "photos.db")
}

func defaultLibraryRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "PhotoLibrarian"
	}
	return filepath.Join(home, "Pictures", "PhotoLibrarian")
}

// newEventLogger opens the JSONL event log for this run. Event log failures
// never stop a command.
func newEventLogger() *report.EventLogger {
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(GetConfigString("artifacts", "artifacts"), logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	util.DebugLog("Event log: %s", logger.Path())
	return logger
}

// newApp builds the application from the resolved configuration. The caller
// closes the returned logger.
func newApp() (*app.App, *report.EventLogger, error) {
	logger := newEventLogger()

	a, err := app.New(&app.Config{
		DBPath:      GetConfigString("db", defaultDBPath()),
		LibraryRoot: GetConfigString("library", defaultLibraryRoot()),
		Concurrency: GetConfigInt("concurrency", 0),
		RetryConfig: util.RetryConfigForAttempts(GetConfigInt("retry-attempts", 1)),
		Logger:      logger,
	})
	if err != nil {
		logger.Close()
		return nil, nil, err
	}

	return a, logger, nil
}
