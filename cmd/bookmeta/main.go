// Command bookmeta extracts book metadata from supported store and catalog
// pages and manages the stored record.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/bootstrap"
	"github.com/user/bookmeta/pkg/config"
	"github.com/user/bookmeta/pkg/logger"
)

var (
	app *bootstrap.App
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bookmeta",
	Short: "Normalize book metadata from Amazon, Goodreads, Google Books and StoryGraph",
	Long: `bookmeta reads a book page from one of the supported sites, folds it into
one canonical record and keeps the most recent record in the configured store.
The record can then be shown, watched for changes or injected into a form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		cfg, err := config.LoadFile(envFile)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.LogLevel = level
		}
		log, err = logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		app, err = bootstrap.New(cmd.Context(), cfg, log)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "optional env file with configuration")
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// release closes whatever PersistentPreRunE opened. cobra skips the
// post-run hooks when RunE fails, so this runs after Execute instead.
func release() {
	if app != nil {
		app.Close()
		app = nil
	}
	if log != nil {
		_ = log.Sync()
		log = nil
	}
}

func run(args []string) error {
	defer release()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
