package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the record every time another process stores a new one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := app.Watcher().Watch(ctx, func(stored entity.StoredRecord) {
			if err := printJSON(stored); err != nil {
				log.Warn("failed to print record", zap.Error(err))
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
