package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("train_mnist failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "train_mnist",
		Short:         "Train a handwritten digit classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd, verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	root.AddCommand(newTrainCmd(), newDevicesCmd())
	return root
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if debug, err := strconv.ParseBool(os.Getenv("DIGITNET_DEBUG")); verbose || (err == nil && debug) {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
