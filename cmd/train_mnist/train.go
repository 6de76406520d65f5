package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/neurlang/digitnet/backend"
	"github.com/neurlang/digitnet/config"
	"github.com/neurlang/digitnet/datasets"
	"github.com/neurlang/digitnet/datasets/mnist"
	"github.com/neurlang/digitnet/learning"
	"github.com/neurlang/digitnet/trainer"
)

func newTrainCmd() *cobra.Command {
	var configPath, cpuProfile string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the convnet and print per epoch loss statistics",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	flags := config.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c := config.Default()
		if configPath != "" {
			var err error
			if c, err = config.Load(configPath); err != nil {
				return err
			}
		}
		if err := c.ApplyEnv(nil); err != nil {
			return err
		}
		if err := flags.Apply(&c); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if cpuProfile != "" {
			stop, err := startProfile(cpuProfile)
			if err != nil {
				return err
			}
			defer stop()
		}
		return train(cmd.OutOrStdout(), c)
	}
	return cmd
}

func train(w io.Writer, c config.Config) error {
	ctx, err := backend.Open(c.Device, c.Seed)
	if err != nil {
		return err
	}
	defer ctx.Close()
	slog.Info("device", "device", backend.Describe(ctx.Device()))

	data, err := loadTraining(c)
	if err != nil {
		return err
	}
	model, err := c.Model().Init(ctx)
	if err != nil {
		return err
	}
	opt, err := learning.NewAdamW(c.HyperParameters())
	if err != nil {
		return err
	}

	report, err := trainer.Run(ctx, model, opt, data, c.Trainer())
	if report != nil {
		renderReport(w, report)
	}
	if err != nil {
		return err
	}

	if c.Dataset.EvalPath == "" {
		return nil
	}
	eval, err := mnist.LoadCSV(c.Dataset.EvalPath, c.MNIST())
	if err != nil {
		return err
	}
	e, err := trainer.Evaluate(ctx, model, eval, c.BatchSize)
	if err != nil {
		return err
	}
	slog.Info("evaluation", "correct", e.Correct, "total", e.Total, "accuracy", e.Accuracy())
	fmt.Fprintf(w, "accuracy %.4f (%d/%d)\n", e.Accuracy(), e.Correct, e.Total)
	return nil
}

func loadTraining(c config.Config) (*datasets.Dataset, error) {
	if c.Dataset.Path != "" {
		return mnist.LoadCSV(c.Dataset.Path, c.MNIST())
	}
	return mnist.LoadIDX(c.Dataset.IDXImages, c.Dataset.IDXLabels, c.MNIST())
}

func renderReport(w io.Writer, r *trainer.Report) {
	fmt.Fprintf(w, "run %s on %s: %d steps in %s\n", r.RunID, r.Device, r.Steps, r.Duration)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Epoch", "Batches", "Mean loss", "Std dev", "Min", "Max", "Time"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, e := range r.Epochs {
		table.Append([]string{
			fmt.Sprint(e.Epoch + 1),
			fmt.Sprint(e.Batches),
			fmt.Sprintf("%.6f", e.Mean),
			fmt.Sprintf("%.6f", e.StdDev),
			fmt.Sprintf("%.6f", e.Min),
			fmt.Sprintf("%.6f", e.Max),
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}
