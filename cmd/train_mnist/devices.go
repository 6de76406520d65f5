package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/neurlang/digitnet/backend"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the compute devices usable for training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := backend.Devices()
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Selector", "Name", "Threads", "Memory", "Features"})
			table.SetBorder(false)
			for _, d := range devices {
				mem := "-"
				if d.Memory > 0 {
					mem = fmt.Sprintf("%d MiB", d.Memory>>20)
				}
				table.Append([]string{d.String(), d.Name, fmt.Sprint(d.Threads), mem, strings.Join(d.Features, " ")})
			}
			table.Render()
			return nil
		},
	}
}
