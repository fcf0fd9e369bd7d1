package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/michael-schaller/purgatory/dpkggraph"
)

func newLeafsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leafs",
		Short: "List the leaf packages; leaf packages are easily purgable because no other packages depend on them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := newLogger(flags.verbose)

			dg, err := buildGraph(flags, logger)
			if err != nil {
				return err
			}

			logger.Debug("determining leafs of the dpkg graph")
			leafs, err := dg.Leafs()
			if err != nil {
				return domainErr{err}
			}
			logger.Debug("leafs", "count", len(leafs))

			var lines []string
			for _, leaf := range leafs {
				names := dpkggraph.LeafPackageNames(leaf)
				line := ""
				for i, n := range names {
					if i > 0 {
						line += " "
					}
					line += n
				}
				lines = append(lines, line)
			}
			sort.Strings(lines)
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
