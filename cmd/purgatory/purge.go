package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newPurgeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <package>...",
		Short: "Purge the specified packages and packages that will be obsoleted by this operation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := newLogger(flags.verbose)

			dg, err := buildGraph(flags, logger)
			if err != nil {
				return err
			}

			packages := append([]string(nil), args...)
			sort.Strings(packages)

			logger.Debug("marking packages and packages obsoleted by this operation for removal")
			if err := dg.MarkPackagesPurged(packages); err != nil {
				return domainErr{err}
			}

			var deleted []string
			for _, pn := range dg.DeletedPackageNodes() {
				deleted = append(deleted, pn.String())
			}
			sort.Strings(deleted)
			logger.Debug("packages marked for removal", "count", len(deleted))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Run this apt command to purge the requested packages and all "+
				"packages that would be obsoleted by this operation:")
			line := "apt purge " + strings.Join(deleted, " ")
			if os.Geteuid() != 0 {
				line = "sudo " + line
			}
			fmt.Fprintln(out, line)
			return nil
		},
	}
}
