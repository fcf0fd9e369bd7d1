package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/michael-schaller/purgatory/dpkggraph"
	"github.com/michael-schaller/purgatory/dpkgsource"
)

type rootFlags struct {
	verbose          bool
	dpkgStatusDB     string
	ignoreRecommends bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "purgatory",
		Short: "Find and purge obsolete Debian packages",
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output / debug logging")
	root.PersistentFlags().StringVarP(&flags.dpkgStatusDB, "dpkg-status-database", "d", "/var/lib/dpkg/status", "the dpkg status database file to use")
	root.PersistentFlags().BoolVarP(&flags.ignoreRecommends, "ignore-recommends", "i", false, "ignore recommends relationship between packages; typically allows to purge more packages but might result in unusual or undesirable configurations; use with great care")

	root.AddCommand(newLeafsCommand(flags))
	root.AddCommand(newPurgeCommand(flags))
	return root
}

func newLogger(verbose bool) hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "purgatory",
		Level:  level,
		Output: os.Stderr,
	})
}

// buildGraph opens the configured status database and ingests it, wrapping
// any failure as a domainErr so run() maps it to exit code 1.
func buildGraph(flags *rootFlags, logger hclog.Logger) (*dpkggraph.DpkgGraph, error) {
	cache, err := dpkgsource.NewStatusFileCache(flags.dpkgStatusDB)
	if err != nil {
		return nil, domainErr{err}
	}
	dg, err := dpkggraph.New(cache, flags.ignoreRecommends, logger)
	if err != nil {
		return nil, domainErr{err}
	}
	return dg, nil
}
