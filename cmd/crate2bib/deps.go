package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"crate2bib/internal/manifest"
	"crate2bib/internal/resolver"
)

func newDepsCmd(a *app) *cobra.Command {
	var kinds string
	cmd := &cobra.Command{
		Use:     "deps <Cargo.toml|dir>",
		Short:   "Print the BibLaTeX entries of every dependency in a manifest",
		Example: "  crate2bib deps .\n  crate2bib deps Cargo.toml --kinds normal,build",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			deps, err := manifest.LoadCargoToml(path)
			if err != nil {
				return err
			}
			wanted := splitCSV(kinds)

			mod := a.module()
			ctx := cmd.Context()
			if err := mod.Init(ctx); err != nil {
				return err
			}
			defer mod.Close()

			out := cmd.OutOrStdout()
			var done, failed int
			for _, d := range deps {
				if len(wanted) > 0 && !slices.Contains(wanted, string(d.Kind)) {
					continue
				}
				results, err := mod.GetBibLaTeX(ctx, resolver.Query{Crate: d.Crate, Version: d.Version})
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					failed++
					a.log.Error().Err(err).Str("crate", d.Crate).Str("version", d.Version).Msg("dependency lookup failed")
					continue
				}
				if done > 0 {
					fmt.Fprintln(out)
				}
				done++
				printResults(out, results)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d dependencies could not be resolved", failed, done+failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kinds, "kinds", string(manifest.KindNormal), "Comma separated dependency kinds to include: normal,dev,build (empty for all)")
	return cmd
}
