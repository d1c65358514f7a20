package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/resolver"
)

func newGetCmd(a *app) *cobra.Command {
	var branch, filenames string
	cmd := &cobra.Command{
		Use:     "get <crate> [semver]",
		Short:   "Print the BibLaTeX entries of a crate",
		Example: "  crate2bib get serde\n  crate2bib get cellular_raza 0.1",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := resolver.Query{Crate: args[0], Branch: branch, Filenames: splitCSV(filenames)}
			if len(args) == 2 {
				q.Version = args[1]
			}
			mod := a.module()
			ctx := cmd.Context()
			if err := mod.Init(ctx); err != nil {
				return err
			}
			defer mod.Close()
			results, err := mod.GetBibLaTeX(ctx, q)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "", "Repository branch searched for citation files (default branch when empty)")
	cmd.Flags().StringVar(&filenames, "filenames", "", "Comma separated citation files to look for, e.g. CITATION.cff,citation.bib")
	return cmd
}

// printResults writes every result preceded by a BibTeX comment naming its
// origin, so the output stays a valid .bib file.
func printResults(w io.Writer, results []biblatex.Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%% %s\n%s\n", originLine(r), r.String())
	}
}

func originLine(r biblatex.Result) string {
	var line string
	switch r.Origin {
	case biblatex.OriginCratesIO:
		line = "Obtained from crates.io information"
	default:
		line = "Obtained from " + string(r.Origin) + " file in repository"
	}
	if r.Source != "" {
		line += " (" + r.Source + ")"
	}
	return line
}
