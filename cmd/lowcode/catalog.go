package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the component types new nodes can be created from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := catalog.Default().Definitions()
			if jsonMode {
				return outputJSON(cmd.OutOrStdout(), defs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tCATEGORY\tDEFAULT PROPS")
			for _, d := range defs {
				keys := make([]string, 0, len(d.DefaultProps))
				for k := range d.DefaultProps {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Type, d.Name, d.Category, strings.Join(keys, ", "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "output JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// The version needs no config or database.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lowcode v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}
}
