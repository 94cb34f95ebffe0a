package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "t"},
		Short:   "Browse and create page templates",
	}
	cmd.AddCommand(
		newTemplatesListCmd(a),
		newTemplatesShowCmd(a),
		newTemplatesCreateCmd(a),
	)
	return cmd
}

func newTemplatesListCmd(a *app) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			templates, err := store.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if jsonMode {
				return outputJSON(cmd.OutOrStdout(), templates)
			}
			printTemplatesTable(cmd.OutOrStdout(), templates)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "output JSON")
	return cmd
}

func printTemplatesTable(out io.Writer, templates []*database.Template) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPONENTS\tCREATED")
	for _, t := range templates {
		count := "?"
		if forest, err := editor.UnmarshalForest(t.Components); err == nil {
			count = fmt.Sprintf("%d", countNodes(forest))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			t.ID, jsonutil.TruncateString(t.Name, 32), count, timeutil.FormatTimestamp(t.CreatedAt))
	}
	w.Flush()
}

func newTemplatesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template's component forest as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := database.ParseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.GetTemplate(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s (template %d)\n", t.Name, t.ID)
			fmt.Fprintln(out, jsonutil.PrettyJSON(t.Components))
			return nil
		},
	}
}

func newTemplatesCreateCmd(a *app) *cobra.Command {
	var name, thumbnail string

	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create a template from a JSON component forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			s, err := readForestFile(a, args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := s.SaveTo(cmd.Context(), database.NewTemplateAdapter(store, name, thumbnail))
			if err != nil {
				return err
			}
			a.log.WithField("template", id).Info("template created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "template name (required)")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "thumbnail URL")
	return cmd
}
