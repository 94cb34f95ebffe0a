package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/Mr-Dark-debug/lowcode/pkg/jsonutil"
	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage saved projects",
	}
	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsShowCmd(a),
		newProjectsDeleteCmd(a),
		newProjectsExportCmd(a),
		newProjectsImportCmd(a),
		newProjectsFromTemplateCmd(a),
	)
	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var (
		query    string
		limit    int
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			var projects []*database.Project
			if query != "" {
				projects, err = store.SearchProjects(ctx, query, limit)
			} else {
				projects, err = store.ListProjects(ctx)
			}
			if err != nil {
				return err
			}

			if jsonMode {
				return outputJSON(cmd.OutOrStdout(), projects)
			}
			printProjectsTable(cmd.OutOrStdout(), projects)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "only projects whose name or description contains this")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum search results")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "output JSON")
	return cmd
}

func printProjectsTable(out io.Writer, projects []*database.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPONENTS\tUPDATED\tDESCRIPTION")
	for _, p := range projects {
		count := "?"
		if forest, err := editor.UnmarshalForest(p.Components); err == nil {
			count = fmt.Sprintf("%d", countNodes(forest))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID,
			jsonutil.TruncateString(p.Name, 32),
			count,
			timeutil.FormatTimestamp(p.UpdatedAt),
			jsonutil.TruncateString(p.Description, 40))
	}
	w.Flush()
}

func countNodes(forest []*editor.Node) int {
	n := 0
	for _, node := range forest {
		n += node.Count()
	}
	return n
}

func newProjectsShowCmd(a *app) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project with its component tree",
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

			p, err := store.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonMode {
				return outputJSON(cmd.OutOrStdout(), p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project:     %d\n", p.ID)
			fmt.Fprintf(out, "Name:        %s\n", p.Name)
			if p.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", p.Description)
			}
			fmt.Fprintf(out, "Created:     %s\n", timeutil.FormatTimestamp(p.CreatedAt))
			fmt.Fprintf(out, "Updated:     %s\n", timeutil.FormatTimestamp(p.UpdatedAt))
			fmt.Fprintln(out)

			forest, err := editor.UnmarshalForest(p.Components)
			if err != nil {
				return err
			}
			printTree(out, forest, 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "output JSON")
	return cmd
}

// printTree writes one indented line per node.
func printTree(out io.Writer, forest []*editor.Node, depth int) {
	for _, n := range forest {
		fmt.Fprintf(out, "%*s- %s %q (%s)\n", depth*2, "", n.Type, n.Name, n.ID)
		printTree(out, n.Children, depth+1)
	}
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
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

			if err := store.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			a.log.WithField("project", id).Info("project deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
			return nil
		},
	}
}

func newProjectsExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a project's component forest as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			s := editor.NewSession(editor.WithLogger(a.log))
			if err := s.LoadFrom(cmd.Context(), database.NewProjectAdapter(store, "", ""), args[0]); err != nil {
				return err
			}
			data, err := editor.MarshalForest(s.Forest())
			if err != nil {
				return err
			}
			pretty := jsonutil.PrettyJSON(data) + "\n"

			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), pretty)
				return err
			}
			if err := os.WriteFile(output, []byte(pretty), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.log.WithFields(logrus.Fields{"project": args[0], "file": output}).Info("project exported")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newProjectsImportCmd(a *app) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a project from a JSON component forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readForestFile(a, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			return saveProject(cmd, a, store, s, name, description)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (default: the file name)")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	return cmd
}

func newProjectsFromTemplateCmd(a *app) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "from-template <template-id>",
		Short: "Start a new project from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			s := editor.NewSession(editor.WithLogger(a.log))
			if err := s.LoadFrom(cmd.Context(), database.NewTemplateAdapter(store, "", ""), args[0]); err != nil {
				return err
			}
			if name == "" {
				name = "Untitled"
			}
			return saveProject(cmd, a, store, s, name, description)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	return cmd
}

func saveProject(cmd *cobra.Command, a *app, store database.Store, s *editor.Session, name, description string) error {
	adapter := database.NewProjectAdapter(store, name, description)
	id, err := s.SaveTo(cmd.Context(), adapter)
	if err != nil {
		return err
	}
	a.log.WithField("project", id).Info("project created")
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%d components)\n", id, s.Len())
	return nil
}

// readForestFile loads a forest from a JSON file into a fresh session,
// which validates ids and types.
func readForestFile(a *app, path string) (*editor.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	forest, err := editor.UnmarshalForest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := editor.NewSession(editor.WithLogger(a.log))
	if err := s.Load(forest); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
