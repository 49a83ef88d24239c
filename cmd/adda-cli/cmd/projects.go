package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"adda/internal/application"
	"adda/internal/application/commands"
	"adda/internal/domain"
)

var (
	projectsSource  string
	projectsSelOnly bool
	projectsDeleted bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List, search and select synchronized projects",
	Long: `Work with the project table.

Examples:
  adda-cli projects list
  adda-cli projects list --source jira --deleted
  adda-cli projects search contoso
  adda-cli projects select 6ce954b1-ce1f-45d1-b94d-e6bf2464ba2c`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects of a source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, err := application.ParseProjectSource(projectsSource)
		if err != nil {
			return err
		}

		filter := domain.ProjectFilter{SelectedOnly: projectsSelOnly, IncludeDeleted: projectsDeleted}
		rows, err := commands.NewListProjectsCommand(GetApp().Table, source, filter).Execute(ctx)
		if err != nil {
			return err
		}

		if at, ok := GetApp().LastSync(ctx, source); ok {
			fmt.Fprintf(os.Stderr, "last synced %s\n", at.Local().Format("2006-01-02 15:04:05"))
		}
		if len(rows) == 0 {
			fmt.Println("No projects")
			return nil
		}
		printProjects(rows)
		return nil
	},
}

var projectsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search projects by name or id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := application.ParseProjectSource(projectsSource)
		if err != nil {
			return err
		}

		search := commands.NewSearchProjectsCommand(GetApp().Table, source, args[0])
		search.IncludeDeleted = projectsDeleted
		matches, err := search.Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(matches) == 0 {
			fmt.Println("No results found")
			return nil
		}
		rows := make([]domain.ProjectEntity, len(matches))
		for i, m := range matches {
			rows[i] = m.ProjectEntity
		}
		printProjects(rows)
		return nil
	},
}

func newSelectionCmd(use, short string, selected bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := application.ParseProjectSource(projectsSource)
			if err != nil {
				return err
			}

			var errs []error
			for _, id := range args {
				sel := commands.NewSetProjectSelectionCommand(GetApp().Table, source, id, selected)
				result, err := sel.Execute(cmd.Context())
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Println(result.Message)
			}
			return errors.Join(errs...)
		},
	}
}

func printProjects(rows []domain.ProjectEntity) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range rows {
		mark := " "
		if p.Selected {
			mark = "*"
		}
		state := ""
		if p.Deleted {
			state = "deleted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, p.RowKey, p.Name, state)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsSearchCmd)
	projectsCmd.AddCommand(newSelectionCmd("select", "Select projects for export", true))
	projectsCmd.AddCommand(newSelectionCmd("unselect", "Exclude projects from export", false))

	projectsCmd.PersistentFlags().StringVarP(&projectsSource, "source", "s", "devops", "project source: devops or jira")
	projectsListCmd.Flags().BoolVar(&projectsSelOnly, "selected", false, "only selected projects")
	projectsCmd.PersistentFlags().BoolVar(&projectsDeleted, "deleted", false, "include soft-deleted projects")
}
