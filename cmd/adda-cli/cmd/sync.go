package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"adda/internal/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [devops|jira]",
	Short: "Synchronize the project table with a source",
	Long: `Fetch the project list of Azure DevOps or Jira and reconcile it into
the project table: new projects are added, renamed ones updated, and
projects that disappeared are soft-deleted. Selections are kept.

Examples:
  adda-cli sync devops
  adda-cli sync jira`,
}

func newSyncSourceCmd(source domain.ProjectSource, short string) *cobra.Command {
	return &cobra.Command{
		Use:   source.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := GetApp().SyncCommand(ctx, source)
			if err != nil {
				return err
			}
			result, err := sc.Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Println(result.Message)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(newSyncSourceCmd(domain.SourceDevOps, "Sync Azure DevOps projects"))
	syncCmd.AddCommand(newSyncSourceCmd(domain.SourceJira, "Sync Jira projects"))
}
