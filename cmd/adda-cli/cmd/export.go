package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportIterationNode string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export done work items of the selected projects",
	Long: `Export the done tasks under every iteration path ending with the
iteration node, for every selected Azure DevOps project, then their parent
PBIs, features and epics. Each level is written as one JSON blob under
bronze/<kind>/.

Examples:
  adda-cli export
  adda-cli export --iteration-node 2024`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		export, err := GetApp().ExportCommand(ctx)
		if err != nil {
			return err
		}
		if exportIterationNode != "" {
			export.IterationNode = exportIterationNode
		}

		result, err := export.Execute(ctx)
		if err != nil {
			return err
		}

		for _, p := range result.Projects {
			if p.Skipped {
				fmt.Printf("skipped %s: no %q iteration\n", p.Name, export.IterationNode)
			}
		}
		for _, l := range result.Levels {
			fmt.Printf("%-9s %5d  %s\n", l.Kind, l.Count, l.Blob)
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportIterationNode, "iteration-node", "", "iteration node name (default from config)")
}
