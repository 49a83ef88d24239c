package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"adda/internal/application/commands"
	"adda/internal/domain"
)

var (
	treeGroup       string
	treeDepth       int
	pathsEndWith    string
	pathsLeavesOnly bool
)

var treeCmd = &cobra.Command{
	Use:   "tree <project>",
	Short: "Display the iteration or area tree of a project",
	Long: `Display the classification tree of an Azure DevOps project.

Examples:
  adda-cli tree Contoso
  adda-cli tree Contoso --group areas --depth 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		classification, err := classificationCommand(cmd)
		if err != nil {
			return err
		}
		tree, err := classification.Tree(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Print(tree)
		return nil
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths <project>",
	Short: "List the iteration paths of a project",
	Long: `List one backslash-joined path per node of the classification tree,
deepest nodes first, the way the export resolves iteration paths.

Examples:
  adda-cli paths Contoso
  adda-cli paths Contoso --ending-with 2023
  adda-cli paths Contoso --leaves`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		classification, err := classificationCommand(cmd)
		if err != nil {
			return err
		}

		var paths []string
		switch {
		case pathsEndWith != "":
			paths, err = classification.PathsEndingWith(ctx, args[0], pathsEndWith)
		case pathsLeavesOnly:
			paths, err = classification.LeafPaths(ctx, args[0])
		default:
			paths, err = classification.Paths(ctx, args[0])
		}
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func classificationCommand(cmd *cobra.Command) (*commands.ClassificationCommand, error) {
	group, err := domain.ParseStructureGroup(treeGroup)
	if err != nil {
		return nil, err
	}
	return GetApp().ClassificationCommand(cmd.Context(), group, treeDepth)
}

func init() {
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(pathsCmd)

	for _, c := range []*cobra.Command{treeCmd, pathsCmd} {
		c.Flags().StringVarP(&treeGroup, "group", "g", "iterations", "iterations or areas")
		c.Flags().IntVarP(&treeDepth, "depth", "d", 0, "levels below the root to fetch (default from config)")
	}
	pathsCmd.Flags().StringVar(&pathsEndWith, "ending-with", "", "only paths whose last node has this name")
	pathsCmd.Flags().BoolVar(&pathsLeavesOnly, "leaves", false, "only paths ending at a leaf")
}
