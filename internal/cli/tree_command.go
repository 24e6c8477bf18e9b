package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ppaja/filemerge/internal/config"
	"github.com/Ppaja/filemerge/internal/matcher"
	"github.com/Ppaja/filemerge/internal/serialize"
	"github.com/Ppaja/filemerge/internal/tree"
)

// createTreeCommand returns the tree subcommand.
func createTreeCommand() *cobra.Command {
	var paths pathOptions
	var configPath string

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{"t"},
		Short:   treeShortDescription,
		Example: treeExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootDirectory, rootError := resolveRootDirectory(arguments)
			if rootError != nil {
				return rootError
			}

			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: rootDirectory,
				ExplicitFilePath: configPath,
			})
			if configurationError != nil {
				return fmt.Errorf(errorLoadConfigurationFormat, configurationError)
			}
			applyConfigurationDefaults(command, configuration, &paths, new(string), nil)

			ignorePatterns, patternsError := loadIgnorePatterns(rootDirectory, paths)
			if patternsError != nil {
				return patternsError
			}

			ignoreMatcher := matcher.New(ignorePatterns, matcher.Options{CaseInsensitive: paths.caseInsensitive})
			rootNode, scanWarnings, buildError := tree.Build(command.Context(), rootDirectory, ignoreMatcher, tree.BuildOptions{
				MaxDepth: paths.maxDepth,
			})
			if buildError != nil {
				return buildError
			}
			printWarnings(command.ErrOrStderr(), scanWarnings)

			fmt.Fprintf(command.OutOrStdout(), "%s\n", rootNode.Path)
			return serialize.WriteDiagram(rootNode, command.OutOrStdout())
		},
	}

	addPathFlags(treeCommand, &paths)
	treeCommand.Flags().StringVar(&configPath, configFlagName, "", configFlagDescription)
	return treeCommand
}
