package cli

import (
	"github.com/kolah/specwright/internal/config"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "specwright",
		Short: "Specwright - guided OpenAPI specification writer",
		Long: "Specwright turns a one-line API description into an OpenAPI 3.0 document and\n" +
			"markdown documentation by walking a set of language-model agents through\n" +
			"requirements, architecture, endpoint and schema design.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: runGenerate,
	}

	config.BindFlags(root)

	root.AddCommand(
		ValidateCommand(),
		ToolsCommand(),
		ExtractCommand(),
	)

	return root
}
