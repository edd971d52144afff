package cli

import (
	"fmt"

	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/config"
	"github.com/kolah/specwright/internal/logging"
	"github.com/kolah/specwright/internal/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveTransport is the transport `tools serve` listens on.
var serveTransport = func() mcp.Transport {
	return &mcp.StdioTransport{}
}

func ToolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect or serve the artifact save tools",
	}

	cmd.AddCommand(newToolsListCmd(), newToolsServeCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the save tools offered to agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			box := tools.NewToolbox(nil, zap.NewNop(), nil)
			out := cmd.OutOrStdout()
			for _, t := range box.All() {
				fmt.Fprintf(out, "%s(%s)\n    %s\n", t.Name, t.Param, t.Description)
			}
			return nil
		},
	}
}

func newToolsServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the save tools over MCP on stdio",
		Long: "Exposes save_requirements, save_architecture, save_endpoints,\n" +
			"save_openapi_spec and save_documentation as MCP tools writing into the\n" +
			"configured output directory.",
		Args: cobra.NoArgs,
		RunE: runToolsServe,
	}
}

func runToolsServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs always go to stderr.
	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := artifact.NewStore(cfg.Output.Dir)
	if err != nil {
		return err
	}

	server := tools.NewMCPServer(tools.NewToolbox(store, logger, nil), version)
	logger.Info("serving tools over MCP", zap.String("output_dir", store.Dir()))

	if err := server.Run(cmd.Context(), serveTransport()); err != nil {
		return fmt.Errorf("serving tools: %w", err)
	}
	return nil
}
