package cli

import (
	"fmt"
	"path/filepath"

	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/config"
	"github.com/kolah/specwright/internal/loader"
	"github.com/spf13/cobra"
)

func ValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Summarize and lint a generated OpenAPI document",
		Long: "Loads an OpenAPI document (by default openapi_specification.json in the\n" +
			"output directory), prints a summary and reports lint findings as warnings.",
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		path = filepath.Join(cfg.Output.Dir, artifact.FileName(artifact.Spec))
	}

	result, err := loader.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading spec: %w", err)
	}

	spec := loader.Summarize(result)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded OpenAPI %s: %s v%s\n", spec.Version, spec.Info.Title, spec.Info.Version)
	fmt.Fprintf(out, "  Servers: %d\n", len(spec.Servers))
	fmt.Fprintf(out, "  Paths: %d\n", len(spec.Paths))
	fmt.Fprintf(out, "  Operations: %d\n", spec.OperationCount())
	fmt.Fprintf(out, "  Schemas: %d\n", len(spec.Schemas))
	fmt.Fprintf(out, "  Security schemes: %d\n", len(spec.SecuritySchemes))

	findings, err := result.Lint()
	if err != nil {
		return fmt.Errorf("linting spec: %w", err)
	}
	for _, f := range findings {
		cmd.PrintErrf("Warning: %s\n", f)
	}
	if len(findings) == 0 {
		fmt.Fprintln(out, "No lint findings")
	}

	return nil
}
