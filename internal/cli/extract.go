package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kolah/specwright/internal/artifact"
	"github.com/kolah/specwright/internal/extract"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

var ErrNoJSON = errors.New("no JSON found")

func ExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Recover the JSON value embedded in model output",
		Long: "Reads text from a file (or stdin) and prints the first JSON value found in\n" +
			"a fenced block, the whole text, or a brace-delimited span.",
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().Bool("yaml", false, "Print the recovered value as YAML")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	v, ok := extract.Extract(string(data))
	if !ok {
		return ErrNoJSON
	}

	asYAML, _ := cmd.Flags().GetBool("yaml")

	var out []byte
	if asYAML {
		out, err = yaml.Marshal(v)
	} else {
		out, err = artifact.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
