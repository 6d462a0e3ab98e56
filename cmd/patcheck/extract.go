package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patcheck/internal/errors"
	"patcheck/internal/extract"
	"patcheck/internal/output"
)

var extractCmd = &cobra.Command{
	Use:   "extract <source-file>",
	Short: "Extract a structural fact set from source code",
	Long: `Extract parses a source file with tree-sitter and emits the structural
facts patcheck verifies against: declared types, member shapes, supertype
edges, held references, and resolved call edges.

Supported languages: Go, Java, Python, JavaScript, TypeScript.

Examples:
  patcheck extract Adapter.java > facts.json
  patcheck extract Adapter.java | patcheck verify adapter /dev/stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if !extract.IsAvailable() {
		return errors.Newf(errors.ExtractionFailed, "this build lacks tree-sitter support (CGO disabled)")
	}

	_, logger, _, err := setup()
	if err != nil {
		return err
	}

	e := extract.NewExtractor()
	fs, err := e.ExtractFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := fs.Validate(); err != nil {
		return err
	}

	logger.Debug("Extraction complete", map[string]interface{}{
		"source": fs.Source,
		"types":  len(fs.Types),
		"calls":  len(fs.Calls),
	})

	data, err := output.DeterministicEncodeIndented(fs, "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
