package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"patcheck/internal/errors"
	"patcheck/internal/extract"
	"patcheck/internal/factset"
	"patcheck/internal/verdict"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <pattern> <snippet>",
	Short: "Verify a snippet against a pattern template",
	Long: `Verify checks whether a snippet conforms to one pattern template. The
snippet is either a pre-extracted fact set (*.json) or, in builds with
tree-sitter support, a source file in a supported language. The verdict goes
to stdout; the exit code is 0 for a pass, 1 for a fail, and 2 for errors.

Examples:
  patcheck verify adapter facts.json
  patcheck verify adapter Adapter.java --format human
  patcheck verify visitor facts.json --max-bindings 50000`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	patternName, snippetPath := args[0], args[1]

	cfg, logger, reg, err := setup()
	if err != nil {
		return err
	}

	fs, err := loadSnippet(cmd, snippetPath)
	if err != nil {
		return err
	}

	v, err := verdict.Check(reg, patternName, fs, checkOptions(cfg))
	if err != nil {
		return err
	}

	out, err := FormatVerdict(v, OutputFormat(cfg.Output.Format), cfg.Output.Indent)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	logger.Debug("Check complete", map[string]interface{}{
		"pattern":       v.Pattern,
		"pass":          v.Pass,
		"bindingsTried": v.BindingsTried,
	})

	if !v.Pass {
		return errFailedCheck
	}
	return nil
}

// loadSnippet reads a snippet as a fact set: JSON fact sets directly,
// supported source files via tree-sitter extraction.
func loadSnippet(cmd *cobra.Command, path string) (*factset.FactSet, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return factset.Load(path)
	}
	if _, ok := extract.LanguageFromExtension(ext); !ok {
		return nil, errors.Newf(errors.ExtractionFailed, "unsupported snippet type %q", ext)
	}
	if !extract.IsAvailable() {
		return nil, errors.Newf(errors.ExtractionFailed, "this build lacks tree-sitter support (CGO disabled); pass a fact set JSON instead")
	}
	return extract.NewExtractor().ExtractFile(cmd.Context(), path)
}
