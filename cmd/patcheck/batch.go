package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"patcheck/internal/extract"
	"patcheck/internal/factset"
	"patcheck/internal/logging"
	"patcheck/internal/output"
	"patcheck/internal/store"
	"patcheck/internal/verdict"
)

var (
	batchSources bool
	batchHistory bool
	batchOut     string
)

var batchCmd = &cobra.Command{
	Use:   "batch <pattern> <dir>",
	Short: "Check every fact set under a directory against one pattern",
	Long: `Batch walks a directory, checks each snippet against the given pattern,
and prints a summary. A snippet that cannot be checked is reported and skipped;
the rest of the batch continues.

By default batch reads *.json fact set files. With --sources it instead
extracts facts from supported source files via tree-sitter.

Examples:
  patcheck batch adapter ./corpus
  patcheck batch decorator ./src --sources
  patcheck batch visitor ./corpus --history --out report.json.zst`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchSources, "sources", false,
		"Extract facts from source files instead of reading fact set JSON")
	batchCmd.Flags().BoolVar(&batchHistory, "history", false,
		"Record this run in the history database")
	batchCmd.Flags().StringVar(&batchOut, "out", "",
		"Write the full report to a file (.zst extension compresses it)")
	rootCmd.AddCommand(batchCmd)
}

// BatchResult is one snippet's outcome within a batch report.
type BatchResult struct {
	Source  string           `json:"source"`
	Verdict *verdict.Verdict `json:"verdict,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// BatchSummary totals a batch run.
type BatchSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// BatchReport is the full machine-readable output of one batch run.
type BatchReport struct {
	RunID     string        `json:"runId"`
	Pattern   string        `json:"pattern"`
	StartedAt string        `json:"startedAt"`
	Results   []BatchResult `json:"results"`
	Summary   BatchSummary  `json:"summary"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	patternName, dir := args[0], args[1]

	cfg, logger, reg, err := setup()
	if err != nil {
		return err
	}
	if _, err := reg.Get(patternName); err != nil {
		return err
	}

	paths, err := batchInputs(dir)
	if err != nil {
		return err
	}

	report := &BatchReport{
		RunID:     uuid.NewString(),
		Pattern:   patternName,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	var extractor *extract.Extractor
	if batchSources {
		if !extract.IsAvailable() {
			return fmt.Errorf("--sources requires a build with tree-sitter support")
		}
		extractor = extract.NewExtractor()
	}

	opts := checkOptions(cfg)
	for _, path := range paths {
		result := BatchResult{Source: path}

		var fs *factset.FactSet
		if batchSources {
			fs, err = extractor.ExtractFile(cmd.Context(), path)
		} else {
			fs, err = factset.Load(path)
		}
		if err == nil {
			var v *verdict.Verdict
			v, err = verdict.Check(reg, patternName, fs, opts)
			result.Verdict = v
		}
		if err != nil {
			// One broken snippet never stops the batch.
			result.Error = err.Error()
			logger.Warn("Snippet skipped", map[string]interface{}{
				"source": path,
				"error":  err.Error(),
			})
		}

		report.Results = append(report.Results, result)
		report.Summary.Total++
		switch {
		case result.Error != "":
			report.Summary.Errored++
		case result.Verdict.Pass:
			report.Summary.Passed++
		default:
			report.Summary.Failed++
		}
	}

	if batchHistory || cfg.History.Enabled {
		if err := recordHistory(cfg.History.Path, logger, report); err != nil {
			return err
		}
	}
	if batchOut != "" {
		if err := writeReport(batchOut, report); err != nil {
			return err
		}
	}

	printBatchSummary(cmd, report)

	if report.Summary.Failed > 0 || report.Summary.Errored > 0 {
		return errFailedCheck
	}
	return nil
}

// batchInputs collects the batch's input files under dir, sorted for a
// stable processing order.
func batchInputs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if batchSources {
			if _, ok := extract.LanguageFromExtension(ext); ok {
				paths = append(paths, path)
			}
		} else if ext == ".json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no batch inputs under %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func recordHistory(path string, logger *logging.Logger, report *BatchReport) error {
	db, err := store.Open(path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	started, _ := time.Parse(time.RFC3339, report.StartedAt)
	run := &store.Run{
		ID:        report.RunID,
		Pattern:   report.Pattern,
		StartedAt: started,
	}
	if err := db.BeginRun(run); err != nil {
		return err
	}
	for _, r := range report.Results {
		if err := db.RecordVerdict(run.ID, r.Source, r.Verdict, r.Error); err != nil {
			return err
		}
	}
	run.Total = report.Summary.Total
	run.Passed = report.Summary.Passed
	run.Failed = report.Summary.Failed
	run.Errored = report.Summary.Errored
	if err := db.FinishRun(run); err != nil {
		return err
	}

	logger.Info("Run recorded", map[string]interface{}{
		"runId": report.RunID,
		"path":  path,
	})
	return nil
}

// writeReport writes the report as deterministic JSON, zstd-compressed
// when the target has a .zst extension.
func writeReport(path string, report *BatchReport) error {
	data, err := output.DeterministicEncodeIndented(report, "  ")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	}

	_, err = f.Write(data)
	return err
}

func printBatchSummary(cmd *cobra.Command, report *BatchReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: pattern %s\n", report.RunID, report.Pattern)
	for _, r := range report.Results {
		switch {
		case r.Error != "":
			fmt.Fprintf(out, "  ERROR %s: %s\n", r.Source, r.Error)
		case r.Verdict.Pass:
			fmt.Fprintf(out, "  PASS  %s\n", r.Source)
		default:
			fmt.Fprintf(out, "  FAIL  %s (%d rule(s) violated)\n", r.Source, len(r.Verdict.Violated))
		}
	}
	fmt.Fprintf(out, "%d checked: %d passed, %d failed, %d errored\n",
		report.Summary.Total, report.Summary.Passed, report.Summary.Failed, report.Summary.Errored)
}
