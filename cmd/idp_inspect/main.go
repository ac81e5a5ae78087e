package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-idp-review/internal/config"
	"github.com/a3tai/mcp-idp-review/internal/review"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

var (
	outputFormat = pflag.String("format", "text", "Output format: text, json, yaml")
	verbose      = pflag.Bool("verbose", false, "Log loader and classifier activity to stderr")
	help         = pflag.Bool("help", false, "Show help message")
)

func main() {
	pflag.Parse()

	if *help {
		printHelp()
		return
	}

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: batch path required\n\n")
		printUsage()
		os.Exit(1)
	}

	path := pflag.Arg(0)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", path)
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		cfg := config.DefaultConfig()
		cfg.LogLevel = "debug"
		cfg.ServerName = "idp_inspect"
		l, err := cfg.NewLogger(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}

	result, err := inspect(context.Background(), path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting batch: %v\n", err)
		os.Exit(1)
	}

	if err := writeResult(os.Stdout, *outputFormat, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
	if len(result.Problems) > 0 {
		os.Exit(2)
	}
}

func printHelp() {
	fmt.Println("IDP Inspect - Check a document batch before review")
	fmt.Println()
	fmt.Println("Loads a batch manifest, a scanned PDF or a directory of PDFs the same way the")
	fmt.Println("review server does, runs the classifier and reports what still blocks completion.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --format       Output format: text (default), json, yaml")
	fmt.Println("  --verbose      Log loader and classifier activity to stderr")
	fmt.Println("  --help         Show this help message")
	fmt.Println()
	fmt.Println("EXIT STATUS:")
	fmt.Println("  0  the batch could be completed as loaded")
	fmt.Println("  1  the batch could not be loaded")
	fmt.Println("  2  the batch loaded but has open problems")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  idp_inspect batch.yaml")
	fmt.Println("  idp_inspect --format json scans/")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  idp_inspect [OPTIONS] <manifest|pdf|directory>")
}

// InspectResult is what idp_inspect reports about a batch
type InspectResult struct {
	Path        string          `json:"path" yaml:"path"`
	Name        string          `json:"name" yaml:"name"`
	Stats       workspace.Stats `json:"stats" yaml:"stats"`
	Suggestions int             `json:"suggestions" yaml:"suggestions"`
	Problems    []string        `json:"problems,omitempty" yaml:"problems,omitempty"`
	Outline     string          `json:"outline" yaml:"outline"`
}

// inspect loads the batch at path in a throwaway review session rooted at its parent
// directory
func inspect(ctx context.Context, path string, logger *zap.Logger) (*InspectResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	service, err := review.NewService(review.Options{
		Directory: filepath.Dir(absPath),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	loaded, err := service.LoadBatch(ctx, review.LoadBatchRequest{Path: filepath.Base(absPath)})
	if err != nil {
		return nil, err
	}
	defer func() { _ = service.CloseSession(loaded.SessionID) }()

	check, err := service.Check(loaded.SessionID)
	if err != nil {
		return nil, err
	}

	return &InspectResult{
		Path:        absPath,
		Name:        loaded.Name,
		Stats:       loaded.Stats,
		Suggestions: loaded.Suggestions,
		Problems:    check.Problems,
		Outline:     loaded.Outline,
	}, nil
}

func writeResult(w io.Writer, format string, result *InspectResult) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return err
		}
		return encoder.Close()
	case "text":
		return writeText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeText(w io.Writer, result *InspectResult) error {
	s := result.Stats
	fmt.Fprintf(w, "📁 %s\n", result.Path)
	fmt.Fprintf(w, "Batch: %s\n", result.Name)
	fmt.Fprintf(w, "Classes: %d, Documents: %d (%d unclassified, %d rejected), Pages: %d\n",
		s.Classes, s.Documents, s.Unclassified, s.Rejected, s.Pages)
	fmt.Fprintf(w, "Fields: %d (%d verified)\n", s.Fields, s.VerifiedFields)
	if result.Suggestions > 0 {
		fmt.Fprintf(w, "Suggested classes for %d document(s)\n", result.Suggestions)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, result.Outline)
	fmt.Fprintln(w)

	if len(result.Problems) == 0 {
		_, err := fmt.Fprintln(w, "✅ No open problems")
		return err
	}
	fmt.Fprintf(w, "⚠️  %d open problem(s):\n", len(result.Problems))
	for i, p := range result.Problems {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
	return nil
}
