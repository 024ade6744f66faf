package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/logger"
)

var indexCmd = &cobra.Command{
	Use:   "index [documents...]",
	Short: "Build the vector index",
	Long: `Parse, chunk and embed documents, then save the vector index.

Documents default to corpus.paths from the config file. The index is
written to corpus.index_path unless --output is given; paths ending in
.db or .sqlite are stored as SQLite, anything else as a compressed
chromem export. Nothing is written if any stage fails.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringP("output", "o", "", "index file (overrides corpus.index_path)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	if output == "" {
		output = settings.Corpus.IndexPath
	}

	req, err := corpusRequest(args)
	if err != nil {
		return err
	}

	rec := logger.NewRecorder()
	ingest, closeFn, err := newIngestService(settings, progressHooks{
		Parse:       progressFunc(newReporter(cmd.ErrOrStderr(), "parsing"), "parsing"),
		Embed:       progressFunc(newReporter(cmd.ErrOrStderr(), "embedding"), "embedding"),
		Diagnostics: rec,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	info, err := ingest.Ingest(cmd.Context(), req, output)
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d chunks from %d documents\n", info.Count, len(req.Paths))
	cmd.Printf("  build:      %s\n", info.BuildID)
	cmd.Printf("  model:      %s (%d dimensions)\n", info.Model, info.Dimensionality)
	cmd.Printf("  written to: %s\n", output)
	if n := len(rec.OfKind(logger.KindParseFailed)); n > 0 {
		cmd.Printf("  skipped:    %d documents that failed to parse\n", n)
	}
	if n := len(rec.OfKind(logger.KindSanitizationTriggered)); n > 0 {
		cmd.Printf("  sanitized:  %d chunks\n", n)
	}
	return nil
}
