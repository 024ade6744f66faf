package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [documents...]",
	Short: "Rebuild the index whenever documents change",
	Long: `Build the index, then watch the documents and rebuild it after every
change. Bursts of changes are collected into one rebuild.

Run "docrag serve --reload" alongside to serve the latest index.
Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "index file (overrides corpus.index_path)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	if output == "" {
		output = settings.Corpus.IndexPath
	}
	patterns := settings.Corpus.Paths
	if len(args) > 0 {
		patterns = args
	}

	ingest, closeFn, err := newIngestService(settings, progressHooks{})
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	build := func(ctx context.Context) error {
		req, err := corpusRequest(patterns)
		if err != nil {
			return err
		}
		info, err := ingest.Ingest(ctx, req, output)
		if err != nil {
			return err
		}
		cmd.Printf("Indexed %d chunks from %d documents (build %s)\n", info.Count, len(req.Paths), info.BuildID)
		return nil
	}

	if err := build(cmd.Context()); err != nil {
		return err
	}

	cmd.Printf("Watching %d patterns, writing %s\n", len(patterns), output)
	return watchChanges(cmd.Context(), patterns, func(ctx context.Context, changes []domain.CorpusChange) error {
		cmd.Printf("%d changes, rebuilding\n", len(changes))
		return build(ctx)
	})
}
