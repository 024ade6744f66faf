package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [documents...]",
	Short: "Split documents into chunks without indexing",
	Long: `Parse, split, attribute and sanitize documents, then print the chunks.

Nothing is embedded or written, so no embedding provider is needed. Use it
to tune chunk_size, chunk_overlap and the suspicious patterns.

Documents default to corpus.paths from the config file. Glob patterns,
including **, are expanded.`,
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().Bool("json", false, "print chunks as JSON")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	req, err := corpusRequest(args)
	if err != nil {
		return err
	}
	chunker, err := newChunkService(settings, progressHooks{
		Parse: progressFunc(newReporter(cmd.ErrOrStderr(), "parsing"), "parsing"),
	})
	if err != nil {
		return err
	}

	chunks, err := chunker.BuildChunks(cmd.Context(), req)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	for i, c := range chunks {
		cmd.Printf("--- chunk %d  %s  page %s\n", i, c.OriginalFilename(), pageOf(c))
		cmd.Println(c.Content)
	}
	cmd.Printf("\n%d chunks from %d documents\n", len(chunks), len(req.Paths))
	return nil
}

func pageOf(c domain.Chunk) string {
	if p := c.Metadata[domain.MetaPage]; p != "" {
		return p
	}
	return "?"
}
