package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/sanitizer"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration, embedding provider and index",
	Long: `Check validates the loaded configuration and its suspicious patterns,
pings the embedding provider and reports on the index file. A missing or
unreadable index is reported but is not an error: run docrag index to
build it.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	emb := settings.Embedding

	fmt.Fprintf(out, "config:    %s\n", newConfigStore(cfgPath).Path())
	san, err := sanitizer.New(settings.Chunking.SuspiciousPatterns)
	if err != nil {
		fmt.Fprintln(out, "sanitizer: FAILED")
		return fmt.Errorf("check: %w", err)
	}
	fmt.Fprintf(out, "sanitizer: %d suspicious patterns ok\n", len(san.Patterns()))
	if err := validateConfig(ctx, settings); err != nil {
		fmt.Fprintf(out, "embedding: %s %s FAILED\n", emb.Provider, emb.Model)
		return fmt.Errorf("check: %w", err)
	}
	fmt.Fprintf(out, "embedding: %s %s ok\n", emb.Provider, emb.Model)

	idx, err := loadIndex(ctx, settings.Corpus.IndexPath)
	if err != nil {
		fmt.Fprintf(out, "index:     %s not usable (%v)\n", settings.Corpus.IndexPath, err)
		return nil
	}
	info := idx.Info()
	fmt.Fprintf(out, "index:     %s, %d chunks, %s (%d dimensions), built %s\n",
		settings.Corpus.IndexPath, info.Count, info.Model, info.Dimensionality,
		info.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}
