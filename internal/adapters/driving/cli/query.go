package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve attributed context for a question",
	Long: `Retrieve the passages most relevant to a question and print them as
one context block, each passage preceded by its source filename.

The retrieval strategy (similarity, threshold or MMR) comes from the
[retriever] section of the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntP("top-k", "k", 0, "number of passages (0 = retriever.top_k)")
	queryCmd.Flags().Bool("json", false, "print the answer with scores as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return fmt.Errorf("getting top-k flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	query, closeFn, err := newQueryService(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	answer, err := query.Ask(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	if len(answer.Results) == 0 {
		cmd.Println("No relevant passages found.")
		return nil
	}
	cmd.Println(answer.Context)
	return nil
}
