package cli

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [question]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docrag.

The TUI lets you ask questions against the index, browse the ranked
passages with their scores and read the assembled context.

Controls:
  ↑/k, ↓/j - Navigate passages
  Enter    - Ask / Show assembled context
  n        - New question
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

// runApp runs the program. Tests replace it to avoid taking the terminal.
var runApp = func(app *tui.App) error { return app.Run() }

func init() {
	tuiCmd.Flags().IntP("top-k", "k", 0, "number of passages (0 = retriever.top_k)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return fmt.Errorf("getting top-k flag: %w", err)
	}

	query, closeFn, err := newQueryService(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	app, err := tui.NewApp(tui.NewPorts(query))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithTopK(topK)
	if len(args) > 0 {
		app.WithQuestion(strings.Join(args, " "))
	}

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
