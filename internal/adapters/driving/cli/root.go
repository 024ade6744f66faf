// Package cli provides the docrag command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool

	// settings and cliLog are populated before any command runs.
	settings *domain.Settings
	cliLog   *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Attributed retrieval context from PDF documents",
	Long: `docrag turns a set of PDF documents into a vector index and answers
questions with the most relevant passages, each attributed to its source file.

Indexing parses every document, splits it into token-bounded chunks,
redacts prompt-injection phrasing and embeds the chunks. Queries rank the
chunks by similarity (or MMR) and assemble them into a context block ready
for a language model.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", file.DefaultFileName, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings reads the config file and its .env before any command runs.
// Settings already set (by tests) are kept.
func loadSettings(cmd *cobra.Command, _ []string) error {
	if cliLog == nil {
		cliLog = logger.New(cmd.ErrOrStderr(), verbose)
	} else {
		cliLog.SetVerbose(verbose)
	}
	if settings != nil {
		return nil
	}

	if err := file.LoadDotEnv(cfgPath); err != nil {
		return err
	}
	s, err := newConfigStore(cfgPath).Load()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if _, statErr := os.Stat(cfgPath); statErr != nil {
		cliLog.Debug("no config file at %s, using defaults", cfgPath)
	} else {
		cliLog.Debug("loaded %s", cfgPath)
	}
	settings = s
	return nil
}
