package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Init writes the default settings to the --config path so they can be
edited. An existing file is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	// The existing file may not parse, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cliLog == nil {
			cliLog = logger.New(cmd.ErrOrStderr(), verbose)
		}
		return nil
	},
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	store := newConfigStore(cfgPath)
	_, err := os.Stat(store.Path())
	switch {
	case err == nil && !initForce:
		return fmt.Errorf("%w: %s already exists, use --force to overwrite", domain.ErrInvalidInput, store.Path())
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return err
	}

	defaults := domain.DefaultSettings()
	if err := store.Save(&defaults); err != nil {
		return fmt.Errorf("write %s: %w", store.Path(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", store.Path())
	return nil
}
