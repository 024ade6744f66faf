package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve retrieval over HTTP",
	Long: `Start an HTTP server answering retrieval requests against the index.

Endpoints:
  GET /v1/context?question=...&top_k=4
  GET /v1/index     build information
  GET /healthz      liveness

Requests to /v1 are rate limited across all clients. With --reload the
index file is watched and swapped in whenever it is rewritten, for example
by "docrag watch" running alongside.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Int("rpm", -1, "requests per minute, 0 disables the limit (overrides server.requests_per_minute)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origin, repeatable")
	serveCmd.Flags().Bool("reload", false, "reload the index when its file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	rpm, err := cmd.Flags().GetInt("rpm")
	if err != nil {
		return fmt.Errorf("getting rpm flag: %w", err)
	}
	origins, err := cmd.Flags().GetStringSlice("cors-origin")
	if err != nil {
		return fmt.Errorf("getting cors-origin flag: %w", err)
	}
	reload, err := cmd.Flags().GetBool("reload")
	if err != nil {
		return fmt.Errorf("getting reload flag: %w", err)
	}
	if addr == "" {
		addr = settings.Server.Addr
	}
	if rpm < 0 {
		rpm = settings.Server.RequestsPerMinute
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	query, closeFn, err := newQueryService(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	server, err := httpapi.New(httpapi.Config{
		Addr:              addr,
		RequestsPerMinute: rpm,
		AllowedOrigins:    origins,
	}, query, currentLog())
	if err != nil {
		return err
	}

	if reload {
		setter, ok := query.(indexSetter)
		if !ok {
			return fmt.Errorf("%w: query service cannot swap its index", domain.ErrInvalidConfig)
		}
		go func() {
			if err := watchChanges(ctx, []string{settings.Corpus.IndexPath}, reloadIndex(setter)); err != nil {
				currentLog().Warn("index reload stopped: %v", err)
			}
		}()
	}

	info := query.IndexInfo()
	cmd.Printf("Serving %d chunks (build %s) on http://%s\n", info.Count, info.BuildID, displayAddr(addr))
	return server.Run(ctx)
}

// reloadIndex loads the rewritten index and swaps it in. A deleted index
// file keeps the current one.
func reloadIndex(setter indexSetter) func(context.Context, []domain.CorpusChange) error {
	return func(ctx context.Context, changes []domain.CorpusChange) error {
		if last := changes[len(changes)-1]; last.Type == domain.ChangeDeleted {
			currentLog().Warn("index %s was removed, keeping the loaded index", last.Path)
			return nil
		}
		idx, err := loadIndex(ctx, settings.Corpus.IndexPath)
		if err != nil {
			return fmt.Errorf("reload index: %w", err)
		}
		setter.SetIndex(idx)
		info := idx.Info()
		currentLog().Info("reloaded index %s: %d chunks", info.BuildID, info.Count)
		return nil
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
