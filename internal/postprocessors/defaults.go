package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/postprocessors/attribution"
	"github.com/custodia-labs/docrag/internal/postprocessors/sanitize"
	"github.com/custodia-labs/docrag/internal/postprocessors/splitter"
	"github.com/custodia-labs/docrag/internal/sanitizer"
)

// DefaultOrder is the chunk pipeline: split, then attribute, then sanitize.
// Attribution runs before sanitization so metadata is set before content is rewritten.
var DefaultOrder = []string{
	splitter.ProcessorName,
	attribution.ProcessorName,
	sanitize.ProcessorName,
}

// Dependencies are the capabilities the built-in processors share.
type Dependencies struct {
	// Tokenizer measures chunk sizes. Required by the splitter.
	Tokenizer driven.Tokenizer

	// Sanitizer is the compiled sanitizer. When nil, the sanitizer
	// builder compiles the "patterns" config key instead.
	Sanitizer *sanitizer.Sanitizer

	// Sink receives pipeline diagnostics.
	Sink logger.Sink
}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry, deps Dependencies) {
	if deps.Sink == nil {
		deps.Sink = logger.Discard
	}
	r.Register(splitter.ProcessorName, func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildSplitter(cfg, deps)
	})
	r.Register(attribution.ProcessorName, func(cfg map[string]any) (driven.PostProcessor, error) {
		return attribution.New(getStringMapFromConfig(cfg, "filenames"), deps.Sink), nil
	})
	r.Register(sanitize.ProcessorName, func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildSanitizer(cfg, deps)
	})
}

// buildSplitter creates a splitter processor from generic config.
// Supported config keys:
//   - chunk_size (int): Tokens per chunk (default: 500)
//   - chunk_overlap (int): Overlapping tokens between chunks (default: 0)
//   - separators ([]string): Delimiters, coarsest first (default: paragraph, line, space, character)
func buildSplitter(cfg map[string]any, deps Dependencies) (driven.PostProcessor, error) {
	size := getIntFromConfig(cfg, "chunk_size")
	if _, ok := cfg["chunk_size"]; !ok {
		size = domain.DefaultChunkSize
	}
	seps, ok := getStringSliceFromConfig(cfg, "separators")
	if !ok {
		seps = domain.DefaultSeparators
	}

	s, err := splitter.New(splitter.Config{
		ChunkSize:    size,
		ChunkOverlap: getIntFromConfig(cfg, "chunk_overlap"),
		Separators:   seps,
	}, deps.Tokenizer)
	if err != nil {
		return nil, err
	}
	return splitter.NewProcessor(s), nil
}

// buildSanitizer creates a sanitization processor.
// Supported config keys:
//   - patterns ([]string): Suspicious patterns, used only without a shared sanitizer
func buildSanitizer(cfg map[string]any, deps Dependencies) (driven.PostProcessor, error) {
	if deps.Sanitizer != nil {
		return sanitize.New(deps.Sanitizer), nil
	}
	patterns, _ := getStringSliceFromConfig(cfg, "patterns")
	s, err := sanitizer.New(patterns, sanitizer.WithSink(deps.Sink))
	if err != nil {
		return nil, err
	}
	return sanitize.New(s), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getStringSliceFromConfig extracts a string list, accepting []string or []any.
func getStringSliceFromConfig(cfg map[string]any, key string) ([]string, bool) {
	val, ok := cfg[key]
	if !ok {
		return nil, false
	}

	switch v := val.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}

// getStringMapFromConfig extracts a string map, accepting map[string]string or map[string]any.
func getStringMapFromConfig(cfg map[string]any, key string) map[string]string {
	switch v := cfg[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k] = fmt.Sprint(item)
		}
		return out
	default:
		return nil
	}
}

// DefaultPipelineBuilder returns a builder of the default chunk pipeline
// for chunking settings. The pipeline is built once up front so invalid
// settings fail before any document is processed.
func DefaultPipelineBuilder(
	r *Registry, chunking domain.ChunkingSettings,
) (func(filenames map[string]string) (driven.PostProcessorPipeline, error), error) {
	build := func(filenames map[string]string) (driven.PostProcessorPipeline, error) {
		return r.BuildPipeline(DefaultOrder, map[string]map[string]any{
			splitter.ProcessorName: {
				"chunk_size":    chunking.ChunkSize,
				"chunk_overlap": chunking.ChunkOverlap,
				"separators":    chunking.Separators,
			},
			attribution.ProcessorName: {"filenames": filenames},
			sanitize.ProcessorName:    {"patterns": chunking.SuspiciousPatterns},
		})
	}
	if _, err := build(nil); err != nil {
		return nil, err
	}
	return build, nil
}
