package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docrag.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFileName, NewConfigStore("").Path())
	assert.Equal(t, "/etc/x.toml", NewConfigStore("/etc/x.toml").Path())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "absent.toml"))

	got, err := store.Load()
	require.NoError(t, err)
	want := domain.DefaultSettings()
	assert.Equal(t, &want, got)
}

func TestLoad_ParsesSections(t *testing.T) {
	path := writeConfig(t, `
[corpus]
paths = ["docs/a.pdf", "docs/**/*.pdf"]
index_path = "out/index.db"
parser = "native"
on_parse_error = "abort"

[corpus.filenames]
"docs/a.pdf" = "Annual Report.pdf"

[chunking]
chunk_size = 200
chunk_overlap = 20
separators = []

[embedding]
provider = "hash"
dimensions = 64

[retriever]
top_k = 6

[retriever.config]
search_type = "mmr"
fetch_k = 30
lambda_mult = 0.25
`)

	got, err := NewConfigStore(path).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/a.pdf", "docs/**/*.pdf"}, got.Corpus.Paths)
	assert.Equal(t, "out/index.db", got.Corpus.IndexPath)
	assert.Equal(t, domain.ParserNative, got.Corpus.Parser)
	assert.Equal(t, domain.ParseFailureAbort, got.Corpus.OnParseError)
	assert.Equal(t, "Annual Report.pdf", got.Corpus.Filenames["docs/a.pdf"])
	assert.Equal(t, 200, got.Chunking.ChunkSize)
	assert.Equal(t, 20, got.Chunking.ChunkOverlap)
	assert.Empty(t, got.Chunking.Separators)
	assert.NotNil(t, got.Chunking.Separators, "an explicit empty list is kept")
	assert.Equal(t, domain.AIProviderHash, got.Embedding.Provider)
	assert.Equal(t, 64, got.Embedding.Dimensions)
	assert.Equal(t, 6, got.Retriever.TopK)
	assert.Equal(t, domain.SearchTypeMMR, got.Retriever.Config.SearchType)
	assert.Equal(t, 30, got.Retriever.Config.FetchK)
	require.NotNil(t, got.Retriever.Config.LambdaMult)
	assert.Equal(t, 0.25, *got.Retriever.Config.LambdaMult)

	// Defaults fill the rest.
	assert.Equal(t, domain.DefaultEmbeddingBatch, got.Embedding.BatchSize)
	assert.NoError(t, got.Validate())
}

func TestLoad_LambdaMult(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected float64
	}{
		{"absent takes the default", "", domain.DefaultLambdaMult},
		{"explicit zero is kept", "lambda_mult = 0.0\n", 0},
		{"explicit one is kept", "lambda_mult = 1.0\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "[retriever.config]\nsearch_type = \"mmr\"\n"+tt.line)

			got, err := NewConfigStore(path).Load()
			require.NoError(t, err)
			require.NotNil(t, got.Retriever.Config.LambdaMult)
			assert.Equal(t, tt.expected, *got.Retriever.Config.LambdaMult)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"unknown key", "[chunking]\nchunk_sise = 10\n", "chunk_sise"},
		{"syntax error", "[chunking\nchunk_size = 10\n", "line 1"},
		{"wrong type", "[chunking]\nchunk_size = \"big\"\n", "ChunkSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigStore(writeConfig(t, tt.content)).Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docrag.toml")
	store := NewConfigStore(path)

	settings := domain.DefaultSettings()
	settings.Corpus.Paths = []string{"a.pdf"}
	settings.Corpus.Filenames = map[string]string{"a.pdf": "A.pdf"}
	settings.Retriever.Config.SearchType = domain.SearchTypeScoreThreshold
	settings.Retriever.Config.ScoreThreshold = 0.7
	require.NoError(t, store.Save(&settings))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &settings, got)
}

func TestSave_Nil(t *testing.T) {
	err := NewConfigStore(filepath.Join(t.TempDir(), "c.toml")).Save(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "docrag.toml")

	// Missing .env is fine.
	require.NoError(t, LoadDotEnv(configPath))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DOCRAG_TEST_DOTENV_KEY=from-file\nDOCRAG_TEST_DOTENV_SET=from-file\n"), 0600))
	t.Setenv("DOCRAG_TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("DOCRAG_TEST_DOTENV_KEY") })

	require.NoError(t, LoadDotEnv(configPath))
	assert.Equal(t, "from-file", os.Getenv("DOCRAG_TEST_DOTENV_KEY"))
	assert.Equal(t, "from-env", os.Getenv("DOCRAG_TEST_DOTENV_SET"), "existing variables win")
}
