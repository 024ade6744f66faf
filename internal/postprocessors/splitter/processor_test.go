package splitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	p := NewProcessor(mustNew(t, Config{ChunkSize: 10}, runeTokenizer{}))
	assert.Equal(t, "splitter", p.Name())
}

func TestProcessor_Process_PerPageMetadata(t *testing.T) {
	s := mustNew(t, Config{ChunkSize: 10, Separators: defaultSeparators}, runeTokenizer{})
	p := NewProcessor(s)

	doc := &domain.Document{
		Path: "/docs/a.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: "aaa bbb ccc ddd"},
			{Number: 2, Text: ""},
			{Number: 3, Text: "tail"},
		},
		Metadata: map[string]string{domain.MetaTotalPages: "3"},
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "aaa bbb", chunks[0].Content)
	assert.Equal(t, "ccc ddd", chunks[1].Content)
	assert.Equal(t, "tail", chunks[2].Content)

	assert.Equal(t, "1", chunks[0].Metadata[domain.MetaPage])
	assert.Equal(t, "3", chunks[2].Metadata[domain.MetaPage])
	for _, c := range chunks {
		assert.Equal(t, "/docs/a.pdf", c.Metadata[domain.MetaSource])
		assert.Equal(t, "3", c.Metadata[domain.MetaTotalPages])
	}

	chunks[0].Metadata["x"] = "y"
	assert.NotContains(t, chunks[1].Metadata, "x")
	assert.NotContains(t, doc.Metadata, "x")
}

func TestProcessor_Process_EmptyDocument(t *testing.T) {
	p := NewProcessor(mustNew(t, Config{ChunkSize: 10}, runeTokenizer{}))

	chunks, err := p.Process(context.Background(), &domain.Document{Path: "/empty.pdf"}, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessor_Process_Cancelled(t *testing.T) {
	p := NewProcessor(mustNew(t, Config{ChunkSize: 10}, runeTokenizer{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, &domain.Document{Pages: []domain.Page{{Number: 1, Text: "x"}}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
