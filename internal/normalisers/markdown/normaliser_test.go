package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const sample = "---\ntitle: ignored\n---\n" +
	"# Getting Started\n\n" +
	"Install with `go install`.\n\n" +
	"- First **step**\n" +
	"- Second _step_\n\n" +
	"1. Read the [docs](https://example.com)\n" +
	"![diagram](img.png)\n\n" +
	"> Quoted text\n\n" +
	"---\n\n" +
	"```go\nfmt.Println(\"hi\")\n```\n"

func TestNormaliser_SupportedExtensions(t *testing.T) {
	assert.Contains(t, New().SupportedExtensions(), ".md")
}

func TestNormaliser_Normalise(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawFile{Name: "guide.md", Content: []byte(sample)})

	require.NoError(t, err)
	assert.Equal(t, "Getting Started", result.Title)
	assert.Equal(t, "markdown", result.Format)

	for _, want := range []string{
		"Getting Started",
		"Install with go install.",
		"First step",
		"Second step",
		"Read the docs",
		"diagram",
		"Quoted text",
		`fmt.Println("hi")`,
	} {
		assert.Contains(t, result.Content, want)
	}
	for _, unwanted := range []string{"**", "](", "```", "title: ignored", "---", "> "} {
		assert.NotContains(t, result.Content, unwanted)
	}
}

func TestNormaliser_KeepsIdentifiers(t *testing.T) {
	raw := &domain.RawFile{Name: "x.md", Content: []byte("Call snake_case_name now.")}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Call snake_case_name now.", result.Content)
}

func TestNormaliser_TitleFallsBackToFileName(t *testing.T) {
	raw := &domain.RawFile{Name: "docs/release-notes.md", Content: []byte("## Only a subheading\n\nText.")}

	result, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "release notes", result.Title)
}

func TestNormaliser_NilInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
