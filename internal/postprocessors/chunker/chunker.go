// Package chunker provides a sentence-aware text chunker.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default overlap budget in characters.
const DefaultChunkOverlap = 50

// sentenceSeparator joins the sentences of one chunk.
const sentenceSeparator = " "

// Ensure Chunker implements the interface.
var _ driven.TextChunker = (*Chunker)(nil)

// Chunker splits text at sentence boundaries into chunks of roughly
// chunkSize characters. Lengths are counted in runes.
type Chunker struct {
	chunkSize    int
	overlap      int
	carryOverlap bool
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap budget in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithCarryOverlap makes each chunk start with the trailing sentences of the
// previous chunk that fit in the overlap budget. Off by default, in which case
// every sentence appears in exactly one chunk.
func WithCarryOverlap(enabled bool) Option {
	return func(c *Chunker) {
		c.carryOverlap = enabled
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap budget.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into chunks.
// A chunk closes when adding the next sentence would push its length past the
// chunk size. A sentence longer than the chunk size becomes its own chunk.
func (c *Chunker) Chunk(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []string{}
	}

	var (
		chunks     []string
		current    []string
		currentLen int
	)

	for _, sentence := range sentences {
		sentenceLen := utf8.RuneCountInString(sentence)

		if currentLen+sentenceLen > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sentenceSeparator))
			current, currentLen = c.carry(current)
		}

		current = append(current, sentence)
		currentLen += sentenceLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sentenceSeparator))
	}

	return chunks
}

// carry returns the sentences that open the next chunk after closed.
func (c *Chunker) carry(closed []string) ([]string, int) {
	if !c.carryOverlap || c.overlap == 0 {
		return nil, 0
	}

	start := len(closed)
	total := 0
	for i := len(closed) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(closed[i])
		if total+n > c.overlap {
			break
		}
		total += n
		start = i
	}

	if start == len(closed) {
		return nil, 0
	}

	carried := make([]string, len(closed)-start)
	copy(carried, closed[start:])
	return carried, total
}

// SplitSentences cuts text after every sentence terminator, consuming the
// whitespace that follows it. Fragments are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var sentences []string

	start := 0
	for i, r := range text {
		if !isTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// isTerminator reports whether r ends a sentence.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	default:
		return false
	}
}
