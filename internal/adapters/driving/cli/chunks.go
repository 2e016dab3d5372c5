package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var chunksJSON bool

var chunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "List a document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

var chunkCmd = &cobra.Command{
	Use:   "chunk [chunk-id]",
	Short: "Print a single chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output chunks as JSON")

	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(chunkCmd)
}

// chunkView is the printable form of a chunk; embeddings are summarised.
type chunkView struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Position   int    `json:"position"`
	Content    string `json:"content"`
	Dimensions int    `json:"dimensions"`
}

func newChunkView(c *domain.Chunk) chunkView {
	return chunkView{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Position:   c.Position,
		Content:    c.Content,
		Dimensions: len(c.Embedding),
	}
}

func runChunks(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	docID := args[0]
	chunks, err := indexService.GetDocumentChunks(commandContext(cmd), docID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	views := make([]chunkView, len(chunks))
	for i := range chunks {
		views[i] = newChunkView(&chunks[i])
	}

	if chunksJSON {
		return outputJSON(cmd, views)
	}

	if len(views) == 0 {
		cmd.Printf("No chunks found for document: %s\n", docID)
		return nil
	}

	cmd.Printf("Chunks for document %s:\n\n", docID)
	for _, v := range views {
		cmd.Printf("  [%d] %s\n", v.Position, v.ID)
		cmd.Printf("      %s\n", domain.Preview(v.Content))
		cmd.Println()
	}
	cmd.Printf("Total: %d chunks\n", len(views))
	return nil
}

func runChunk(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	chunk, err := indexService.GetChunk(commandContext(cmd), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("chunk not found: %s", args[0])
		}
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	data, err := json.MarshalIndent(newChunkView(chunk), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
