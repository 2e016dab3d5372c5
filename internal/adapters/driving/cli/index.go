package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

var (
	indexOwner   string
	indexTitle   string
	indexContent string
	indexFile    string
)

var indexCmd = &cobra.Command{
	Use:   "index [doc-id]",
	Short: "Index a document",
	Long: `Chunks the document text, embeds every chunk, and replaces whatever was
previously stored for the document. Text comes from --content, or from
--file (use "-" for stdin). Markdown and HTML files are converted to plain
text first, and their heading or <title> is used when --title is not given.
Empty text removes the document's chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	indexCmd.Flags().StringVar(&indexOwner, "owner", "", "owner of the document (required)")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "document title")
	indexCmd.Flags().StringVar(&indexContent, "content", "", "document text")
	indexCmd.Flags().StringVarP(&indexFile, "file", "f", "", `read document text from a file ("-" for stdin)`)
	indexCmd.MarkFlagsMutuallyExclusive("content", "file")
	_ = indexCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ctx := commandContext(cmd)
	text, err := readIndexContent(cmd)
	if err != nil {
		return err
	}

	title := indexTitle
	if title == "" {
		title = text.Title
	}

	docID := args[0]
	ids, err := indexService.IndexDocument(ctx, docID, title, text.Content, indexOwner)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if len(ids) == 0 {
		cmd.Printf("Indexed %s: no content, stored chunks removed\n", docID)
		return nil
	}
	cmd.Printf("Indexed %s: %d chunks\n", docID, len(ids))
	return nil
}

// readIndexContent returns the text given by --content or --file.
// Files are normalised by extension; stdin is taken as plain text.
func readIndexContent(cmd *cobra.Command) (*domain.NormalisedText, error) {
	var raw domain.RawFile

	switch indexFile {
	case "":
		return &domain.NormalisedText{Content: indexContent, Format: "plaintext"}, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		raw.Content = data
	default:
		data, err := os.ReadFile(indexFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", indexFile, err)
		}
		raw.Name, raw.Content = indexFile, data
	}

	text, err := normalisers.Default().Normalise(commandContext(cmd), &raw)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", indexFile, err)
	}
	logger.Debug("index: %s read as %s (%d bytes)", indexFile, text.Format, len(raw.Content))
	return text, nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	docID := args[0]
	removed, err := indexService.DeleteDocument(commandContext(cmd), docID)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if !removed {
		cmd.Printf("Nothing indexed for %s\n", docID)
		return nil
	}
	cmd.Printf("Deleted %s\n", docID)
	return nil
}
