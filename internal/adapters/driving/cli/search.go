package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchOwner     string
	searchLimit     int
	searchThreshold float64
	searchJSON      bool

	similarOwner string
	similarLimit int
	similarJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs semantic search across one owner's indexed documents.
The query is embedded and compared with every chunk; each document appears
once, ranked by its best matching chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var similarCmd = &cobra.Command{
	Use:   "similar [doc-id]",
	Short: "Find documents similar to a document",
	Long: `Ranks the owner's other documents by similarity to the first chunk of
the given document. No score threshold is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	searchCmd.Flags().StringVar(&searchOwner, "owner", "", "owner whose documents are searched (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("owner")

	similarCmd.Flags().StringVar(&similarOwner, "owner", "", "owner whose documents are compared (required)")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 5, "maximum number of documents")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")
	_ = similarCmd.MarkFlagRequired("owner")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(similarCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		OwnerID: searchOwner,
		Limit:   searchLimit,
	}
	// An explicit --threshold 0 is honoured.
	if cmd.Flags().Changed("threshold") {
		threshold := searchThreshold
		opts.Threshold = &threshold
	}

	results, err := searchService.Search(commandContext(cmd), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	docs, err := searchService.FindSimilar(commandContext(cmd), args[0], similarOwner, similarLimit)
	if err != nil {
		return fmt.Errorf("similar failed: %w", err)
	}

	if similarJSON {
		return outputJSON(cmd, docs)
	}

	return outputSimilarTable(cmd, docs)
}

// outputJSON prints v as indented JSON. Nil slices print as [].
func outputJSON[T any](cmd *cobra.Command, v []T) error {
	if v == nil {
		v = []T{}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title (Score)
		title := results[i].Title
		if title == "" {
			title = results[i].DocumentID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      Document: %s\n", results[i].DocumentID)
		if results[i].ContentPreview != "" {
			cmd.Printf("      %s\n", results[i].ContentPreview)
		}
		cmd.Println()
	}

	return nil
}

func outputSimilarTable(cmd *cobra.Command, docs []domain.SimilarDocument) error {
	if len(docs) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}

	cmd.Println("Similar documents:")
	cmd.Println()
	for i := range docs {
		title := docs[i].Title
		if title == "" {
			title = docs[i].DocumentID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, docs[i].SimilarityScore)
		cmd.Printf("      Document: %s\n", docs[i].DocumentID)
	}

	return nil
}
