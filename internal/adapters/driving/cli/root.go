// Package cli provides the cobra command tree for the sercha-rag binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	cfgFile string
	verbose bool
)

// Services used by the commands. Set by servicesInit or by tests.
var (
	indexService    driving.IndexService
	searchService   driving.SearchService
	settingsService driving.SettingsService
)

// Command annotations controlling service setup.
const (
	// annotationNoServices skips service setup entirely.
	annotationNoServices = "sercha-rag/no-services"

	// annotationSettingsOnly builds only the settings service, so broken
	// embedding or storage settings can still be inspected and fixed.
	annotationSettingsOnly = "sercha-rag/settings-only"
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Chunk, embed, and semantically search documents",
	Long: `sercha-rag splits documents into chunks, embeds each chunk, and stores
the vectors so that an owner's documents can be searched by meaning.

Embeddings come from a local hashing model, Ollama, or OpenAI. Chunks are
stored in SQLite, PostgreSQL with pgvector, or memory.`,
	SilenceUsage:      true,
	PersistentPreRunE: runPersistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ~/.sercha-rag/config.toml; .yaml and .yml also accepted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command and releases the services it opened.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func runPersistentPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if servicesInit == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	return servicesInit(commandContext(cmd), cmd.Annotations[annotationSettingsOnly] != "true")
}

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
