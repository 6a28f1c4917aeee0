package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"exhibitrag/config"
	"exhibitrag/internal/adapter/dataset"
	"exhibitrag/internal/adapter/embedding"
	"exhibitrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [data-dir]",
	Short: "Build the vector database from the works catalog",
	Long: `Read the works catalog, embed every work, and write the vector database.

The database is built to a scratch file and renamed into place, so a running
retriever keeps serving the previous corpus until the new one is complete.

Examples:
  exhibitrag ingest           # Use the data directory from config
  exhibitrag ingest data/     # Ingest a specific catalog directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dataDir := cfg.Data.Dir
	if len(args) > 0 {
		dataDir = args[0]
	}
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(GetRootDir(), dataDir)
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		return fmt.Errorf("data directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dataDir)
	}

	emb, err := embedding.FromConfig(cfg.Embedding)
	if err != nil {
		return err
	}

	if err := config.EnsureStateDir(GetRootDir()); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	dbPath := config.IndexDBPath(GetRootDir())

	fmt.Printf("Building vector database from %s (model %s)...\n", dataDir, emb.ModelName())

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Embedding"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	loader := dataset.NewLoader(cfg.Data.Includes, cfg.Data.Excludes)
	ing := usecase.NewIngestor(loader, emb, cfg.Embedding.BatchSize, progress)

	result, err := ing.Ingest(cmd.Context(), dataDir, dbPath)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Works indexed: %d\n", result.WorksIndexed)
	fmt.Printf("  Exhibit zones: %d\n", result.Zones)
	fmt.Printf("  Database:      %s\n", result.DBPath)
	return nil
}
