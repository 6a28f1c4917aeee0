package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"exhibitrag/internal/usecase"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Long: `Show corpus statistics: total works, embedding model, retriever status
and database location.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	r := usecase.Load(GetConfig(), GetRootDir())
	defer r.Close()

	stats := r.Stats()

	if statsJSON {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Println("知识库统计信息:")
		fmt.Printf("  总作品数: %d\n", stats.TotalDocuments)
		fmt.Printf("  向量模型: %s\n", stats.EmbeddingModel)
		fmt.Printf("  状态:     %s\n", stats.Status)
		fmt.Printf("  数据库:   %s\n", stats.DatabasePath)
	}

	// Surface the load failure so the exit code reflects it.
	return r.Err()
}
