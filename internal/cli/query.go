package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"exhibitrag/internal/domain"
	"exhibitrag/internal/usecase"
)

var (
	queryText   string
	queryTopK   int
	querySimple bool
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the works knowledge base",
	Long: `Search for works matching the query by embedding similarity and print
the formatted knowledge text.

Examples:
  exhibitrag query -q "永栖所的设计作者是谁"
  exhibitrag query -q "磁悬浮技术" --top-k 5 --simple
  exhibitrag query -q "传统文化" --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVarP(&querySimple, "simple", "s", false, "score-annotated summary instead of full knowledge text")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

// queryResult is the JSON shape for one scored match.
type queryResult struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Authors string  `json:"authors"`
	Zone    string  `json:"zone"`
	Score   float64 `json:"score"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	r := usecase.Load(GetConfig(), GetRootDir())
	if err := r.Err(); err != nil {
		return err
	}
	defer r.Close()

	topK := GetConfig().Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	if queryJSON || querySimple {
		results, err := r.Search(cmd.Context(), queryText, topK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if queryJSON {
			out := make([]queryResult, len(results))
			for i, sw := range results {
				out[i] = queryResult{
					ID:      sw.Work.ID,
					Name:    sw.Work.Name,
					Authors: sw.Work.Authors,
					Zone:    sw.Work.Zone,
					Score:   sw.Score,
				}
			}
			data, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		printSimple(results)
		return nil
	}

	text, err := r.Retrieve(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if text == "" {
		fmt.Println("未找到相关作品")
		return nil
	}
	fmt.Println(text)
	return nil
}

// printSimple renders score-annotated key fields, one block per match.
func printSimple(results []domain.ScoredWork) {
	if len(results) == 0 {
		fmt.Println("未找到相关作品")
		return
	}
	for i, sw := range results {
		fmt.Printf("[%d] 相似度: %.3f\n", i+1, sw.Score)
		fmt.Printf("    作品: 《%s》\n", sw.Work.Name)
		fmt.Printf("    作者: %s\n", sw.Work.Authors)
		fmt.Printf("    类别: %s\n", sw.Work.Category)
		fmt.Printf("    展区: %s\n", sw.Work.Zone)
	}
}
