package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"exhibitrag/internal/domain"
	"exhibitrag/internal/render"
	"exhibitrag/internal/usecase"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactive search with similarity scores",
	Long: `Start an interactive search session. Each query prints the matched works
together with their similarity scores.

Commands inside the session:
  simple   toggle between full knowledge text and key-field summary
  exit     quit the session`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "number of results per query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	r := usecase.Load(GetConfig(), GetRootDir())
	if err := r.Err(); err != nil {
		return err
	}
	defer r.Close()

	stats := r.Stats()
	fmt.Printf("知识库已加载 (%d 件作品, 模型 %s)\n", stats.TotalDocuments, stats.EmbeddingModel)
	fmt.Println("输入查询, 'simple' 切换显示模式, 'exit' 退出")

	showFull := true
	formatter := render.NewTextFormatter()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n请输入查询: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		case "simple", "s", "简洁":
			showFull = !showFull
			if showFull {
				fmt.Println("切换到: 显示完整内容")
			} else {
				fmt.Println("切换到: 显示关键信息")
			}
			continue
		}

		results, err := r.Search(cmd.Context(), line, searchTopK)
		if err != nil {
			fmt.Printf("搜索失败: %v\n", err)
			continue
		}
		if len(results) == 0 {
			fmt.Println("未找到相关作品")
			continue
		}

		fmt.Printf("找到 %d 个结果:\n", len(results))
		for i, sw := range results {
			fmt.Printf("\n【%d】相似度: %.3f\n", i+1, sw.Score)
			if showFull {
				fmt.Println(formatter.Format([]domain.Work{sw.Work}))
			} else {
				fmt.Printf("作品: 《%s》  作者: %s  展区: %s\n",
					sw.Work.Name, sw.Work.Authors, sw.Work.Zone)
			}
		}
	}

	return scanner.Err()
}
