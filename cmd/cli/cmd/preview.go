package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var previewCmd = &cobra.Command{
	Use:   "preview [post_id]",
	Short: "Render the per-platform preview for a post",
	Long:  `Generate and display how the post's content will look on each target platform, with character counts against each platform's limit and a rough reach estimate.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		client := NewPostClient(url, token)
		result, err := client.PreviewPost(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		platforms := make([]string, 0, len(result.Preview))
		for p := range result.Preview {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)

		for _, platform := range platforms {
			p := result.Preview[platform]
			limitMark := colorGreen + "✓" + colorReset
			if !p.WithinLimit {
				limitMark = colorRed + "✗ over limit" + colorReset
			}
			cmd.Printf("%s%s%s (%d/%d chars %s, est. reach %d)\n",
				colorBold, platform, colorReset, p.CharCount, p.CharLimit, limitMark, p.EstimatedReach)
			cmd.Println("──────────────────────────────")
			cmd.Println(p.Content)
			cmd.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
