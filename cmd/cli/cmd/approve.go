package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var approveCmd = &cobra.Command{
	Use:   "approve [post_id]",
	Short: "Approve a post's preview",
	Long: `Record preview approval on a post.

Example:
  postctl approve <post-id> --by alice --notes "copy checked"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		approvedBy, _ := cmd.Flags().GetString("by")
		notes, _ := cmd.Flags().GetString("notes")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		if approvedBy == "" {
			cmd.Println("Error: --by is required")
			return
		}

		client := NewPostClient(url, token)
		if err := client.ApprovePost(args[0], approvedBy, notes); err != nil {
			printClientError(cmd, err)
			return
		}
		cmd.Printf("✓ Post %s approved by %s\n", args[0], approvedBy)
	},
}

func init() {
	approveCmd.Flags().String("by", "", "Approver identifier (required)")
	approveCmd.Flags().String("notes", "", "Approval notes")
	rootCmd.AddCommand(approveCmd)
}
