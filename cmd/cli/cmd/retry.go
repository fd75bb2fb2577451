package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var retryCmd = &cobra.Command{
	Use:   "retry [post_id]",
	Short: "Retry a failed post immediately",
	Long:  `Clear a failed post's retry timer so it becomes due on the next orchestrator tick. Rejected once the retry ceiling is reached; use reschedule for exhausted posts.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		client := NewPostClient(url, token)
		if err := client.RetryPost(args[0]); err != nil {
			printClientError(cmd, err)
			return
		}
		cmd.Printf("✓ Post %s queued for immediate retry\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
