package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [post_id]",
	Short: "Cancel a scheduled post",
	Long:  `Cancel a post before it is picked up for publishing. Only posts still in the scheduled state can be cancelled.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		client := NewPostClient(url, token)
		if err := client.CancelPost(args[0]); err != nil {
			printClientError(cmd, err)
			return
		}
		cmd.Printf("✓ Post %s cancelled\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
