package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule [post_id]",
	Short: "Move a post to a new time",
	Long: `Move a scheduled or failed post to a new publication time. A
post whose retries are exhausted re-enters the schedule with its retry
counter reset.

Example:
  postctl reschedule <post-id> --at 2026-09-02T09:00:00Z`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		at, _ := cmd.Flags().GetString("at")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		newTime, err := time.Parse(time.RFC3339, at)
		if err != nil {
			cmd.Printf("Error: invalid --at time, use RFC3339 (e.g. 2026-09-02T09:00:00Z): %v\n", err)
			return
		}

		client := NewPostClient(url, token)
		if err := client.ReschedulePost(args[0], newTime); err != nil {
			printClientError(cmd, err)
			return
		}
		cmd.Printf("✓ Post %s rescheduled to %s\n", args[0], newTime.Format(time.RFC3339))
	},
}

func init() {
	rescheduleCmd.Flags().String("at", "", "New publication time, RFC3339 (required)")
	rootCmd.AddCommand(rescheduleCmd)
}
