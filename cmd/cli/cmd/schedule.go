package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"postflow/pkg/api"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a post for publication",
	Long: `Schedule a content record for publication across one or more
platforms at a future time.

Example:
  postctl schedule --content-id <id> --platforms twitter,linkedin --at 2026-09-01T09:00:00Z
  postctl schedule --content-id <id> --platforms facebook --at 2026-09-01T09:00:00Z \
    --recur weekly --until 2026-10-01T09:00:00Z`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		contentID, _ := flags.GetString("content-id")
		platforms, _ := flags.GetStringSlice("platforms")
		at, _ := flags.GetString("at")
		recur, _ := flags.GetString("recur")
		until, _ := flags.GetString("until")
		createdBy, _ := flags.GetString("by")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		if contentID == "" {
			cmd.Println("Error: --content-id is required")
			return
		}
		if len(platforms) == 0 {
			cmd.Println("Error: --platforms is required")
			return
		}

		scheduledAt, err := time.Parse(time.RFC3339, at)
		if err != nil {
			cmd.Printf("Error: invalid --at time, use RFC3339 (e.g. 2026-09-01T09:00:00Z): %v\n", err)
			return
		}

		req := api.CreatePostRequest{
			ContentID:   contentID,
			Platforms:   platforms,
			ScheduledAt: scheduledAt,
			CreatedBy:   createdBy,
		}

		if recur != "" {
			if until == "" {
				cmd.Println("Error: --until is required with --recur")
				return
			}
			endDate, err := time.Parse(time.RFC3339, until)
			if err != nil {
				cmd.Printf("Error: invalid --until time: %v\n", err)
				return
			}
			req.Recurrence = &api.Recurrence{Pattern: recur, EndDate: endDate}
		}

		client := NewPostClient(url, token)
		result, err := client.CreatePost(req)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Post scheduled!\nID: %s\n", result.PostID)
		if len(result.OccurrenceIDs) > 0 {
			cmd.Printf("Occurrences: %d\n", len(result.OccurrenceIDs))
			for _, id := range result.OccurrenceIDs {
				cmd.Printf("  %s\n", id)
			}
		}
	},
}

func init() {
	flags := scheduleCmd.Flags()
	flags.String("content-id", "", "Content record to publish (required)")
	flags.StringSliceP("platforms", "p", []string{}, "Target platforms (required)")
	flags.String("at", "", "Publication time, RFC3339 (required)")
	flags.String("recur", "", "Recurrence pattern: daily, weekly or monthly")
	flags.String("until", "", "Recurrence end date, RFC3339 (required with --recur)")
	flags.String("by", "", "Author identifier")

	rootCmd.AddCommand(scheduleCmd)
}
