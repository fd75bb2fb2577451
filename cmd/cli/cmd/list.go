package cmd

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled posts",
	Long: `List posts for the authenticated tenant with optional filters.

Example:
  postctl list --status failed
  postctl list --platform twitter --limit 10`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		status, _ := flags.GetString("status")
		platform, _ := flags.GetString("platform")
		createdBy, _ := flags.GetString("by")
		limit, _ := flags.GetInt("limit")
		offset, _ := flags.GetInt("offset")

		apiURL := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		filters := url.Values{}
		if status != "" {
			filters.Set("status", status)
		}
		if platform != "" {
			filters.Set("platform", platform)
		}
		if createdBy != "" {
			filters.Set("created_by", createdBy)
		}
		if limit > 0 {
			filters.Set("limit", strconv.Itoa(limit))
		}
		if offset > 0 {
			filters.Set("offset", strconv.Itoa(offset))
		}

		client := NewPostClient(apiURL, token)
		posts, err := client.ListPosts(filters)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(posts) == 0 {
			cmd.Println("No posts found")
			return
		}

		for _, p := range posts {
			cmd.Printf("%s %s  %-10s  %v  %s\n",
				statusIcon(p.Status), p.ID, p.Status, p.Platforms,
				p.ScheduledAt.Format("2006-01-02 15:04 MST"))
		}
	},
}

func init() {
	flags := listCmd.Flags()
	flags.String("status", "", "Filter by status (scheduled, publishing, published, failed, cancelled)")
	flags.String("platform", "", "Filter by target platform")
	flags.String("by", "", "Filter by creator")
	flags.Int("limit", 0, "Maximum posts to return")
	flags.Int("offset", 0, "Pagination offset")

	rootCmd.AddCommand(listCmd)
}
