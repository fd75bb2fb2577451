package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"postflow/pkg/api"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Register a content record",
	Long: `Register the source content a scheduled post publishes from.

Example:
  postctl content --body "Big launch tomorrow" --hashtags launch,product
  postctl content --body "Watch the demo" --media https://cdn.example.com/demo.mp4`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		body, _ := flags.GetString("body")
		media, _ := flags.GetStringSlice("media")
		hashtags, _ := flags.GetStringSlice("hashtags")
		mentions, _ := flags.GetStringSlice("mentions")
		createdBy, _ := flags.GetString("by")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		if body == "" {
			cmd.Println("Error: --body is required")
			return
		}

		client := NewPostClient(url, token)
		result, err := client.CreateContent(api.CreateContentRequest{
			Body:      body,
			MediaURLs: media,
			Hashtags:  hashtags,
			Mentions:  mentions,
			CreatedBy: createdBy,
		})
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Content registered!\nID: %s\n", result.ContentID)
	},
}

func printClientError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
	} else {
		cmd.Printf("Error: %v\n", err)
	}
}

func init() {
	flags := contentCmd.Flags()
	flags.StringP("body", "b", "", "Content body text (required)")
	flags.StringSlice("media", []string{}, "Media URLs to attach")
	flags.StringSlice("hashtags", []string{}, "Hashtags, without the # prefix")
	flags.StringSlice("mentions", []string{}, "Mentions, without the @ prefix")
	flags.String("by", "", "Author identifier")

	rootCmd.AddCommand(contentCmd)
}
