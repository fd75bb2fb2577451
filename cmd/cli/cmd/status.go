package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"postflow/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [post_id]",
	Short: "Get status of a scheduled post",
	Long:  `Retrieve detailed status information for a scheduled post, including its lifecycle state (scheduled, publishing, published, failed, cancelled), per-platform results and retry state.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		postID := args[0]

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the POSTFLOW_TOKEN environment variable")
			return
		}

		client := NewPostClient(url, token)
		post, err := client.GetPost(postID)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printStatus(cmd, *post)
	},
}

func printStatus(cmd *cobra.Command, post api.PostResponse) {
	icon := statusIcon(post.Status)
	cmd.Printf("%s %sPost Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, post.ID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(post.Status))
	cmd.Printf("%sPlatforms:%s   %v\n", colorDim, colorReset, post.Platforms)
	cmd.Printf("%sScheduled:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(&post.ScheduledAt))

	if post.Recurring {
		cmd.Printf("%sRecurring:%s   yes\n", colorDim, colorReset)
	}
	if post.ParentID != "" {
		cmd.Printf("%sParent:%s      %s\n", colorDim, colorReset, post.ParentID)
	}

	if post.PublishedAt != nil {
		cmd.Printf("%sPublished:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(post.PublishedAt))
	}

	if post.RetryCount > 0 {
		cmd.Printf("%sRetries:%s     %d\n", colorDim, colorReset, post.RetryCount)
	}
	if post.RetryState != "" {
		cmd.Printf("%sRetry state:%s %s%s%s\n", colorDim, colorReset, colorYellow, post.RetryState, colorReset)
	}
	if post.ErrorMessage != "" {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, post.ErrorMessage, colorReset)
	}

	if len(post.Results) > 0 {
		cmd.Printf("%sResults:%s\n", colorDim, colorReset)
		platforms := make([]string, 0, len(post.Results))
		for p := range post.Results {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)
		for _, p := range platforms {
			r := post.Results[p]
			if r.Success {
				cmd.Printf("  %s✓%s %-10s %s\n", colorGreen, colorReset, p, r.PlatformPostID)
			} else {
				cmd.Printf("  %s✗%s %-10s %s\n", colorRed, colorReset, p, r.Error)
			}
		}
	}

	if post.PreviewApproved {
		cmd.Printf("%sApproved by:%s %s\n", colorDim, colorReset, post.ApprovedBy)
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "published":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "publishing":
		return colorYellow + "⏳" + colorReset
	case "scheduled":
		return colorCyan + "◯" + colorReset
	case "cancelled":
		return colorDim + "⊘" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "published":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "publishing":
		return icon + " " + colorYellow + status + colorReset
	case "scheduled":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)
	suffix := " ago"
	if duration < 0 {
		duration = -duration
		suffix = " from now"
	}

	switch {
	case duration < time.Minute:
		return fmt.Sprintf("%ds%s", int(duration.Seconds()), suffix)
	case duration < time.Hour:
		return fmt.Sprintf("%dm%s", int(duration.Minutes()), suffix)
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh%s", int(duration.Hours()), suffix)
	default:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day" + suffix
		}
		return fmt.Sprintf("%d days%s", days, suffix)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
