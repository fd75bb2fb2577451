package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "postctl",
	Short: "Postctl is a command line tool for the postflow publishing engine",
	Long: `postctl is the command-line interface for the postflow scheduled
publishing engine.

Postflow schedules content for publication across multiple social
platforms: a post is created against a content record, becomes due at
its scheduled time, and an orchestrator fans it out to every target
platform at once. Failed dispatches retry on a fixed backoff schedule
before requiring manual action.

Common workflows:

  Register content:
    postctl content --body "Big launch tomorrow" --hashtags launch,product

  Schedule a post:
    postctl schedule --content-id <id> --platforms twitter,linkedin --at 2026-09-01T09:00:00Z

  Schedule a recurring post:
    postctl schedule --content-id <id> --platforms twitter --at 2026-09-01T09:00:00Z \
      --recur daily --until 2026-09-08T09:00:00Z

  Check post status:
    postctl status <post-id>

  Preview before publishing:
    postctl preview <post-id>
    postctl approve <post-id> --by alice

  Recover a failed post:
    postctl retry <post-id>
    postctl reschedule <post-id> --at 2026-09-02T09:00:00Z

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    POSTFLOW_URL      API endpoint (default: http://localhost:8080)
    POSTFLOW_TOKEN    Tenant API token for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".postctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".postctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "POSTFLOW_VARNAME"
	viper.SetEnvPrefix("POSTFLOW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.postctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Postflow API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API Token for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
