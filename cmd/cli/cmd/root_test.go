package cmd

import (
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resetViper clears viper config between tests for isolation
func resetViper() {
	viper.Reset()
	viper.SetEnvPrefix("POSTFLOW")
	viper.AutomaticEnv()
}

func TestRootCommand_DefaultURL(t *testing.T) {
	resetViper()

	// The default URL should be set by root command init
	// We need to trigger flag initialization
	cmd := &cobra.Command{}
	cmd.PersistentFlags().String("url", "http://localhost:8080", "Postflow API URL")
	viper.BindPFlag("url", cmd.PersistentFlags().Lookup("url"))

	url := viper.GetString("url")
	if url != "http://localhost:8080" {
		t.Errorf("expected default url http://localhost:8080, got: %s", url)
	}
}

func TestRootCommand_EnvVars(t *testing.T) {
	resetViper()

	t.Setenv("POSTFLOW_TOKEN", "env-token-value")
	t.Setenv("POSTFLOW_URL", "http://custom-url:8080")

	token := viper.GetString("token")
	url := viper.GetString("url")

	if token != "env-token-value" {
		t.Errorf("expected token from env var, got: %s", token)
	}
	if url != "http://custom-url:8080" {
		t.Errorf("expected url from env var, got: %s", url)
	}
}

func TestRootCommand_CustomConfigFile(t *testing.T) {
	resetViper()

	tmpFile, err := os.CreateTemp("", "postctl-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("url: http://custom-from-config:9999\ntoken: config-token\n")
	tmpFile.Close()

	cfgFile = tmpFile.Name()
	initConfig()

	url := viper.GetString("url")
	if url != "http://custom-from-config:9999" {
		t.Errorf("expected url from config file, got: %s", url)
	}

	token := viper.GetString("token")
	if token != "config-token" {
		t.Errorf("expected token from config file, got: %s", token)
	}

	// Reset for other tests
	cfgFile = ""
}
