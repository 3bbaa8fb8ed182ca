package cli

import (
	"github.com/spf13/cobra"

	"github.com/mikey/lovescan/internal/ports"
)

// Options holds the persistent flags shared by every command
type Options struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
	Provider   string
	APIKey     string
	Model      string
}

// Services is what a command needs to run a scan
type Services struct {
	Scanner ports.Scanner
	Images  ports.ImageSearcher

	// Close releases clients opened while building the services
	Close func()
}

// ServiceBuilder builds the scan services once flags are parsed
type ServiceBuilder func(opts Options) (*Services, error)

var (
	version      = "dev"
	opts         Options
	buildService ServiceBuilder
)

var rootCmd = &cobra.Command{
	Use:   "lovescan",
	Short: "Explainable romance-scam risk checks",
	Long: `lovescan scores chat text, profile screenshots, reverse image search hits
and profile links for romance-scam indicators and explains the verdict.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&opts.JSONLog, "json-log", false, "output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&opts.Provider, "provider", "", "LLM provider for chat analysis (bedrock, gemini, openai)")
	rootCmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", "", "API key for the LLM provider")
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "model name or ID for the LLM provider")
}

// SetVersion sets the version reported by the version command
func SetVersion(v string) {
	version = v
}

// SetServiceBuilder sets how commands obtain their scan services
func SetServiceBuilder(b ServiceBuilder) {
	buildService = b
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
