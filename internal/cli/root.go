package cli

import (
	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	envFile    string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subtrans",
	Short: "LLM-powered subtitle translator",
	Long: `Subtrans translates SRT subtitle files with a language model.

Each chunk of subtitles goes through a translate, review, format and verify
pipeline so that indices and timestamps survive translation untouched.

Providers: gemini, openai, anthropic and ollama (OpenAI-compatible).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		return config.LoadEnvFile(envFile)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", config.DefaultEnvFile, "Load API keys from this .env file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
