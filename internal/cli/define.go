package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mgpai22/subtrans/internal/language"
	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/spf13/cobra"
)

var defineCmd = &cobra.Command{
	Use:   "define [word...]",
	Short: "Look up words in Wiktionary",
	Long: `Look up the first definition of each word in the given language, the
same way the translator does during translation.

Examples:
  subtrans define serendipity
  subtrans define gato perro --language spanish`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDefine,
}

func init() {
	rootCmd.AddCommand(defineCmd)

	defineCmd.Flags().
		StringP("language", "l", lookup.DefaultLanguage, "Language of the words (name or code)")
	defineCmd.Flags().
		String("lookup-url", lookup.DefaultBaseURL, "Wiktionary definition endpoint")
	defineCmd.Flags().
		Int("max-attempts", lookup.DefaultMaxAttempts, "Attempts per word")
	defineCmd.Flags().
		Int("max-words", lookup.DefaultMaxWords, "Maximum words to look up")
}

func runDefine(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("language")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	code, ok := language.Code(lang)
	if !ok {
		return fmt.Errorf("unknown language %q", lang)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg.Lookup.Enabled = true
	svc := newLookup(cfg)
	result := svc.Lookup(ctx, args, code, cfg.Lookup.MaxAttempts, cfg.Lookup.MaxWords)

	out := cmd.OutOrStdout()
	for _, d := range result.Definitions {
		fmt.Fprintf(out, "%s: %s\n", d.Word, d.Definition)
	}
	if len(result.NotFound) > 0 {
		fmt.Fprintf(out, "Not found: %s\n", strings.Join(result.NotFound, ", "))
	}
	return nil
}

