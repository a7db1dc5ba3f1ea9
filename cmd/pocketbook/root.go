package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pocketbook/internal/config"
	"pocketbook/version"
)

var (
	cfgFile   string
	outputDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "pocketbook",
	Short: "Condense e-books into structured pocket summaries with an LLM",
	Long: `Pocketbook reads an EPUB, splits its chapters into model-sized sections,
and drives a plan-then-summarize protocol against a completion service.

Each book gets its own output directory with:
  - the extracted images and chapter text
  - a growing structured summary (markdown or html)
  - a compact summary ePub
  - a checkpoint file, so an interrupted run resumes without
    repeating already-billed work`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pocketbook/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputDir, "output-dir", "", "root directory for per-book output (default: current directory)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		// A .env next to the binary supplies POCKETBOOK_API_KEY during
		// development; absence is not an error.
		_ = godotenv.Load()
	}

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the effective configuration for a command run:
// defaults, then config file, then environment, then persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg, nil
}
