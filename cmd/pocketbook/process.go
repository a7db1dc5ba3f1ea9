package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pocketbook/internal/config"
	"pocketbook/internal/pipeline"
	"pocketbook/internal/providers"
)

var processCmd = &cobra.Command{
	Use:   "process <book.epub> [book.epub...]",
	Short: "Summarize one or more EPUB files",
	Long: `Process summarizes each given EPUB into its own output directory.

A book that fails fatally (bad credentials, an empty summary plan, a
schema violation in strict JSON mode) is abandoned at its last
checkpoint, and processing continues with the next book. The command
exits non-zero if any book failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyProcessFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		client := providers.NewOpenRouterClient(providers.OpenRouterConfig{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			MaxElapsedTime: cfg.MaxElapsedTime,
			MaxRetries:     cfg.MaxRetries,
			RPS:            cfg.RequestsPerSecond,
		})
		p := pipeline.New(*cfg, client, slog.Default())

		var failed int
		for _, path := range args {
			report, err := p.ProcessBook(cmd.Context(), path)
			if err != nil {
				failed++
				slog.Error("book failed", "path", path, "error", err)
				continue
			}
			fmt.Printf("%s: %d/%d chapters (%d resumed, %d sections skipped)\n",
				report.Book, report.ChaptersCompleted+report.ChaptersResumed,
				report.TotalChapters, report.ChaptersResumed, report.SectionsSkipped)
		}

		fmt.Printf("%d ok, %d failed\n", len(args)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d books failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	processCmd.Flags().String("lang", "", "summary language (overrides config)")
	processCmd.Flags().String("format", "", "output format: markdown or html (overrides config)")
	processCmd.Flags().String("detail", "", "detail level: short, medium or long (overrides config)")
	processCmd.Flags().Int("workers", 0, "concurrent chapter workers (overrides config)")
	processCmd.Flags().Int("chapter-limit", -1, "process at most N chapters, 0 for all (overrides config)")
	processCmd.Flags().String("model", "", "completion model (overrides config)")
}

// applyProcessFlags lets per-run flags win over the config file and
// environment. Only flags the user actually set are applied.
func applyProcessFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("format") {
		cfg.OutputFormat, _ = flags.GetString("format")
	}
	if flags.Changed("detail") {
		cfg.DetailLevel, _ = flags.GetString("detail")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("chapter-limit") {
		cfg.ChapterLimit, _ = flags.GetInt("chapter-limit")
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	return nil
}
