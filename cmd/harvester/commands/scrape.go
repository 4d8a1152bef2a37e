package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"review-harvester/internal/api/validation"
	"review-harvester/internal/exporter"
	"review-harvester/internal/logging"
	"review-harvester/internal/scraper"
	"review-harvester/pkg/utils"
)

var (
	scrapeURL        *string
	scrapeOut        *string
	scrapeProductURL *string
)

func init() {
	scrapeURL = scrapeCmd.Flags().String("url", "", "Product page to scrape.")
	scrapeOut = scrapeCmd.Flags().String("out", "reviews.csv", "CSV file to write.")
	scrapeProductURL = scrapeCmd.Flags().String("product-url", "", "Product URL written into every CSV row.")
	_ = scrapeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --url <product page> [--out <reviews.csv>] [--product-url <url>]",
	Short: "Scrapes the reviews of one product and writes them as CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loaded
		logger := logging.ForComponent("cli")

		if !validation.IsMarketplaceURL(*scrapeURL, cfg.Scraper.TargetDomain) {
			return fmt.Errorf("please provide a valid %s URL", cfg.Scraper.TargetDomain)
		}

		start := time.Now()
		result, err := scraper.NewDefault(cfg).ScrapeReviews(cmd.Context(), *scrapeURL)
		if err != nil {
			return err
		}

		f, err := os.Create(*scrapeOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *scrapeOut, err)
		}
		defer f.Close()

		if err := exporter.WriteCSV(f, result.Reviews, *scrapeProductURL, utils.DefaultRand, time.Now()); err != nil {
			return utils.NewSerializationError(err.Error())
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", *scrapeOut, err)
		}

		logger.Info("Reviews written", map[string]interface{}{
			"file":      *scrapeOut,
			"count":     len(result.Reviews),
			"extracted": result.Extracted,
			"reveal":    string(result.Reveal.Reason),
			"duration":  utils.FormatDuration(time.Since(start)),
		})
		return nil
	},
}
