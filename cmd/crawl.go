package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsflowai/newsflow/internal/crawl"
	"github.com/newsflowai/newsflow/internal/domain"
)

func crawlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run a one-shot crawl for the given keywords",
		RunE:  runCrawl,
	}

	cmd.Flags().StringSlice("keyword", nil, "keyword to crawl (repeatable)")
	cmd.Flags().StringSlice("listing", nil, "listing page URL to scrape (repeatable)")
	cmd.Flags().Int("hours", 0, "recency window in hours")
	cmd.Flags().Bool("no-image", false, "accept articles without a lead image")

	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	listings, _ := cmd.Flags().GetStringSlice("listing")
	hours, _ := cmd.Flags().GetInt("hours")
	noImage, _ := cmd.Flags().GetBool("no-image")
	debug, _ := cmd.Flags().GetBool("debug")

	if len(keywords) == 0 && len(listings) == 0 {
		return errors.New("at least one --keyword or --listing is required")
	}

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if hours <= 0 {
		hours = viper.GetInt("crawl.window_hours")
	}

	report := app.orchestrator.Run(cmd.Context(), crawl.Request{
		Keywords:     keywords,
		ListingURLs:  listings,
		WindowHours:  hours,
		RequireTitle: viper.GetBool("crawl.require_title"),
		RequireImage: viper.GetBool("crawl.require_image") && !noImage,
		Debug:        debug,
	})

	renderReport(report)

	return nil
}

func renderReport(report crawl.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Keyword", "OK", "Fetch Fail", "No Title", "No Image", "No Paragraphs", "Save Fail"})

	for slug, stats := range report.Stats {
		t.AppendRow(table.Row{
			slug,
			stats[domain.ReasonOK],
			stats[domain.ReasonFetchFail],
			stats[domain.ReasonNoTitle],
			stats[domain.ReasonNoImage],
			stats[domain.ReasonNoParagraphs],
			stats[domain.ReasonSaveFail],
		})
	}
	t.Render()

	for slug, summaries := range report.Collected {
		for _, summary := range summaries {
			fmt.Printf("  [%s] %s — %s (%s)\n", slug, summary.ID, summary.Title, summary.Source)
		}
	}
}
