package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsflowai/newsflow/internal/domain"
	"github.com/newsflowai/newsflow/internal/pipeline"
)

func addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Ingest a single article link",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdd,
	}

	cmd.Flags().String("keyword", "geral", "keyword to file the article under")
	cmd.Flags().Bool("no-image", false, "accept the article without a lead image")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	keyword, _ := cmd.Flags().GetString("keyword")
	noImage, _ := cmd.Flags().GetBool("no-image")

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	outcome := app.pipeline.Process(
		cmd.Context(),
		domain.CandidateLink{URL: args[0]},
		keyword,
		pipeline.Requirements{
			RequireTitle: viper.GetBool("crawl.require_title"),
			RequireImage: viper.GetBool("crawl.require_image") && !noImage,
		},
		false,
	)

	if outcome.Reason != domain.ReasonOK || outcome.Article == nil {
		return fmt.Errorf("could not ingest %s: %s", args[0], outcome.Reason)
	}

	fmt.Printf("%s\n  title:     %s\n  keyword:   %s\n  permalink: /item/%s\n",
		outcome.Article.URL, outcome.Article.Title, outcome.Article.Keyword, outcome.Article.ID)

	return nil
}
