package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsflowai/newsflow/internal/api"
	"github.com/newsflowai/newsflow/internal/schedule"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and, optionally, the crawl scheduler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if viper.GetBool("schedule.enabled") {
		scheduler, schedErr := startScheduler(ctx, app)
		if schedErr != nil {
			return schedErr
		}
		defer scheduler.Stop()
	}

	server := api.New(
		viper.GetString("server.addr"),
		app.orchestrator,
		app.pipeline,
		app.store,
		app.log,
	)

	return server.Start(ctx)
}

// startScheduler seeds the scheduler snapshot from the active keywords in
// the database.
func startScheduler(ctx context.Context, app *app) (*schedule.Scheduler, error) {
	keywords, err := app.store.ActiveKeywords(ctx)
	if err != nil {
		return nil, err
	}

	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		terms = append(terms, kw.Keyword)
	}

	scheduler := schedule.New(
		viper.GetString("schedule.spec"),
		app.orchestrator,
		schedule.Snapshot{
			Keywords:     terms,
			WindowHours:  viper.GetInt("crawl.window_hours"),
			RequireTitle: viper.GetBool("crawl.require_title"),
			RequireImage: viper.GetBool("crawl.require_image"),
		},
		app.log,
	)

	if err := scheduler.Start(); err != nil {
		return nil, err
	}

	return scheduler, nil
}
