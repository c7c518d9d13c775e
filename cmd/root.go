// Package cmd implements the command-line interface: the HTTP server,
// one-shot crawls, single-link ingestion, and source management.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsflowai/newsflow/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "newsflow",
	Short: "Keyword-driven news collection service",
	Long: `Newsflow discovers recent news articles for configured keywords,
extracts their content, and republishes them as JSON, RSS, and HTML.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(crawlCommand())
	rootCmd.AddCommand(addCommand())
	rootCmd.AddCommand(sourcesCommand())
}

func initConfig() error {
	// Environment variables from .env are optional.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// The config file itself is optional; env vars and defaults suffice.
	_ = viper.ReadInConfig()

	return nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("db.path", "./data/news.db")
	viper.SetDefault("sources.path", "./sources.yml")

	viper.SetDefault("crawl.workers", 5)
	viper.SetDefault("crawl.candidate_cap", 30)
	viper.SetDefault("crawl.window_hours", 12)
	viper.SetDefault("crawl.require_title", true)
	viper.SetDefault("crawl.require_image", true)

	viper.SetDefault("schedule.enabled", false)
	viper.SetDefault("schedule.spec", "@every 30m")

	viper.SetDefault("rewrite.enabled", false)
	viper.SetDefault("openrouter.api_key", "")
	viper.SetDefault("openrouter.model", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
}

func newLogger(cmd *cobra.Command) (logger.Interface, error) {
	level := viper.GetString("log.level")
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}

	return logger.New(logger.Config{
		Level:       level,
		Development: viper.GetBool("log.development"),
	})
}
