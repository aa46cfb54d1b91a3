package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"TweetSentiment/internal/app"
	"TweetSentiment/internal/config"
	"TweetSentiment/internal/logging"
)

var (
	cfg        config.Config
	logger     *zap.Logger
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "tweetsentiment",
	Short:        "Keyword sentiment pipeline for short social posts",
	Long:         "Fetches posts for a keyword, normalizes and scores them, then reports the sentiment distribution. Every stage checkpoints to CSV so later runs can reuse earlier work.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		l, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $TWEETSENTIMENT_CONFIG)")
}

func newApplication(cmd *cobra.Command) (*app.Application, error) {
	return app.New(cmd.Context(), cfg, logger, app.Options{Out: cmd.OutOrStdout()})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
