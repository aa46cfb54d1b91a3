package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/usecase"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline for a keyword on a fixed interval",
	Long:  "Fetches fresh posts for the keyword every interval and reports each run, until interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		keyword, _ := cmd.Flags().GetString("keyword")
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")
		if strings.TrimSpace(keyword) == "" {
			return eris.Wrap(domain.ErrInvalidRequest, "--keyword is required")
		}
		if count == 0 {
			count = cfg.Pipeline.DefaultCount
		}

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		return a.Watch(ctx, usecase.Request{Keyword: keyword, Count: count, UseCached: true}, interval)
	},
}

func init() {
	watchCmd.Flags().String("keyword", "", "search keyword")
	watchCmd.Flags().Int("count", 0, "posts per run (defaults to pipeline.defaultCount)")
	watchCmd.Flags().Duration("interval", 0, "time between runs (defaults to pipeline.watchInterval)")
	rootCmd.AddCommand(watchCmd)
}
