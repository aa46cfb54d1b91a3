package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"TweetSentiment/internal/report"
)

var labelCmd = &cobra.Command{
	Use:   "label [file]",
	Short: "Resolve sentiment labels of an existing CSV file",
	Long:  "Reads a CSV file (the sentiment artifact by default) and prints the label strategy and distribution without running the pipeline.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Storage.SentimentFile
		if len(args) == 1 {
			path = args[0]
		}

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		p, err := a.Label(path)
		if err != nil {
			return err
		}
		printLabels(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
}

func printLabels(w io.Writer, p report.Presentation) {
	rows := 0
	if p.Table != nil {
		rows = p.Table.Len()
	}
	fmt.Fprintf(w, "rows: %d\n", rows)
	if !p.Resolution.Resolved() {
		fmt.Fprintln(w, "Could not find or infer sentiment labels.")
		return
	}
	fmt.Fprintf(w, "strategy: %s (column %s)\n", p.Resolution.Strategy, p.Resolution.Column)
	for _, s := range p.Distribution {
		fmt.Fprintf(w, "%-10s %5d %6.1f%%\n", s.Label, s.Count, s.Percent)
	}
}
