package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"TweetSentiment/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		runs, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}
		formatRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "max runs to show")
	rootCmd.AddCommand(historyCmd)
}

func formatRuns(w io.Writer, runs []domain.RunRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tKEYWORD\tCOUNT\tSTATUS\tSTAGES\tLABELS")
	for _, r := range runs {
		stages := make([]string, len(r.Stages))
		for i, s := range r.Stages {
			stages[i] = string(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			r.Keyword,
			r.Count,
			r.Status,
			strings.Join(stages, ","),
			formatCounts(r.LabelCounts),
		)
	}
	_ = tw.Flush()
}

func formatCounts(counts map[domain.Label]int) string {
	if len(counts) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, string(l))
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%d", l, counts[domain.Label(l)])
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
