package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"TweetSentiment/internal/normalize"
)

var scoreCmd = &cobra.Command{
	Use:   "score <text>",
	Short: "Normalize and score a single text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		clean := normalize.Text(strings.Join(args, " "))
		bundle, label := a.Score(clean)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "clean:    %s\n", clean)
		fmt.Fprintf(out, "compound: %.4f\n", bundle.Compound)
		fmt.Fprintf(out, "neg/neu/pos: %.3f / %.3f / %.3f\n", bundle.Neg, bundle.Neu, bundle.Pos)
		fmt.Fprintf(out, "polarity: %.4f\n", bundle.Polarity)
		fmt.Fprintf(out, "label:    %s\n", label)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
