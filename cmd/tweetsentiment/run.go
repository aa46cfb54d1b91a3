package main

import (
	"bufio"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/usecase"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fetch, normalize, score and present stages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		keyword, _ := cmd.Flags().GetString("keyword")
		count, _ := cmd.Flags().GetInt("count")
		refetch, _ := cmd.Flags().GetBool("refetch")
		resume, _ := cmd.Flags().GetBool("resume")
		useCached := cfg.Pipeline.UseCached
		if cmd.Flags().Changed("use-cached") {
			useCached, _ = cmd.Flags().GetBool("use-cached")
		}
		if count == 0 {
			count = cfg.Pipeline.DefaultCount
		}

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		_, err = a.Run(ctx, usecase.Request{
			Keyword:      keyword,
			Count:        count,
			ForceRefetch: refetch,
			UseCached:    useCached,
			Resume:       resume,
		})
		return err
	},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Prompt for keyword and count, then run the pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		rawExists := fileExists(a.ArtifactPath(domain.ArtifactRaw))
		req, err := promptRequest(cmd.InOrStdin(), cmd.OutOrStdout(), rawExists, cfg.Pipeline.DefaultCount, cfg.Pipeline.MaxCount)
		if err != nil {
			return err
		}
		_, err = a.Run(ctx, req)
		return err
	},
}

func init() {
	runCmd.Flags().String("keyword", "", "search keyword (required when fetching)")
	runCmd.Flags().Int("count", 0, "number of posts to fetch (defaults to pipeline.defaultCount)")
	runCmd.Flags().Bool("refetch", false, "fetch even when a raw artifact exists")
	runCmd.Flags().Bool("use-cached", true, "reuse the raw artifact when present")
	runCmd.Flags().Bool("resume", false, "reuse clean and sentiment artifacts when nothing upstream changed")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(interactiveCmd)
}

// promptRequest asks whether to refetch when a raw artifact exists, and for
// keyword and count when a fetch will happen.
func promptRequest(in io.Reader, out io.Writer, rawExists bool, defaultCount, maxCount int) (usecase.Request, error) {
	scanner := bufio.NewScanner(in)
	ask := func(question string) (string, error) {
		fmt.Fprint(out, question)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", eris.Wrap(err, "read input")
			}
			return "", nil
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	req := usecase.Request{UseCached: true, Count: defaultCount}
	if rawExists {
		answer, err := ask("Found existing tweets. Fetch new ones? [y/N]: ")
		if err != nil {
			return req, err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return req, nil
		}
		req.ForceRefetch = true
	}

	keyword, err := ask("Enter keyword to search: ")
	if err != nil {
		return req, err
	}
	if keyword == "" {
		return req, eris.Wrap(domain.ErrInvalidRequest, "keyword is required")
	}
	req.Keyword = keyword

	answer, err := ask(fmt.Sprintf("How many tweets to fetch (1-%d) [%d]: ", maxCount, defaultCount))
	if err != nil {
		return req, err
	}
	if answer != "" {
		n, err := strconv.Atoi(answer)
		if err != nil {
			return req, eris.Wrapf(domain.ErrInvalidRequest, "count %q is not a number", answer)
		}
		req.Count = n
	}
	return req, nil
}
