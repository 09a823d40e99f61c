package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/ministry-site/pkg/client"
)

// contentCmd runs one ContentLoader per section
var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Load every admin section and print each loader's state",
	Long: `Load every admin section and print each loader's final state.

Sections default to whatever GET /api/admin lists. Failed loaders are not
retried unless --retry is given, and then only once.`,
	RunE: runContent,
}

func init() {
	contentCmd.Flags().String("url", "http://localhost:8080", "Base URL of the site")
	contentCmd.Flags().StringSlice("section", nil, "Section to load (repeatable)")
	contentCmd.Flags().Bool("retry", false, "Retry failed loaders once")
	contentCmd.Flags().Duration("timeout", 10*time.Second, "Per-request timeout")
	rootCmd.AddCommand(contentCmd)
}

type outcome struct {
	section string
	state   client.State
	keys    int
	err     error
}

func runContent(cmd *cobra.Command, _ []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	sections, _ := cmd.Flags().GetStringSlice("section")
	retry, _ := cmd.Flags().GetBool("retry")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	httpClient := &http.Client{Timeout: timeout}

	if len(sections) == 0 {
		var err error
		sections, err = client.Sections(ctx, baseURL, httpClient)
		if err != nil {
			return err
		}
	}

	results, err := loadAll(ctx, baseURL, sections, retry, httpClient)
	if err != nil {
		return err
	}
	failed := report(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d of %d sections failed", failed, len(results))
	}
	return nil
}

func loadAll(ctx context.Context, baseURL string, sections []string, retry bool, httpClient *http.Client) ([]outcome, error) {
	results := make([]outcome, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, section := range sections {
		g.Go(func() error {
			l := client.NewContentLoader(baseURL, section, httpClient)
			if err := l.Load(gctx); err != nil && retry {
				_ = l.Retry(gctx)
			}
			state, content, err := l.Snapshot()
			results[i] = outcome{section: section, state: state, keys: len(content), err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].section < results[j].section })
	return results, nil
}

func report(w io.Writer, results []outcome) int {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tSTATE\tDETAIL")
	failed := 0
	for _, r := range results {
		detail := fmt.Sprintf("%d keys", r.keys)
		if r.err != nil {
			detail = r.err.Error()
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.section, r.state, detail)
	}
	tw.Flush()
	return failed
}
