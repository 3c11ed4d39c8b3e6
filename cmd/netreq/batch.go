package main

import (
	"fmt"

	"github.com/samvad-hq/netreq/internal/app"
	"github.com/spf13/cobra"
)

type batchItem struct {
	URL        string `json:"url" yaml:"url"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
	Value      any    `json:"value,omitempty" yaml:"value,omitempty"`
}

func newBatchCmd(state *cliState) *cobra.Command {
	var (
		method      string
		headers     []string
		format      string
		output      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:         "batch URL [URL...]",
		Short:       "Fetch several URLs concurrently and print one result per URL",
		Args:        cobra.MinimumNArgs(1),
		Annotations: runnerAnnotation,
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			inputs := make([]app.FetchInput, len(args))
			for i, u := range args {
				inputs[i] = app.FetchInput{URL: u, Method: method, Headers: hdrs, Format: format}
			}

			reports, err := state.runner.FetchAll(cmd.Context(), inputs, concurrency)
			if err != nil {
				return err
			}

			items := make([]batchItem, len(reports))
			failed := 0
			for i, rep := range reports {
				items[i] = batchItem{
					URL:        rep.URL,
					Outcome:    rep.Outcome,
					DurationMs: rep.Duration.Milliseconds(),
					Value:      jsonCompatible(rep.Value),
				}
				if rep.Err != nil {
					failed++
				}
			}
			if err := printValue(cmd.OutOrStdout(), output, items); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method, sent as given")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, `request header as "Name: value" (repeatable)`)
	cmd.Flags().StringVar(&format, "format", "", "response format: json, yaml, xml or html (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output encoding: json or yaml")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "maximum requests in flight")
	return cmd
}
