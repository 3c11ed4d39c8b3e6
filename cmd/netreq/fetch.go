package main

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/netreq/internal/app"
	"github.com/spf13/cobra"
)

func newFetchCmd(state *cliState) *cobra.Command {
	var (
		method  string
		headers []string
		params  []string
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:         "fetch URL",
		Short:       "Perform one request and print the decoded body",
		Args:        cobra.ExactArgs(1),
		Annotations: runnerAnnotation,
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			prms, err := parseParams(params)
			if err != nil {
				return err
			}

			rep := state.runner.Fetch(cmd.Context(), app.FetchInput{
				URL:        args[0],
				Method:     method,
				Headers:    hdrs,
				Parameters: prms,
				Format:     format,
			})
			if rep.Err != nil {
				return fmt.Errorf("%s: %w", rep.Outcome, rep.Err)
			}
			return printValue(cmd.OutOrStdout(), output, rep.Value)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method, sent as given")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, `request header as "Name: value" (repeatable)`)
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter as key=value (sent only when apply_parameters is enabled)")
	cmd.Flags().StringVar(&format, "format", "", "response format: json, yaml, xml or html (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output encoding: json or yaml")
	return cmd
}

// parseHeaders accepts "Name: value" and "Name=value".
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		idx := strings.IndexAny(h, ":=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid header %q (expected \"Name: value\")", h)
		}
		out[strings.TrimSpace(h[:idx])] = strings.TrimSpace(h[idx+1:])
	}
	return out, nil
}

// parseParams accepts key=value; repeated keys collect into a slice.
func parseParams(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, p := range raw {
		key, val, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (expected key=value)", p)
		}
		switch prev := out[key].(type) {
		case nil:
			out[key] = val
		case string:
			out[key] = []string{prev, val}
		case []string:
			out[key] = append(prev, val)
		}
	}
	return out, nil
}
