package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/netreq/internal/app"
	"github.com/samvad-hq/netreq/internal/config"
	"github.com/samvad-hq/netreq/internal/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// needsRunner marks subcommands that talk to the network or the history store.
// Everything else (help, completion) runs without opening either.
const needsRunner = "netreq/needs-runner"

var runnerAnnotation = map[string]string{needsRunner: "true"}

// cliState is filled by the root pre-run and shared by subcommands.
type cliState struct {
	runner    *app.Runner
	logActive bool
}

func newRootCmd() (*cobra.Command, *cliState) {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "netreq",
		Short:         "Fetch a URL and decode the response into structured data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[needsRunner] != "true" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.Init(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			state.logActive = true

			logger.DebugObj("netreq starting", "config", cfg)

			runner, err := app.NewRunner(cmd.Context(), cfg, log)
			if err != nil {
				logger.ErrorObj("failed to initialize runner", "error", err.Error())
				return err
			}
			state.runner = runner
			return nil
		},
	}

	root.AddCommand(newFetchCmd(state), newBatchCmd(state), newHistoryCmd(state))
	return root, state
}

// close releases the runner even when the command failed.
func (s *cliState) close() error {
	if s.logActive {
		defer logger.Close()
		s.logActive = false
	}
	if s.runner == nil {
		return nil
	}
	err := s.runner.Close()
	s.runner = nil
	return err
}

// printValue renders v as indented JSON or YAML.
func printValue(w io.Writer, output string, v any) error {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonCompatible(v))
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output %q (expected json or yaml)", output)
	}
}

// jsonCompatible rewrites the map[interface{}]interface{} values yaml.v3 produces for
// mappings with non-string keys, which encoding/json refuses.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonCompatible(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonCompatible(val)
		}
		return out
	default:
		return v
	}
}
