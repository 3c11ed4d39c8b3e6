package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/netreq/internal/config"
	"github.com/samvad-hq/netreq/internal/logger"
	"github.com/samvad-hq/netreq/internal/storage"
	"github.com/samvad-hq/netreq/pkg/httpclient"
	"github.com/samvad-hq/netreq/pkg/networking"
	"github.com/samvad-hq/netreq/pkg/sinks"
)

// FormatHTML selects the PageMeta target instead of a generic structured decode.
const FormatHTML = "html"

// outcomeOK is the history/sink label for a successful request.
const outcomeOK = "ok"

// FetchInput is one request as received from the CLI.
type FetchInput struct {
	URL        string
	Method     string
	Headers    map[string]string
	Parameters map[string]any
	// Format is a decoder name (json, yaml, xml) or "html". Empty means the response
	// Content-Type when detection is enabled, else the configured decoder.
	Format string
}

// Report is the outcome of a fetch plus bookkeeping.
type Report struct {
	URL      string
	Value    any
	Err      error
	Outcome  string
	Duration time.Duration
}

// Runner is the composition root: it owns the HTTP client shared by every request and the
// side stores that observe outcomes.
type Runner struct {
	executor *networking.Executor
	store    storage.Store
	fanout   *sinks.Fanout
	log      logger.Logger
}

// Option customises a Runner, mainly for tests.
type Option func(*runnerDeps)

type runnerDeps struct {
	client httpclient.Client
	store  storage.Store
	fanout *sinks.Fanout
}

// WithClient injects the HTTP client instead of building one from config.
func WithClient(c httpclient.Client) Option {
	return func(d *runnerDeps) { d.client = c }
}

// WithStore injects the history store.
func WithStore(s storage.Store) Option {
	return func(d *runnerDeps) { d.store = s }
}

// WithFanout injects the sink fanout.
func WithFanout(f *sinks.Fanout) Option {
	return func(d *runnerDeps) { d.fanout = f }
}

// NewRunner builds a Runner from config.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var deps runnerDeps
	for _, opt := range opts {
		opt(&deps)
	}

	if deps.client == nil {
		deps.client = httpclient.New(httpclient.Options{
			Timeout:   cfg.HTTPTimeout,
			UserAgent: cfg.UserAgent,
		})
	}

	decoder, err := networking.DecoderFor(cfg.Decoder)
	if err != nil {
		return nil, fmt.Errorf("resolve decoder: %w", err)
	}
	execOpts := []networking.Option{
		networking.WithDecoder(decoder),
		networking.WithLogger(log),
	}
	if cfg.ApplyParameters {
		execOpts = append(execOpts, networking.WithParameterEncoding())
	}
	if cfg.DetectContentType {
		execOpts = append(execOpts, networking.WithContentTypeDetection())
	}
	executor := networking.NewExecutor(deps.client, execOpts...)

	if deps.store == nil {
		store, err := storage.NewStore(cfg.HistoryType, cfg.HistoryPath, storage.Options{
			EntryTTL:        cfg.HistoryTTL,
			CleanupInterval: cfg.HistoryCleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		deps.store = store
		log.DebugObj("history storage initialized", "storage_config", map[string]any{
			"type":              cfg.HistoryType,
			"path":              cfg.HistoryPath,
			"entry_ttl_seconds": int(cfg.HistoryTTL.Seconds()),
		})
	}

	if deps.fanout == nil {
		fanout, err := buildFanout(ctx, cfg, log)
		if err != nil {
			deps.store.Close()
			return nil, err
		}
		deps.fanout = fanout
	}

	return &Runner{
		executor: executor,
		store:    deps.store,
		fanout:   deps.fanout,
		log:      log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	if strings.TrimSpace(cfg.SinksFile) == "" {
		return sinks.NewFanout(nil), nil
	}

	reg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Fetch runs one request through the executor, then records and forwards the outcome.
// Storage and sink failures are logged; they never change the request outcome.
func (r *Runner) Fetch(ctx context.Context, in FetchInput) Report {
	start := time.Now()

	req := networking.Request{
		URL:        in.URL,
		Method:     in.Method,
		Headers:    in.Headers,
		Parameters: in.Parameters,
	}

	var (
		value any
		err   error
	)
	switch format := strings.ToLower(strings.TrimSpace(in.Format)); format {
	case FormatHTML:
		value, err = networking.Do[networking.PageMeta](ctx, r.executor, req)
	case "":
		// Executor default, or the Content-Type when detection is on.
		value, err = networking.Do[any](ctx, r.executor, req)
	default:
		dec, derr := networking.DecoderFor(format)
		if derr != nil {
			return Report{URL: in.URL, Err: derr, Outcome: "invalid_format"}
		}
		req.Decoder = dec
		value, err = networking.Do[any](ctx, r.executor, req)
	}

	rep := Report{
		URL:      in.URL,
		Value:    value,
		Err:      err,
		Outcome:  outcomeLabel(err),
		Duration: time.Since(start),
	}
	if err != nil {
		rep.Value = nil
	}

	r.observe(ctx, req, rep)
	return rep
}

func (r *Runner) observe(ctx context.Context, req networking.Request, rep Report) {
	method := req.Method
	if method == "" {
		method = networking.DefaultMethod
	}

	if err := r.store.Record(storage.Entry{
		URL:        req.URL,
		Method:     method,
		Outcome:    rep.Outcome,
		DurationMs: rep.Duration.Milliseconds(),
	}); err != nil {
		r.log.WarnObj("history record failed", "error", err.Error())
	}

	if r.fanout.Size() == 0 {
		return
	}
	evt := sinks.NewEvent(req.URL, method, rep.Outcome, rep.Duration)
	if n, err := r.fanout.Send(ctx, evt); err != nil {
		r.log.WarnObj("outcome delivery failed", "sink_result", map[string]any{
			"delivered": n,
			"sinks":     r.fanout.Size(),
			"error":     err.Error(),
		})
	}
}

// History returns the most recent recorded outcomes.
func (r *Runner) History(limit int) ([]storage.Entry, error) {
	return r.store.Recent(limit)
}

// Close releases the store and sink connections.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		r.log.ErrorObj("runner close failed", "error", err.Error())
		return fmt.Errorf("close runner: %w", err)
	}
	return nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return outcomeOK
	}
	if kind := networking.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
