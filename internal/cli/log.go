// Package cli implements the kle command-line interface.
//
// Commands read layouts with [kleio.Import] or from stdin, run them through
// the codec and write the result with [kleio.Export] or to stdout. Status
// output goes to stderr so layouts can be piped:
//
//	kle normalize board.json > canonical.json
//	kle fetch https://gist.github.com/user/8f2b7c3d... -o board.yaml
//	curl -s https://example.com/board.json | kle inspect -
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every codec, cache and HTTP event. Loggers are passed through
// context.Context.
//
// [kleio.Import]: github.com/matzehuels/kle/pkg/io.Import
// [kleio.Export]: github.com/matzehuels/kle/pkg/io.Export
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Normalized 104 keys (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks logs observability events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnDecode(_ context.Context, format string, keys int, d time.Duration, err error) {
	h.codec("decode", format, keys, d, err)
}

func (h *logHooks) OnEncode(_ context.Context, format string, keys int, d time.Duration, err error) {
	h.codec("encode", format, keys, d, err)
}

func (h *logHooks) codec(op, format string, keys int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug(op+" failed", "format", format, "error", err)
		return
	}
	h.logger.Debug(op, "format", format, "keys", keys, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
