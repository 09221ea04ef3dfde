package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/spf13/cast"

	"github.com/matzehuels/kle/pkg/buildinfo"
	"github.com/matzehuels/kle/pkg/cache"
	"github.com/matzehuels/kle/pkg/errors"
	kleio "github.com/matzehuels/kle/pkg/io"
)

var contentTypes = map[kleio.Format]string{
	kleio.FormatJSON: "application/json",
	kleio.FormatYAML: "application/yaml",
	kleio.FormatCBOR: "application/cbor",
}

var mediaFormats = map[string]kleio.Format{
	"application/json":   kleio.FormatJSON,
	"text/json":          kleio.FormatJSON,
	"application/yaml":   kleio.FormatYAML,
	"application/x-yaml": kleio.FormatYAML,
	"text/yaml":          kleio.FormatYAML,
	"application/cbor":   kleio.FormatCBOR,
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleDeserialize(w http.ResponseWriter, r *http.Request) {
	in, err := inputFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveLayout(w, r, cache.LayoutKeyOpts{Operation: "deserialize", Format: string(in)}, kleio.FormatJSON,
		func(ctx context.Context, body []byte, out io.Writer) error {
			kbd, err := kleio.Read(ctx, bytes.NewReader(body), in)
			if err != nil {
				return err
			}
			return kleio.WriteModel(out, kbd)
		})
}

func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	opts, err := outputOptions(r, kleio.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveLayout(w, r, layoutKeyOpts("serialize", opts), opts.Format,
		func(ctx context.Context, body []byte, out io.Writer) error {
			kbd, err := kleio.ReadModel(bytes.NewReader(body))
			if err != nil {
				return err
			}
			return kleio.Write(ctx, out, kbd, opts)
		})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	in, err := inputFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := outputOptions(r, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := layoutKeyOpts("normalize", opts)
	key.Format = string(in) + ">" + string(opts.Format)
	s.serveLayout(w, r, key, opts.Format,
		func(ctx context.Context, body []byte, out io.Writer) error {
			kbd, err := kleio.Read(ctx, bytes.NewReader(body), in)
			if err != nil {
				return err
			}
			return kleio.Write(ctx, out, kbd, opts)
		})
}

// serveLayout reads the request body, answers from the cache when possible
// and otherwise runs convert, caching its output.
func (s *Server) serveLayout(w http.ResponseWriter, r *http.Request, keyOpts cache.LayoutKeyOpts, out kleio.Format,
	convert func(ctx context.Context, body []byte, out io.Writer) error) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		return
	}

	key := s.keyer.LayoutKey(body, keyOpts)
	if data, ok, err := s.cfg.Cache.Get(ctx, key); err == nil && ok {
		writeBody(w, out, "hit", data)
		return
	} else if err != nil {
		s.logger.Warn("cache read failed", "error", err, "request_id", RequestIDFromContext(ctx))
	}

	var buf bytes.Buffer
	if err := convert(ctx, body, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Cache.Set(ctx, key, buf.Bytes(), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache write failed", "error", err, "request_id", RequestIDFromContext(ctx))
	}
	writeBody(w, out, "miss", buf.Bytes())
}

// inputFormat picks the request body format: the "format" query parameter
// wins over Content-Type, and JSON is the fallback.
func inputFormat(r *http.Request) (kleio.Format, error) {
	if name := r.URL.Query().Get("format"); name != "" {
		return kleio.ParseFormat(name)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			if f, ok := mediaFormats[strings.ToLower(mt)]; ok {
				return f, nil
			}
		}
	}
	return kleio.FormatJSON, nil
}

// outputOptions reads "output", "indent" (spaces) and "compact".
func outputOptions(r *http.Request, fallback kleio.Format) (kleio.Options, error) {
	q := r.URL.Query()
	opts := kleio.Options{Format: fallback}
	if name := q.Get("output"); name != "" {
		f, err := kleio.ParseFormat(name)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if v := q.Get("indent"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 || n > 8 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "indent must be between 0 and 8, got %q", v)
		}
		opts.Indent = strings.Repeat(" ", n)
	}
	if v := q.Get("compact"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "compact must be a boolean, got %q", v)
		}
		opts.Compact = b
	}
	return opts, nil
}

func layoutKeyOpts(op string, opts kleio.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Operation: op,
		Format:    string(opts.Format),
		Indent:    opts.Indent,
		Compact:   opts.Compact,
	}
}

func writeBody(w http.ResponseWriter, format kleio.Format, cacheStatus string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	body.Error.Message = errors.UserMessage(err)
	status := statusFor(err)

	var rl *errors.RateLimitedError
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		body.Error.Code = errors.ErrCodeInvalidInput
		body.Error.Message = "request body too large"
	case stderrors.As(err, &rl):
		body.Error.Code = rl.Code()
	}
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}

	fields := []any{"code", body.Error.Code, "error", err, "request_id", RequestIDFromContext(r.Context())}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}
	writeJSON(w, status, body)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var rl *errors.RateLimitedError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.As(err, &rl):
		return http.StatusTooManyRequests
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidGist:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidLayout:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}
