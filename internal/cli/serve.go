package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridview/pkg/errors"
	"github.com/matzehuels/gridview/pkg/pipeline"
	"github.com/matzehuels/gridview/pkg/render/dot"
	"github.com/matzehuels/gridview/pkg/snapshot"
)

// serveCommand creates the serve command: keep a grid open and expose it
// over HTTP for inspection.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags configFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [config]",
		Short: "Serve a live grid over HTTP",
		Long: `Serve a live grid over HTTP.

The grid stays open between requests, so scroll and row operations build on
each other. Remote row sources keep notifying the grid while it is served.

Endpoints:
  GET  /healthz                      liveness
  GET  /layout[?placements]          snapshot of the last layout pass
  POST /steps                        apply one step, e.g. {"kind":"by","dy":10}
  POST /rows/{ordinal}/{action}      current, expand, collapse, select
  GET  /tree[?format=svg]            row diagram as DOT or SVG`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), cfg, flags.noCache, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// runServe opens cfg and serves it until ctx is done.
func (c *CLI) runServe(ctx context.Context, w io.Writer, cfg *pipeline.Config, noCache bool, addr string) error {
	srv, err := c.openServer(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer srv.close()

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	printInfo(w, "Serving %s at %s", StyleHighlight.Render(cfg.Source.Kind+" grid"), StyleValue.Render("http://"+addr))
	printNextStep(w, "Inspect the layout", "curl http://"+addr+"/layout")

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
		}
		return nil
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdown)
	}
}

// =============================================================================
// server - HTTP host of a grid session
// =============================================================================

// server serializes every request and every remote change notification on
// one mutex, which stands in for a UI thread.
type server struct {
	mu     sync.Mutex
	sess   *pipeline.Session
	logger *log.Logger
	closed bool
}

// openServer opens the session. Change notifications delivered while the
// session opens wait on the mutex.
func (c *CLI) openServer(ctx context.Context, cfg *pipeline.Config, noCache bool) (*server, error) {
	s := &server{logger: c.Logger}
	runner := c.newRunner(noCache)
	runner.Dispatch = func(fn func()) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.closed {
			fn()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := runner.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return s, nil
}

// close stops change delivery, then closes the session. The session is
// closed outside mu because closing waits for the watcher to exit.
func (s *server) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.sess.Close()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/layout", s.handleLayout)
	r.Post("/steps", s.handleStep)
	r.Post("/rows/{ordinal}/{action}", s.handleRow)
	r.Get("/tree", s.handleTree)
	return r
}

// logRequests logs each request at debug level with its status and
// duration, and puts the logger in the request context.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), s.logger)))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// refresh runs the pass that remote changes left pending. Callers hold mu.
func (s *server) refresh(ctx context.Context) error {
	if !s.sess.Engine.Dirty() {
		return nil
	}
	return s.sess.Engine.Refresh(ctx)
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	_, placements := r.URL.Query()["placements"]
	snap := snapshot.Capture(s.sess.Engine, snapshot.Options{
		Placements: placements || s.sess.Config.Placements,
	})
	w.Header().Set("Content-Type", "application/json")
	if err := snapshot.Write(w, snap); err != nil {
		loggerFromContext(r.Context()).Error("write snapshot", "err", err)
	}
}

func (s *server) handleStep(w http.ResponseWriter, r *http.Request) {
	var st pipeline.Step
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode step"))
		return
	}
	s.step(w, r, st)
}

// rowActions maps the action of /rows/{ordinal}/{action} to a step kind.
var rowActions = map[string]string{
	"current":  pipeline.StepSetCurrent,
	"expand":   pipeline.StepExpand,
	"collapse": pipeline.StepCollapse,
	"select":   pipeline.StepSelect,
}

func (s *server) handleRow(w http.ResponseWriter, r *http.Request) {
	ordinal, err := strconv.Atoi(chi.URLParam(r, "ordinal"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid row ordinal %q", chi.URLParam(r, "ordinal")))
		return
	}
	kind, ok := rowActions[chi.URLParam(r, "action")]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "unknown row action %q", chi.URLParam(r, "action")))
		return
	}
	s.step(w, r, pipeline.Step{Kind: kind, Row: ordinal})
}

// step applies st and answers with the position it produced.
func (s *server) step(w http.ResponseWriter, r *http.Request, st pipeline.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := st.Validate(s.sess.Rows.Recursive()); err != nil {
		writeError(w, err)
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sess.Step(r.Context(), st); err != nil {
		writeError(w, err)
		return
	}
	snap := snapshot.Capture(s.sess.Engine, snapshot.Options{})
	writeJSON(w, http.StatusOK, map[string]any{
		"position": snap.Position,
		"offset":   snap.Offset,
		"extent":   snap.Extent,
		"current":  snap.Current,
	})
}

func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := dot.Options{Field: q.Get("field"), MaxRows: 200}
	if v := q.Get("max_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid max_rows %q", v))
			return
		}
		opts.MaxRows = n
	}

	s.mu.Lock()
	err := s.refresh(r.Context())
	src := dot.ToDOT(s.sess.Engine, opts)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	switch q.Get("format") {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(src))
	case "svg":
		svg, err := dot.RenderSVG(src)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", q.Get("format")))
	}
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, httpStatus(code), map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}

// httpStatus maps an error code to an HTTP status.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeContractViolation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeRowSource, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
