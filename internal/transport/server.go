package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/sir_venger/media_lite/internal/logger"
)

var paramRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// paramNames возвращает имена параметров из шаблона пути вида /media/{id}.
func paramNames(path string) []string {
	var names []string
	for _, m := range paramRe.FindAllStringSubmatch(path, -1) {
		names = append(names, m[1])
	}
	return names
}

// adapt превращает Handler в http.Handler; lookup достаёт параметр пути
// способом, принятым в конкретном роутере.
func adapt(h Handler, names []string, lookup func(r *http.Request, name string) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Header:        r.Header,
			Body:          r.Body,
			ContentLength: r.ContentLength,
			Params:        make(map[string]string, len(names)),
		}
		for _, n := range names {
			req.Params[n] = lookup(r, n)
		}

		resp := h.Handle(r.Context(), req)
		if resp == nil {
			resp = Text(http.StatusInternalServerError, "Internal server error")
		}
		writeResponse(w, resp)
	})
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			logger.Debug("response write failed", "error", err)
		}
	}
}

// httpServer — общий жизненный цикл для бэкендов.
type httpServer struct {
	addr string

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	served chan struct{}
}

func (s *httpServer) start(h http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.ln = ln
	s.srv = &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.served = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "addr", ln.Addr().String(), "error", err)
		}
	}(s.srv, s.served)

	logger.Info("http server listening", "addr", ln.Addr().String())
	return nil
}

// Addr возвращает фактический адрес после Start.
func (s *httpServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

func (s *httpServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.served
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
