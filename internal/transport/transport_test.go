package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routedBackend interface {
	Backend
	http.Handler
}

func backends() map[string]func() routedBackend {
	return map[string]func() routedBackend{
		BackendChi:    func() routedBackend { return NewChiBackend("127.0.0.1:0") },
		BackendStdMux: func() routedBackend { return NewStdMuxBackend("127.0.0.1:0") },
	}
}

func echoHandler() Handler {
	return HandlerFunc(func(_ context.Context, req *Request) *Response {
		body, _ := io.ReadAll(req.Body)
		return JSON(http.StatusCreated, map[string]any{
			"method": req.Method,
			"path":   req.Path,
			"id":     req.Param("id"),
			"q":      req.Query.Get("q"),
			"ct":     req.Header.Get("Content-Type"),
			"len":    req.ContentLength,
			"body":   string(body),
		})
	})
}

func TestBackends_Routing(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			b := mk()
			b.RegisterRoute(http.MethodPost, "/items/{id}", echoHandler())
			b.RegisterRoute(http.MethodGet, "/nil", HandlerFunc(func(context.Context, *Request) *Response { return nil }))

			srv := httptest.NewServer(b)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/items/abc?q=1", "text/plain", strings.NewReader("hello"))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			body, _ := io.ReadAll(resp.Body)
			assert.JSONEq(t, `{"method":"POST","path":"/items/abc","id":"abc","q":"1","ct":"text/plain","len":5,"body":"hello"}`, string(body))

			resp, err = http.Get(srv.URL + "/nil")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			resp, err = http.Get(srv.URL + "/missing")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestBackends_StartStop(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			b := mk()
			b.RegisterRoute(http.MethodGet, "/ping", HandlerFunc(func(context.Context, *Request) *Response {
				return Text(http.StatusOK, "pong")
			}))
			require.NoError(t, b.Start())
			assert.Error(t, b.Start())

			addr := b.(interface{ Addr() string }).Addr()
			resp, err := http.Get("http://" + addr + "/ping")
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			assert.Equal(t, "pong\n", string(body))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			require.NoError(t, b.Stop(ctx))
		})
	}
}

func TestNew(t *testing.T) {
	b, err := New(BackendStdMux, ":0")
	require.NoError(t, err)
	assert.IsType(t, &StdMuxBackend{}, b)

	b, err = New("", ":0")
	require.NoError(t, err)
	assert.IsType(t, &ChiBackend{}, b)

	_, err = New("grpc", ":0")
	assert.Error(t, err)
}

func TestJSON_EncodeFailureFallsBackToText(t *testing.T) {
	resp := JSON(http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "Internal server error\n", string(resp.Body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestFromHTTP(t *testing.T) {
	h := FromHTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen", r.URL.Query().Get("v"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))

	resp := h.Handle(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/x",
		Query:  map[string][]string{"v": {"42"}},
	})
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, "42", resp.Header.Get("X-Seen"))
	assert.Equal(t, "ok", string(resp.Body))
}

func TestParamNames(t *testing.T) {
	assert.Equal(t, []string{"id"}, paramNames("/media/{id}"))
	assert.Equal(t, []string{"a", "b"}, paramNames("/{a}/x/{b}"))
	assert.Empty(t, paramNames("/health"))
}
