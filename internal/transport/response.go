package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// JSON кодирует v в тело ответа. Если кодирование не удалось, возвращается
// минимальный текстовый 500.
func JSON(status int, v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		return Text(http.StatusInternalServerError, "Internal server error")
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Response{Status: status, Header: h, Body: append(b, '\n')}
}

func Text(status int, msg string) *Response {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Response{Status: status, Header: h, Body: []byte(msg + "\n")}
}

// FromHTTP оборачивает обычный http.Handler, буферизуя его ответ.
func FromHTTP(h http.Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) *Response {
		r, err := http.NewRequestWithContext(ctx, req.Method, req.Path, req.Body)
		if err != nil {
			return Text(http.StatusInternalServerError, "Internal server error")
		}
		if req.Header != nil {
			r.Header = req.Header.Clone()
		}
		r.URL.RawQuery = req.Query.Encode()

		w := &bufferedWriter{header: make(http.Header)}
		h.ServeHTTP(w, r)
		if w.status == 0 {
			w.status = http.StatusOK
		}
		return &Response{Status: w.status, Header: w.header, Body: w.body.Bytes()}
	})
}

type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}
