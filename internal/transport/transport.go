// Package transport отделяет ядро загрузки от конкретного HTTP-бэкенда.
// Ядро видит только Handler; бэкенд выбирается при старте.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request — полностью оформленный входящий запрос.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Header        http.Header
	Body          io.Reader
	ContentLength int64 // -1, если длина неизвестна
	Params        map[string]string
}

// Param возвращает значение параметра пути, например {id}.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Response — ответ ядра, который бэкенд пишет клиенту.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Handler обрабатывает запрос и всегда возвращает ответ.
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

type HandlerFunc func(ctx context.Context, req *Request) *Response

func (f HandlerFunc) Handle(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}

// Backend — HTTP-сервер, на котором регистрируются маршруты ядра.
type Backend interface {
	RegisterRoute(method, path string, h Handler)
	Start() error
	Stop(ctx context.Context) error
}

// Имена бэкендов для конфигурации.
const (
	BackendChi    = "chi"
	BackendStdMux = "stdmux"
)

// New создаёт бэкенд по имени.
func New(kind, addr string) (Backend, error) {
	switch kind {
	case BackendChi, "":
		return NewChiBackend(addr), nil
	case BackendStdMux:
		return NewStdMuxBackend(addr), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}
