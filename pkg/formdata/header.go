package formdata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sir_venger/media_lite/internal/models"
)

// Header — заголовки одной части; ключи приведены к нижнему регистру.
type Header map[string]string

// Get возвращает значение заголовка без учёта регистра ключа.
func (h Header) Get(key string) string {
	return h[strings.ToLower(key)]
}

// parseHeader разбирает блок заголовков: строки делятся по переводу строки,
// а каждая из них по первому двоеточию. Строки без двоеточия игнорируются.
func parseHeader(block []byte) Header {
	h := make(Header)
	for _, line := range bytes.Split(block, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(string(line[:colon])))
		if key == "" {
			continue
		}
		h[key] = strings.TrimSpace(string(line[colon+1:]))
	}
	return h
}

// splitHeaderBody делит сырую часть на заголовки и payload по первой пустой строке.
func splitHeaderBody(raw []byte) (header, body []byte, ok bool) {
	// Часть без заголовков начинается сразу с пустой строки.
	if n := lineEnd(raw); n > 0 {
		return nil, raw[n:], true
	}

	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf <= lf):
		return raw[:crlf], raw[crlf+4:], true
	case lf >= 0:
		return raw[:lf], raw[lf+2:], true
	}
	return nil, nil, false
}

// disposition извлекает name и filename из Content-Disposition.
func disposition(h Header) (name, filename string, err error) {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return "", "", fmt.Errorf("%w: part has no Content-Disposition header", models.ErrMalformedBody)
	}

	params := dispositionParams(cd)
	name, ok := params["name"]
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: Content-Disposition has no name parameter", models.ErrMalformedBody)
	}

	return name, params["filename"], nil
}

// dispositionParams разбирает параметры вида key=value и key="value; с точкой с запятой".
func dispositionParams(v string) map[string]string {
	out := make(map[string]string)

	var (
		parts   []string
		cur     strings.Builder
		inQuote bool
	)
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '\\' && inQuote && i+1 < len(v):
			cur.WriteByte(c)
			cur.WriteByte(v[i+1])
			i++
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ';' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())

	// Первый элемент — сам тип (form-data), параметры идут после него.
	for _, p := range parts[1:] {
		eq := strings.IndexByte(p, '=')
		if eq <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p[:eq]))
		out[key] = unquote(strings.TrimSpace(p[eq+1:]))
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		if strings.Contains(s, `\`) {
			var b strings.Builder
			for i := 0; i < len(s); i++ {
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				b.WriteByte(s[i])
			}
			s = b.String()
		}
	}
	return s
}
