package formdata

import (
	"fmt"

	"github.com/sir_venger/media_lite/internal/models"
)

// PreambleLimit — в пределах скольких первых байт обязан начаться первый разделитель.
const PreambleLimit = 1000

// Parse разбирает тело, целиком лежащее в памяти. Payload'ы частей ссылаются на body.
// При повторе имени побеждает последняя часть.
func Parse(body []byte, boundary string) (map[string]Part, error) {
	if boundary == "" {
		return nil, fmt.Errorf("%w: empty boundary", models.ErrMalformedBody)
	}

	sc := NewScanner(boundary)
	first, ok := sc.Next(body, 0)
	if !ok || first.Start >= PreambleLimit {
		return nil, fmt.Errorf("%w: boundary not found in first %d bytes", models.ErrMalformedBody, PreambleLimit)
	}

	parts := make(map[string]Part)
	cur := first
	for !cur.Terminal {
		next, ok := sc.Next(body, cur.End)
		if !ok {
			return nil, fmt.Errorf("%w: closing boundary not found", models.ErrMalformedBody)
		}

		start := skipPadding(body, cur.End)
		if start > next.Start {
			start = next.Start
		}
		raw := body[start:next.Start]
		if len(trimTrailingLineEnd(raw)) > 0 {
			p, err := parseRawPart(raw)
			if err != nil {
				return nil, err
			}
			parts[p.Name] = p
		}

		cur = next
	}

	return parts, nil
}

// skipPadding пропускает пробельный хвост строки разделителя и один перевод строки.
func skipPadding(b []byte, at int) int {
	for at < len(b) && (b[at] == ' ' || b[at] == '\t') {
		at++
	}
	return at + lineEnd(b[at:])
}

func parseRawPart(raw []byte) (Part, error) {
	hdr, body, ok := splitHeaderBody(raw)
	if !ok {
		return Part{}, fmt.Errorf("%w: part has no header/body separator", models.ErrMalformedBody)
	}

	h := parseHeader(hdr)
	name, filename, err := disposition(h)
	if err != nil {
		return Part{}, err
	}

	return Part{
		Name:        name,
		Filename:    filename,
		ContentType: h.Get("Content-Type"),
		Data:        trimTrailingLineEnd(body),
	}, nil
}
