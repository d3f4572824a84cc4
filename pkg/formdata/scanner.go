// Package formdata разбирает тела multipart/form-data без опоры на длину частей:
// границы частей находятся сканированием байтов.
//   - Scanner ищет разделитель --boundary и терминатор --boundary--.
//   - Parse разбирает тело, целиком лежащее в памяти.
//   - Ingester читает тело потоком и сбрасывает файловые части во временный каталог.
package formdata

import "bytes"

// Match — найденный разделитель: [Start, End) в просматриваемом буфере.
type Match struct {
	Start    int
	End      int
	Terminal bool
}

// Scanner ищет разделители одной конкретной границы.
type Scanner struct {
	delim    []byte
	terminal []byte
}

// NewScanner строит сканер для значения boundary из Content-Type, без перекодирования.
func NewScanner(boundary string) *Scanner {
	delim := make([]byte, 0, len(boundary)+2)
	delim = append(delim, '-', '-')
	delim = append(delim, boundary...)

	terminal := make([]byte, 0, len(delim)+2)
	terminal = append(terminal, delim...)
	terminal = append(terminal, '-', '-')

	return &Scanner{delim: delim, terminal: terminal}
}

// Lookahead — сколько байт после начала кандидата нужно, чтобы его подтвердить.
func (s *Scanner) Lookahead() int {
	return len(s.terminal)
}

// Next ищет следующий разделитель, начиная с from.
// Кандидат засчитывается, только если стоит в начале строки и за ним идёт
// "--", перевод строки или пробельный символ. Если хвоста буфера не хватает,
// чтобы это проверить, кандидат не засчитывается: потоковый вызывающий дочитает данные.
func (s *Scanner) Next(haystack []byte, from int) (Match, bool) {
	if from < 0 {
		from = 0
	}

	for from < len(haystack) {
		idx := bytes.Index(haystack[from:], s.delim)
		if idx < 0 {
			return Match{}, false
		}
		p := from + idx
		from = p + 1

		if p > 0 && haystack[p-1] != '\n' {
			continue
		}

		// Терминатор длиннее разделителя, поэтому проверяется первым.
		if bytes.HasPrefix(haystack[p:], s.terminal) {
			return Match{Start: p, End: p + len(s.terminal), Terminal: true}, true
		}

		rest := haystack[p+len(s.delim):]
		if len(rest) == 0 {
			continue
		}
		switch rest[0] {
		case '\r', '\n', ' ', '\t':
			return Match{Start: p, End: p + len(s.delim)}, true
		}
	}

	return Match{}, false
}

// lineEnd возвращает длину перевода строки в начале b: 2 для CRLF, 1 для LF, иначе 0.
func lineEnd(b []byte) int {
	if len(b) >= 2 && b[0] == '\r' && b[1] == '\n' {
		return 2
	}
	if len(b) >= 1 && b[0] == '\n' {
		return 1
	}
	return 0
}

// trimTrailingLineEnd отрезает ровно один завершающий перевод строки.
func trimTrailingLineEnd(b []byte) []byte {
	if n := len(b); n >= 2 && b[n-2] == '\r' && b[n-1] == '\n' {
		return b[:n-2]
	}
	if n := len(b); n >= 1 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}
