package formdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/models"
)

const (
	DefaultReadChunkSize  = 64 << 10
	DefaultMaxHeaderBytes = 16 << 10
	DefaultMaxFieldBytes  = 10 << 20

	maxEmptyReads = 100
)

// IngesterConfig задаёт лимиты потокового разбора.
type IngesterConfig struct {
	// Fs — файловая система для временных файлов; по умолчанию afero.NewOsFs().
	Fs afero.Fs
	// TempRoot — где создавать каталог запроса; по умолчанию os.TempDir().
	TempRoot string
	// ReadChunkSize — сколько байт читать из тела за раз.
	ReadChunkSize int
	// MaxHeaderBytes — предел размера блока заголовков одной части.
	MaxHeaderBytes int
	// MaxFieldBytes — предел размера поля без filename, которое держится в памяти.
	MaxFieldBytes int64
}

// Ingester разбирает multipart-тело прямо из потока. Память ограничена
// размером чанка чтения и лимитами заголовков/полей, а не размером тела.
type Ingester struct {
	cfg IngesterConfig
}

// NewIngester создаёт потоковый разборщик, подставляя значения по умолчанию.
func NewIngester(cfg IngesterConfig) *Ingester {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.ReadChunkSize <= 0 {
		cfg.ReadChunkSize = DefaultReadChunkSize
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxFieldBytes <= 0 {
		cfg.MaxFieldBytes = DefaultMaxFieldBytes
	}
	return &Ingester{cfg: cfg}
}

// Ingest читает тело и возвращает разобранные части. Части с непустым filename
// пишутся во временный каталог запроса; остальные держатся в памяти.
// При ошибке каталог удаляется до возврата; при успехе его удаляет вызывающий через Form.RemoveAll.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader, boundary string) (_ *Form, err error) {
	if boundary == "" {
		return nil, fmt.Errorf("%w: empty boundary", models.ErrMalformedBody)
	}

	dir, err := afero.TempDir(in.cfg.Fs, in.cfg.TempRoot, "ingest-")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", models.ErrStreamCreationFailed, err)
	}

	form := &Form{Parts: make(map[string]Part), fs: in.cfg.Fs, dir: dir}
	defer func() {
		if err != nil {
			_ = form.RemoveAll()
		}
	}()

	st := &stream{
		ctx:   ctx,
		src:   r,
		chunk: in.cfg.ReadChunkSize,
		sc:    NewScanner(boundary),
	}

	cur, err := st.first()
	if err != nil {
		return nil, err
	}

	for !cur.Terminal {
		var p Part
		p, cur, err = in.readPart(st, form, cur)
		if err != nil {
			return nil, err
		}
		if p.Name != "" {
			form.Parts[p.Name] = p
		}
	}

	return form, nil
}

// readPart разбирает одну часть, начинающуюся после разделителя prev,
// и возвращает её вместе со следующим разделителем.
func (in *Ingester) readPart(st *stream, form *Form, prev Match) (Part, Match, error) {
	pos, err := st.skipDelimiterLine(prev.End)
	if err != nil {
		return Part{}, Match{}, err
	}

	// Пустой срез между двумя соседними разделителями пропускается.
	if err = st.ensure(pos + st.sc.Lookahead() + 2); err != nil {
		return Part{}, Match{}, err
	}
	if m, ok := st.sc.Next(st.buf, pos); ok && m.Start == pos {
		return Part{}, m, nil
	}

	hdrEnd, bodyStart, err := in.findHeaderEnd(st, pos)
	if err != nil {
		return Part{}, Match{}, err
	}
	// findHeaderEnd мог уплотнить буфер: позиции пересчитаны относительно нового начала.
	pos = st.headerStart

	h := parseHeader(st.buf[pos:hdrEnd])
	name, filename, err := disposition(h)
	if err != nil {
		return Part{}, Match{}, err
	}

	p := Part{Name: name, Filename: filename, ContentType: h.Get("Content-Type")}

	var sink partSink
	if filename != "" {
		f, err := afero.TempFile(form.fs, form.dir, "part-*")
		if err != nil {
			return Part{}, Match{}, fmt.Errorf("%w: spool %q: %v", models.ErrStreamCreationFailed, name, err)
		}
		sink = &fileSink{fs: form.fs, f: f}
	} else {
		sink = &memSink{name: name, limit: in.cfg.MaxFieldBytes}
	}

	next, err := st.copyBody(bodyStart, sink)
	if err != nil {
		sink.abort()
		return Part{}, Match{}, err
	}
	if err = sink.finish(&p); err != nil {
		return Part{}, Match{}, err
	}

	return p, next, nil
}

// findHeaderEnd ищет пустую строку, завершающую заголовки части.
// Возвращает конец блока заголовков и начало payload'а.
func (in *Ingester) findHeaderEnd(st *stream, pos int) (int, int, error) {
	st.headerStart = pos
	for {
		region := st.buf[st.headerStart:]
		if lineEnd(region) > 0 {
			return 0, 0, fmt.Errorf("%w: part has no Content-Disposition header", models.ErrMalformedBody)
		}

		end, sepLen := blankLine(region)
		if end >= 0 {
			if m, ok := st.sc.Next(st.buf, st.headerStart); ok && m.Start < st.headerStart+end {
				return 0, 0, fmt.Errorf("%w: part has no header/body separator", models.ErrMalformedBody)
			}
			return st.headerStart + end, st.headerStart + end + sepLen, nil
		}

		if len(region) > in.cfg.MaxHeaderBytes {
			return 0, 0, fmt.Errorf("%w: part header exceeds %d bytes", models.ErrMalformedBody, in.cfg.MaxHeaderBytes)
		}
		if st.eof {
			return 0, 0, fmt.Errorf("%w: part has no header/body separator", models.ErrMalformedBody)
		}

		st.headerStart = st.compact(st.headerStart)
		if err := st.fill(); err != nil {
			return 0, 0, err
		}
	}
}

// blankLine находит первую пустую строку (CRLFCRLF или LFLF).
func blankLine(b []byte) (int, int) {
	crlf := bytes.Index(b, []byte("\r\n\r\n"))
	lf := bytes.Index(b, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf <= lf):
		return crlf, 4
	case lf >= 0:
		return lf, 2
	}
	return -1, 0
}

// stream — окно над входным потоком с одним байтом контекста перед текущей позицией.
type stream struct {
	ctx   context.Context
	src   io.Reader
	buf   []byte
	eof   bool
	chunk int
	sc    *Scanner

	headerStart int
}

// fill дочитывает из источника не больше одного чанка.
func (s *stream) fill() error {
	if s.eof {
		return nil
	}

	n := len(s.buf)
	if cap(s.buf)-n < s.chunk {
		grown := make([]byte, n, n+2*s.chunk)
		copy(grown, s.buf)
		s.buf = grown
	}

	for empty := 0; ; empty++ {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		m, err := s.src.Read(s.buf[n : n+s.chunk])
		s.buf = s.buf[:n+m]
		if errors.Is(err, io.EOF) {
			s.eof = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrStreamRead, err)
		}
		if m > 0 {
			return nil
		}
		if empty >= maxEmptyReads {
			return fmt.Errorf("%w: %v", models.ErrStreamRead, io.ErrNoProgress)
		}
	}
}

// ensure дочитывает данные, пока в буфере не окажется n байт или не кончится поток.
func (s *stream) ensure(n int) error {
	for len(s.buf) < n && !s.eof {
		if err := s.fill(); err != nil {
			return err
		}
	}
	return nil
}

// compact отбрасывает всё до pos, оставляя один байт контекста для проверки начала строки.
func (s *stream) compact(pos int) int {
	if pos <= 1 {
		return pos
	}
	n := copy(s.buf, s.buf[pos-1:])
	s.buf = s.buf[:n]
	return 1
}

// first находит первый разделитель в пределах преамбулы.
func (s *stream) first() (Match, error) {
	limit := PreambleLimit + s.sc.Lookahead() + 2
	for {
		m, ok := s.sc.Next(s.buf, 0)
		if ok {
			if m.Start >= PreambleLimit {
				break
			}
			return m, nil
		}
		if len(s.buf) >= limit || s.eof {
			break
		}
		if err := s.fill(); err != nil {
			return Match{}, err
		}
	}
	return Match{}, fmt.Errorf("%w: boundary not found in first %d bytes", models.ErrMalformedBody, PreambleLimit)
}

// skipDelimiterLine пропускает пробелы после разделителя и перевод строки.
func (s *stream) skipDelimiterLine(pos int) (int, error) {
	for {
		if err := s.ensure(pos + 2); err != nil {
			return 0, err
		}
		if pos >= len(s.buf) {
			return 0, fmt.Errorf("%w: unexpected end of body after boundary", models.ErrMalformedBody)
		}
		if c := s.buf[pos]; c == ' ' || c == '\t' {
			pos++
			continue
		}
		n := lineEnd(s.buf[pos:])
		if n == 0 {
			return 0, fmt.Errorf("%w: boundary line is not terminated", models.ErrMalformedBody)
		}
		return pos + n, nil
	}
}

// copyBody переносит payload в sink до следующего разделителя.
// Хвост буфера длиной holdback не сбрасывается, пока не станет ясно, что это не начало разделителя.
func (s *stream) copyBody(pos int, sink partSink) (Match, error) {
	holdback := s.sc.Lookahead() + 2
	for {
		if m, ok := s.sc.Next(s.buf, pos); ok {
			if err := sink.write(trimTrailingLineEnd(s.buf[pos:m.Start])); err != nil {
				return Match{}, err
			}
			return m, nil
		}

		if safe := len(s.buf) - holdback; safe > pos {
			if err := sink.write(s.buf[pos:safe]); err != nil {
				return Match{}, err
			}
			pos = safe
		}

		if s.eof {
			return Match{}, fmt.Errorf("%w: unexpected end of body, closing boundary not found", models.ErrMalformedBody)
		}

		pos = s.compact(pos)
		if err := s.fill(); err != nil {
			return Match{}, err
		}
	}
}

// partSink принимает payload одной части.
type partSink interface {
	write(b []byte) error
	finish(p *Part) error
	abort()
}

type memSink struct {
	name  string
	limit int64
	buf   bytes.Buffer
}

func (m *memSink) write(b []byte) error {
	if int64(m.buf.Len()+len(b)) > m.limit {
		return fmt.Errorf("%w: field %q exceeds %d bytes", models.ErrMalformedBody, m.name, m.limit)
	}
	m.buf.Write(b)
	return nil
}

func (m *memSink) finish(p *Part) error {
	p.Data = m.buf.Bytes()
	return nil
}

func (m *memSink) abort() {}

type fileSink struct {
	fs afero.Fs
	f  afero.File
}

func (s *fileSink) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n, err := s.f.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStreamWrite, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: wrote %d of %d bytes", models.ErrStreamWrite, n, len(b))
	}
	return nil
}

func (s *fileSink) finish(p *Part) error {
	name := s.f.Name()
	if err := s.f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("%w: close spool: %v", models.ErrStreamWrite, err)
	}

	info, err := s.fs.Stat(name)
	if err != nil {
		_ = s.fs.Remove(name)
		return fmt.Errorf("%w: stat spool: %v", models.ErrStreamWrite, err)
	}

	p.Spool = &Spool{Path: name, Size: info.Size()}
	return nil
}

func (s *fileSink) abort() {
	name := s.f.Name()
	_ = s.f.Close()
	_ = s.fs.Remove(name)
}
