package formdata

import (
	"errors"
	"os"

	"github.com/spf13/afero"
)

// Part — одна часть multipart-тела. Используется ровно одно из Data или Spool.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
	Spool       *Spool
}

// Spool описывает часть, сброшенную во временный файл.
type Spool struct {
	Path string
	Size int64
}

// IsSpooled сообщает, лежит ли payload части во временном файле.
func (p Part) IsSpooled() bool {
	return p.Spool != nil
}

// Size возвращает размер payload'а без повторного чтения.
func (p Part) Size() int64 {
	if p.Spool != nil {
		return p.Spool.Size
	}
	return int64(len(p.Data))
}

// Form — результат потокового разбора и владелец временного каталога запроса.
type Form struct {
	Parts map[string]Part

	fs  afero.Fs
	dir string
}

// Dir возвращает временный каталог запроса.
func (f *Form) Dir() string {
	return f.dir
}

// RemoveAll удаляет временный каталог вместе с частично записанными файлами.
// Повторный вызов безопасен.
func (f *Form) RemoveAll() error {
	if f == nil || f.dir == "" {
		return nil
	}
	err := f.fs.RemoveAll(f.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	f.dir = ""
	return nil
}
