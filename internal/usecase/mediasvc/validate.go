package mediasvc

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/pkg/formdata"
	"github.com/sir_venger/media_lite/pkg/mediaproto"
)

// Имена полей формы загрузки.
const (
	FieldFile      = mediaproto.FieldFile
	FieldFilename  = mediaproto.FieldFilename
	FieldMediaType = mediaproto.FieldMediaType
	FieldTimestamp = mediaproto.FieldTimestamp
	FieldMIMEType  = mediaproto.FieldMIMEType
)

var requiredFields = []string{FieldFile, FieldFilename, FieldMediaType, FieldTimestamp}

// allowedExtensions — допустимые расширения для каждого типа медиа.
var allowedExtensions = map[models.MediaKind]map[string]struct{}{
	models.KindPhoto: {"jpg": {}, "jpeg": {}, "png": {}, "heic": {}, "gif": {}, "webp": {}},
	models.KindVideo: {"mov": {}, "mp4": {}, "m4v": {}},
}

var timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)

// UploadFields — проверенная проекция полей формы.
type UploadFields struct {
	File         formdata.Part
	Filename     string
	Kind         models.MediaKind
	CapturedAt   time.Time
	MIMEOverride string
}

// Validate проверяет обязательные поля, тип медиа, время съёмки и расширение файла.
func Validate(fields map[string]formdata.Part) (UploadFields, error) {
	for _, name := range requiredFields {
		p, ok := fields[name]
		if !ok {
			return UploadFields{}, models.MissingField(name)
		}
		if name != FieldFile && strings.TrimSpace(string(p.Data)) == "" {
			return UploadFields{}, models.MissingField(name)
		}
	}

	rawKind := strings.TrimSpace(string(fields[FieldMediaType].Data))
	kind, ok := models.ParseMediaKind(rawKind)
	if !ok {
		return UploadFields{}, models.InvalidField(FieldMediaType, rawKind)
	}

	rawTS := strings.TrimSpace(string(fields[FieldTimestamp].Data))
	capturedAt, err := ParseTimestamp(rawTS)
	if err != nil {
		return UploadFields{}, models.InvalidField(FieldTimestamp, rawTS)
	}

	filename := strings.TrimSpace(string(fields[FieldFilename].Data))
	if err = CheckExtension(kind, filename); err != nil {
		return UploadFields{}, err
	}

	out := UploadFields{
		File:       fields[FieldFile],
		Filename:   filename,
		Kind:       kind,
		CapturedAt: capturedAt,
	}
	if p, ok := fields[FieldMIMEType]; ok {
		out.MIMEOverride = strings.TrimSpace(string(p.Data))
	}

	return out, nil
}

// ParseTimestamp принимает только YYYY-MM-DDTHH:MM:SSZ с необязательными долями секунды.
func ParseTimestamp(s string) (time.Time, error) {
	if !timestampRe.MatchString(s) {
		return time.Time{}, models.InvalidField(FieldTimestamp, s)
	}
	return time.Parse(time.RFC3339Nano, s)
}

// CheckExtension сверяет расширение имени файла со списком разрешённых для kind.
func CheckExtension(kind models.MediaKind, filename string) error {
	ext := extension(filename)
	if _, ok := allowedExtensions[kind][ext]; !ok {
		return &models.UnsupportedFileTypeError{Extension: ext, Kind: kind}
	}
	return nil
}

// extension возвращает расширение без точки в нижнем регистре.
func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
