package models

import (
	"strings"
	"time"
)

// MediaKind — тип загружаемого медиа.
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
)

// ParseMediaKind разбирает значение поля mediaType без учёта регистра.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindPhoto):
		return KindPhoto, true
	case string(KindVideo):
		return KindVideo, true
	}
	return "", false
}

// Dir возвращает имя корневого каталога для payload'ов данного типа.
func (k MediaKind) Dir() string {
	if k == KindVideo {
		return "videos"
	}
	return "photos"
}

// MediaRecord хранится в sidecar-файле metadata/{mediaId}.json.
type MediaRecord struct {
	MediaID          string    `json:"mediaId"`
	OriginalFilename string    `json:"originalFilename"`
	StoredFilename   string    `json:"storedFilename"`
	Kind             MediaKind `json:"mediaType"`
	SizeBytes        int64     `json:"sizeBytes"`
	MIMEType         string    `json:"mimeType"`
	CapturedAt       time.Time `json:"capturedAt"`
	StoredAt         time.Time `json:"storedAt"`
	RelativePath     string    `json:"relativeStoragePath"`
}

// UploadResult возвращается оркестратором после успешного сохранения.
type UploadResult struct {
	MediaID  string
	Filename string
	Kind     MediaKind
	Size     int64
}
