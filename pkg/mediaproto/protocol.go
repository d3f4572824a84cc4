// Package mediaproto описывает HTTP-протокол сервиса медиа: маршруты и поля формы загрузки.
package mediaproto

// Маршруты сервиса.
const (
	PathUpload  = "/upload"
	PathMedia   = "/media"
	PathMediaID = "/media/{id}"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
	PathGC      = "/admin/gc"

	MediaPathFormat = "%s/media/%s"
)

// Поля multipart-формы загрузки.
const (
	FieldFile      = "file"
	FieldFilename  = "filename"
	FieldMediaType = "mediaType"
	FieldTimestamp = "timestamp"
	FieldMIMEType  = "mimeType"
)

// TimestampLayout — формат поля timestamp, который принимает сервер.
const TimestampLayout = "2006-01-02T15:04:05Z"
