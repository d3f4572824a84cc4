package mediasvc

import "strings"

const fallbackMIMEType = "application/octet-stream"

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"heic": "image/heic",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mov":  "video/quicktime",
	"mp4":  "video/mp4",
	"m4v":  "video/x-m4v",
}

// MIMEType выбирает тип: явный override, затем по расширению, затем общий.
func MIMEType(filename, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	if t, ok := mimeByExtension[extension(filename)]; ok {
		return t
	}
	return fallbackMIMEType
}
