// Package mediahttp собирает сервис медиа: загрузку, просмотр и удаление
// записей, здоровье тома и метрики. Маршруты регистрируются на любом
// transport.Backend.
//
// Основные маршруты:
//
//	POST   /upload       — multipart-загрузка (file, filename, mediaType, timestamp[, mimeType])
//	GET    /media        — список записей, новые первыми; ?mediaType=photo|video фильтрует
//	GET    /media/{id}   — одна запись
//	DELETE /media/{id}   — удалить payload и sidecar
//	GET    /health       — свободное и общее место на томе хранилища
//	GET    /metrics      — метрики Prometheus
//	POST   /admin/gc     — разовая очистка брошенных временных файлов
package mediahttp
