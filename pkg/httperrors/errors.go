package httperrors

import (
	"errors"
	"net/http"
	"time"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/transport"
)

// Status сопоставляет ошибку доменного уровня с HTTP-кодом.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrMalformedBody), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMediaNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст для клиента. Детали ввода-вывода наружу не уходят.
func Message(err error) string {
	switch {
	case errors.Is(err, models.ErrMalformedBody):
		return "Failed to parse multipart data: " + err.Error()
	case errors.Is(err, models.ErrValidation):
		return err.Error()
	case errors.Is(err, models.ErrMediaNotFound):
		return "Media not found"
	case errors.Is(err, models.ErrInsufficientStorage):
		return "Insufficient storage space"
	default:
		return "Internal server error"
	}
}

// ErrorBody — тело ответа об ошибке.
type ErrorBody struct {
	Status          string    `json:"status"`
	ServerTimestamp time.Time `json:"serverTimestamp"`
	Error           string    `json:"error"`
}

// Reject формирует JSON-ответ об ошибке с заданным кодом и текстом.
func Reject(status int, msg string, now time.Time) *transport.Response {
	return transport.JSON(status, ErrorBody{
		Status:          "error",
		ServerTimestamp: now.UTC(),
		Error:           msg,
	})
}

// Response переводит ошибку в ответ через Status и Message.
func Response(err error, now time.Time) *transport.Response {
	return Reject(Status(err), Message(err), now)
}
