package models

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBody        = errors.New("malformed multipart body")
	ErrValidation           = errors.New("validation failed")
	ErrInsufficientStorage  = errors.New("insufficient storage space")
	ErrStreamRead           = errors.New("stream read error")
	ErrStreamWrite          = errors.New("stream write error")
	ErrStreamCreationFailed = errors.New("stream creation failed")
	ErrMediaNotFound        = errors.New("media not found")
	ErrNameSpaceExhausted   = errors.New("unique filename retries exhausted")
)

// ValidationError сообщает об отсутствующем или некорректном поле формы.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Field)
	}
	return fmt.Sprintf("%s %s: %q", e.Reason, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingField — ошибка для обязательного поля, которого нет в форме.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "missing required field"}
}

// InvalidField — ошибка для поля с недопустимым значением.
func InvalidField(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: "invalid"}
}

// UnsupportedFileTypeError — расширение файла не разрешено для данного типа медиа.
type UnsupportedFileTypeError struct {
	Extension string
	Kind      MediaKind
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s", e.Extension, e.Kind)
}

func (e *UnsupportedFileTypeError) Unwrap() error { return ErrValidation }
