package entity

import "errors"

var (
	ErrEmptySelection     = errors.New("no file selected")
	ErrInvalidType        = errors.New("file is not an image")
	ErrTooLarge           = errors.New("file exceeds size limit")
	ErrRequiredFieldEmpty = errors.New("required field is empty")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrFieldsInvalid      = errors.New("form fields are invalid")
	ErrAlreadyConfirmed   = errors.New("ticket already confirmed")
	ErrUnknownField       = errors.New("unknown field")
	ErrSessionNotFound    = errors.New("session not found")
)

// Тексты, которые видит пользователь
const (
	MessageEmptySelection = "Error: No files were dropped"
	MessageInvalidType    = "Error: Please upload a valid image file (JPG, PNG, GIF, etc)."
	MessageTooLarge       = "Error: The image file is too large! Maximum size is 5MB"
	MessageRequired       = "This field is required"
	MessageInvalidEmail   = "Please enter a valid email address!"
)

// UserMessage возвращает текст ошибки для показа на странице.
// Для ошибок без пользовательского текста возвращает пустую строку.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptySelection):
		return MessageEmptySelection
	case errors.Is(err, ErrInvalidType):
		return MessageInvalidType
	case errors.Is(err, ErrTooLarge):
		return MessageTooLarge
	case errors.Is(err, ErrRequiredFieldEmpty):
		return MessageRequired
	case errors.Is(err, ErrInvalidEmailFormat):
		return MessageInvalidEmail
	default:
		return ""
	}
}
