package usecase

import (
	"context"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

// ISurface - области страницы, в которые пишет логика формы
type ISurface interface {
	ShowError(message string)
	ClearError()
	SetUploadLabel(text string)
	ResetUpload()
	OpenPicker()
	ResetPicker()
	SetPickerValue(name string)
	SetDragOver(active bool)
	SetFieldIndicator(state entity.FieldState)
	ClearTicketNumber()
	ShowConfirmation(view *entity.TicketView)
}

// IImageTarget - элемент img, которому назначается src
type IImageTarget interface {
	SetSource(src string)
}

// IDimensionTarget - необязательное расширение IImageTarget
type IDimensionTarget interface {
	SetDimensions(width, height int)
}

// TicketPublisher интерфейс для публикации событий о выпуске билета
type TicketPublisher interface {
	PublishTicketIssued(ctx context.Context, message *entity.TicketIssuedMessage) error
}

// RandomSource - источник случайных чисел, *rand.Rand из math/rand/v2 подходит
type RandomSource interface {
	IntN(n int) int
}
