package usecase

import (
	"github.com/St1cky1/ticket-generator/internal/entity"
)

// ValidateAvatar проверяет файл перед тем, как положить его в AvatarStore.
// Порядок проверок: наличие, тип, размер.
func ValidateAvatar(a *entity.Avatar) error {
	if a == nil {
		return entity.ErrEmptySelection
	}
	if !a.IsImage() {
		return entity.ErrInvalidType
	}
	if a.Size > entity.MaxAvatarSize {
		return entity.ErrTooLarge
	}
	return nil
}
