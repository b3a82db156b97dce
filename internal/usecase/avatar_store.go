package usecase

import (
	"sync"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

// AvatarStore - единственный слот под выбранную аватарку
type AvatarStore struct {
	mu      sync.Mutex
	current *entity.Avatar
	surface ISurface
}

func NewAvatarStore(surface ISurface) *AvatarStore {
	return &AvatarStore{
		surface: surface,
	}
}

// Set - заменяет текущий файл без условий. Проверка делается до вызова.
func (s *AvatarStore) Set(a *entity.Avatar) {
	s.mu.Lock()
	s.current = a
	s.mu.Unlock()
}

func (s *AvatarStore) Get() *entity.Avatar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear - очищает слот и возвращает поле загрузки в исходное состояние
func (s *AvatarStore) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.surface.ResetUpload()
	s.surface.ResetPicker()
	s.surface.ClearError()
}
