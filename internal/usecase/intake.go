package usecase

import (
	"github.com/St1cky1/ticket-generator/internal/entity"
)

type IntakeSource string

const (
	SourcePicker IntakeSource = "picker"
	SourceDrop   IntakeSource = "drop"
)

type DragEventType string

const (
	DragEnter DragEventType = "dragenter"
	DragOver  DragEventType = "dragover"
	DragLeave DragEventType = "dragleave"
	Drop      DragEventType = "drop"
)

// DragEvent - событие перетаскивания над зоной загрузки
type DragEvent struct {
	Type               DragEventType
	Files              []*entity.Avatar
	DefaultPrevented   bool
	PropagationStopped bool
}

// Intake сводит выбор файла через picker и через drop к одному пути:
// первый файл списка -> проверка -> AvatarStore -> превью.
type Intake struct {
	surface ISurface
	store   *AvatarStore
	preview *PreviewRenderer
	target  IImageTarget
	metrics *Metrics
}

func NewIntake(surface ISurface, store *AvatarStore, preview *PreviewRenderer, target IImageTarget, metrics *Metrics) *Intake {
	return &Intake{
		surface: surface,
		store:   store,
		preview: preview,
		target:  target,
		metrics: metrics,
	}
}

// FromPicker - событие change у input[type=file]
func (i *Intake) FromPicker(files []*entity.Avatar) (<-chan struct{}, error) {
	if f := first(files); f != nil {
		i.surface.SetPickerValue(f.Name)
	}
	return i.accept(SourcePicker, files)
}

// FromDrop - файлы, брошенные на зону загрузки
func (i *Intake) FromDrop(files []*entity.Avatar) (<-chan struct{}, error) {
	return i.accept(SourceDrop, files)
}

// HandleDrag гасит поведение браузера по умолчанию и всплытие для всех
// четырех событий, чтобы drop не вызвал обработчик клика по зоне.
func (i *Intake) HandleDrag(ev *DragEvent) (<-chan struct{}, error) {
	ev.DefaultPrevented = true
	ev.PropagationStopped = true

	switch ev.Type {
	case DragEnter, DragOver:
		i.surface.SetDragOver(true)
	case DragLeave:
		i.surface.SetDragOver(false)
	case Drop:
		i.surface.SetDragOver(false)
		return i.FromDrop(ev.Files)
	}
	return closedChan(), nil
}

// ClickZone - клик по зоне вне перетаскивания открывает выбор файла
func (i *Intake) ClickZone() {
	i.surface.OpenPicker()
}

// Change - кнопка "change": сброс значения input и повторное открытие
func (i *Intake) Change() {
	i.surface.ResetPicker()
	i.surface.OpenPicker()
}

// Remove - кнопка "remove"
func (i *Intake) Remove() {
	i.preview.Invalidate(i.target)
	i.store.Clear()
}

func (i *Intake) accept(source IntakeSource, files []*entity.Avatar) (<-chan struct{}, error) {
	i.surface.ClearError()

	file := first(files)
	if err := ValidateAvatar(file); err != nil {
		i.surface.ShowError(entity.UserMessage(err))
		i.metrics.intake(source, err)
		return closedChan(), err
	}

	i.store.Set(file)
	i.surface.SetUploadLabel("")
	i.metrics.intake(source, nil)

	return i.preview.Render(file, i.target), nil
}

func first(files []*entity.Avatar) *entity.Avatar {
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
